package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keptKeys are copied by Filter regardless of the schema.
var keptKeys = []string{"id", "type"}

// Filter strips records down to what translation needs: the id, the type
// and the schema fields. Array fields keep only the translatable attribute
// of each element, so element positions are preserved.
func Filter(records []Record, ts TypeSchema) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		f := make(Record)
		for _, k := range keptKeys {
			if v, ok := rec[k]; ok {
				f[k] = v
			}
		}
		for _, field := range ts.Fields {
			if v, ok := rec[field]; ok {
				f[field] = v
			}
		}
		for _, af := range ts.Arrays {
			items, ok := rec[af.Field].([]any)
			if !ok {
				continue
			}
			slim := make([]any, len(items))
			for i, item := range items {
				el := map[string]any{}
				if m, ok := item.(map[string]any); ok {
					if v, ok := m[af.Attr]; ok {
						el[af.Attr] = v
					}
				}
				slim[i] = el
			}
			f[af.Field] = slim
		}
		out = append(out, f)
	}
	return out
}

// FilteredName returns the output name used by FilterFile:
// "products.json" -> "products-filtered.json".
func FilteredName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-filtered.json"
}

// FilterFile filters the records of a catalog file and writes them as
// JSON to out. It returns the number of records written.
func FilterFile(path, out string, schema Schema) (int, error) {
	t, err := TypeForFile(path)
	if err != nil {
		return 0, err
	}
	recs, err := ParseFile(path, t)
	if err != nil {
		return 0, err
	}
	filtered := Filter(recs, schema.For(t))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(filtered); err != nil {
		return 0, fmt.Errorf("encoding %s: %w", out, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", out, err)
	}
	return len(filtered), nil
}
