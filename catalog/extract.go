package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Result is the output of Extract.
type Result struct {
	Entries []Entry
	// Skipped counts records whose id is missing or cannot be used as a
	// key segment.
	Skipped int
}

// Extract walks product records then category records and returns one
// entry per non-empty string field named by the schema. Array fields
// produce one entry per element whose attribute is a non-empty string,
// tagged with the element's position; other elements are skipped so the
// index keeps matching the source array.
//
// Entries are unique by key and index. A repeated record id keeps the
// position of its first occurrence and the value of its last.
func Extract(products, categories []Record, schema Schema) Result {
	var res Result
	seen := make(map[string]int)

	add := func(e Entry) {
		k := e.String()
		if i, ok := seen[k]; ok {
			res.Entries[i] = e
			return
		}
		seen[k] = len(res.Entries)
		res.Entries = append(res.Entries, e)
	}

	walk := func(t RecordType, records []Record) {
		ts := schema.For(t)
		for _, rec := range records {
			id, ok := RecordID(rec)
			if !ok {
				res.Skipped++
				continue
			}
			for _, field := range ts.Fields {
				s, ok := rec[field].(string)
				if !ok || s == "" {
					continue
				}
				add(Entry{Key: NewKey(t, id, field), Value: s, Type: t, ID: id, Field: field})
			}
			for _, af := range ts.Arrays {
				items, ok := rec[af.Field].([]any)
				if !ok {
					continue
				}
				for i, item := range items {
					m, ok := item.(map[string]any)
					if !ok {
						continue
					}
					s, ok := m[af.Attr].(string)
					if !ok || s == "" {
						continue
					}
					add(Entry{
						Key:     NewKey(t, id, af.Field),
						Value:   s,
						Type:    t,
						ID:      id,
						Field:   af.Field,
						Element: &Element{Index: i, Attr: af.Attr},
					})
				}
			}
		}
	}

	walk(Product, products)
	walk(Category, categories)
	return res
}

// RecordID renders the record's id as a path segment. Ids containing a
// dot are rejected since they would split into extra segments.
func RecordID(rec Record) (string, bool) {
	id, ok := rawID(rec["id"])
	if !ok || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}

func rawID(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	}
	return "", false
}
