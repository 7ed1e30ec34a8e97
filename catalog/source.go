package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sources holds the decoded records of every source catalog file.
type Sources struct {
	Products   []Record
	Categories []Record
	Files      []string
}

// TypeForFile derives the record type from a catalog file name:
// "products.json" holds products, "categories.yaml" holds categories.
func TypeForFile(path string) (RecordType, error) {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasPrefix(base, "products"), strings.HasPrefix(base, "product."):
		return Product, nil
	case strings.HasPrefix(base, "categories"), strings.HasPrefix(base, "category."):
		return Category, nil
	}
	return "", fmt.Errorf("cannot tell record type of %s: name must start with \"products\" or \"categories\"", path)
}

// LoadSources reads each file (relative paths are resolved against dir)
// and groups the records by type. Files are read in the given order.
func LoadSources(dir string, files []string) (*Sources, error) {
	src := &Sources{}
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, f)
		}
		t, err := TypeForFile(path)
		if err != nil {
			return nil, err
		}
		recs, err := ParseFile(path, t)
		if err != nil {
			return nil, err
		}
		if t == Product {
			src.Products = append(src.Products, recs...)
		} else {
			src.Categories = append(src.Categories, recs...)
		}
		src.Files = append(src.Files, path)
	}
	return src, nil
}

// ParseFile reads a JSON or YAML array of records. Records wrapped as
// {"<type>": {...}} are unwrapped.
func ParseFile(path string, t RecordType) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	recs := make([]Record, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parsing %s: record %d is not an object", path, i)
		}
		if len(m) == 1 {
			if inner, ok := m[string(t)].(map[string]any); ok {
				m = inner
			}
		}
		recs = append(recs, Record(m))
	}
	return recs, nil
}
