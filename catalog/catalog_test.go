package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractScalarFields(t *testing.T) {
	products := []Record{{
		"id":              float64(12),
		"name":            "Margherita",
		"description":     "",
		"longDescription": nil,
		"price":           14.5,
	}}
	categories := []Record{{"id": "c1", "name": "Pizza", "description": 3}}

	res := Extract(products, categories, DefaultSchema())
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(res.Entries), res.Entries)
	}

	p := res.Entries[0]
	if p.Key != "products.12.name" || p.Value != "Margherita" || p.Type != Product {
		t.Errorf("product entry = %+v", p)
	}
	c := res.Entries[1]
	if c.Key != "categories.c1.name" || c.Value != "Pizza" || c.Type != Category {
		t.Errorf("category entry = %+v", c)
	}
	if c.CacheKey() != "name" {
		t.Errorf("CacheKey() = %q, want %q", c.CacheKey(), "name")
	}
}

func TestExtractArrayKeepsIndices(t *testing.T) {
	products := []Record{{
		"id": "p1",
		"productSizes": []any{
			map[string]any{"size": "Petite"},
			map[string]any{"price": 12},
			map[string]any{"size": "Grande"},
		},
	}}

	res := Extract(products, nil, DefaultSchema())
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(res.Entries))
	}

	tests := []struct {
		index    int
		value    string
		cacheKey string
	}{
		{0, "Petite", "productSizes_0"},
		{2, "Grande", "productSizes_2"},
	}
	for i, tt := range tests {
		e := res.Entries[i]
		if e.Index() != tt.index || e.Value != tt.value {
			t.Errorf("entry %d = %s %q, want index %d %q", i, e, e.Value, tt.index, tt.value)
		}
		if e.CacheKey() != tt.cacheKey {
			t.Errorf("entry %d CacheKey() = %q, want %q", i, e.CacheKey(), tt.cacheKey)
		}
		if e.Key != "products.p1.productSizes" {
			t.Errorf("entry %d Key = %q", i, e.Key)
		}
	}
}

func TestExtractSkipsRecordsWithoutID(t *testing.T) {
	res := Extract([]Record{{"name": "Ghost"}}, nil, DefaultSchema())
	if len(res.Entries) != 0 || res.Skipped != 1 {
		t.Fatalf("entries=%d skipped=%d, want 0 and 1", len(res.Entries), res.Skipped)
	}
}

func TestExtractSkipsDottedIDs(t *testing.T) {
	products := []Record{
		{"id": "sku.12", "name": "Calzone"},
		{"id": float64(2.5), "name": "Focaccia"},
		{"id": "p3", "name": "Diavola"},
	}
	res := Extract(products, nil, DefaultSchema())
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if len(res.Entries) != 1 || res.Entries[0].Key != "products.p3.name" {
		t.Fatalf("entries = %v, want only products.p3.name", res.Entries)
	}
}

func TestExtractDuplicateIDLastValueWins(t *testing.T) {
	cats := []Record{
		{"id": "c1", "name": "Pizza"},
		{"id": "c2", "name": "Pasta"},
		{"id": "c1", "name": "Pizzas"},
	}
	res := Extract(nil, cats, DefaultSchema())
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(res.Entries))
	}
	if res.Entries[0].Value != "Pizzas" {
		t.Errorf("first entry value = %q, want %q", res.Entries[0].Value, "Pizzas")
	}
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"abc", "abc", true},
		{float64(1001), "1001", true},
		{float64(1.5), "", false},
		{"sku.12", "", false},
		{7, "7", true},
		{"", "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := RecordID(Record{"id": tt.in})
		if got != tt.want || ok != tt.ok {
			t.Errorf("RecordID(%v) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTypeForFile(t *testing.T) {
	tests := []struct {
		path    string
		want    RecordType
		wantErr bool
	}{
		{"data/products.json", Product, false},
		{"categories.yaml", Category, false},
		{"Products-2024.json", Product, false},
		{"menu.json", "", true},
	}
	for _, tt := range tests {
		got, err := TypeForFile(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("TypeForFile(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestLoadSourcesJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "products.json"), `[{"id": 1, "name": "Margherita"}]`)
	writeFile(t, filepath.Join(dir, "categories.yaml"), "- id: c1\n  name: Pizza\n- category:\n    id: c2\n    name: Pasta\n")

	src, err := LoadSources(dir, []string{"products.json", "categories.yaml"})
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(src.Products) != 1 || len(src.Categories) != 2 {
		t.Fatalf("products=%d categories=%d", len(src.Products), len(src.Categories))
	}

	res := Extract(src.Products, src.Categories, DefaultSchema())
	var keys []string
	for _, e := range res.Entries {
		keys = append(keys, e.Key)
	}
	want := []string{"products.1.name", "categories.c1.name", "categories.c2.name"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestLoadSourcesErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSources(dir, []string{"products.json"}); err == nil {
		t.Error("expected error for missing file")
	}

	writeFile(t, filepath.Join(dir, "categories.json"), `{"id": "c1"}`)
	if _, err := LoadSources(dir, []string{"categories.json"}); err == nil {
		t.Error("expected error for non-array catalog")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
