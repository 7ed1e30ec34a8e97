package keypath

import (
	"reflect"
	"testing"
)

func TestSetCreatesIntermediates(t *testing.T) {
	tree := map[string]any{}
	Set(tree, "categories.c1.name", "Pizza")

	got, ok := GetString(tree, "categories.c1.name")
	if !ok || got != "Pizza" {
		t.Fatalf("GetString() = %q, %v, want %q, true", got, ok, "Pizza")
	}
}

func TestSetKeepsSiblings(t *testing.T) {
	tree := map[string]any{
		"products": map[string]any{
			"1": map[string]any{"name": "Margherita", "description": "Tomato"},
		},
	}
	Set(tree, "products.1.name", "Margherita DOP")

	want := map[string]any{
		"products": map[string]any{
			"1": map[string]any{"name": "Margherita DOP", "description": "Tomato"},
		},
	}
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("tree = %#v, want %#v", tree, want)
	}
}

func TestSetReplacesNonObjectIntermediate(t *testing.T) {
	tree := map[string]any{"products": "oops"}
	Set(tree, "products.1.name", "Calzone")

	got, ok := GetString(tree, "products.1.name")
	if !ok || got != "Calzone" {
		t.Fatalf("GetString() = %q, %v, want %q, true", got, ok, "Calzone")
	}
}

func TestGet(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": "leaf",
			"s": "scalar",
		},
	}
	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"a.b", "leaf", true},
		{"a.missing", nil, false},
		{"a.s.deeper", nil, false},
		{"x.y", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := Get(tree, tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Get(%q) = %v, %v, want %v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSetElementPadsWithPlaceholders(t *testing.T) {
	tree := map[string]any{}
	SetElement(tree, "products.7.productSizes", 0, "size", "Small")
	SetElement(tree, "products.7.productSizes", 2, "size", "Large")

	v, ok := Get(tree, "products.7.productSizes")
	if !ok {
		t.Fatal("productSizes missing")
	}
	arr, ok := v.([]any)
	if !ok {
		t.Fatalf("productSizes is %T, want []any", v)
	}
	want := []any{
		map[string]any{"size": "Small"},
		map[string]any{},
		map[string]any{"size": "Large"},
	}
	if !reflect.DeepEqual(arr, want) {
		t.Fatalf("productSizes = %#v, want %#v", arr, want)
	}
}

func TestSetElementReplacesNonArray(t *testing.T) {
	tree := map[string]any{"p": map[string]any{"sizes": "flat"}}
	SetElement(tree, "p.sizes", 1, "size", "M")

	if _, ok := Element(tree, "p.sizes", 0, "size"); ok {
		t.Error("placeholder at index 0 should have no size")
	}
	got, ok := Element(tree, "p.sizes", 1, "size")
	if !ok || got != "M" {
		t.Fatalf("Element() = %q, %v, want %q, true", got, ok, "M")
	}
}

func TestSetElementOverwritesExisting(t *testing.T) {
	tree := map[string]any{}
	SetElement(tree, "p.sizes", 0, "size", "Petite")
	SetElement(tree, "p.sizes", 1, "size", "Grande")
	SetElement(tree, "p.sizes", 0, "size", "Small")

	arr := tree["p"].(map[string]any)["sizes"].([]any)
	if len(arr) != 2 {
		t.Fatalf("len = %d, want 2", len(arr))
	}
	if got, _ := Element(tree, "p.sizes", 0, "size"); got != "Small" {
		t.Errorf("element 0 = %q, want %q", got, "Small")
	}
}

func TestDelete(t *testing.T) {
	tree := map[string]any{}
	Set(tree, "a.b", "x")
	if !Delete(tree, "a.b") {
		t.Fatal("Delete returned false for existing leaf")
	}
	if _, ok := Get(tree, "a.b"); ok {
		t.Error("leaf still present after Delete")
	}
	if Delete(tree, "a.b") {
		t.Error("Delete returned true for missing leaf")
	}
}
