package locale

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/catsync/catalog"
)

func scalar(id, field, value string) catalog.Entry {
	return catalog.Entry{Key: catalog.NewKey(catalog.Category, id, field), Value: value, Type: catalog.Category, ID: id, Field: field}
}

func size(id string, index int, value string) catalog.Entry {
	return catalog.Entry{
		Key:     catalog.NewKey(catalog.Product, id, "productSizes"),
		Value:   value,
		Type:    catalog.Product,
		ID:      id,
		Field:   "productSizes",
		Element: &catalog.Element{Index: index, Attr: "size"},
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	doc, err := Load(t.TempDir(), "de")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tree) != 0 {
		t.Fatalf("Tree = %v, want empty", doc.Tree)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir, "en"), []byte(`{"broken":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, "en"); err == nil {
		t.Fatal("expected parse error for invalid JSON")
	}

	if err := os.WriteFile(Path(dir, "it"), []byte(`["not", "an", "object"]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, "it"); err == nil {
		t.Fatal("expected error for array document")
	}
}

func TestApplySaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "locales")
	doc, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	doc.Apply(scalar("c1", "name", "Pizza"), "Pizza")
	doc.Apply(size("7", 0, "Petite"), "Small")
	doc.Apply(size("7", 2, "Grande"), "<b>Large</b>")

	if err := doc.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(Path(dir, "en"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"<b>Large</b>"`) {
		t.Errorf("HTML was escaped: %s", out)
	}
	if !strings.Contains(out, "\n  \"categories\": {") {
		t.Errorf("unexpected indentation: %s", out)
	}

	again, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v, ok := again.Value(scalar("c1", "name", "")); !ok || v != "Pizza" {
		t.Errorf("Value(c1.name) = %q, %v", v, ok)
	}
	if v, ok := again.Value(size("7", 2, "")); !ok || v != "<b>Large</b>" {
		t.Errorf("Value(size 2) = %q, %v", v, ok)
	}
	if again.Has(size("7", 1, "")) {
		t.Error("placeholder element should not count as present")
	}

	data2, err := again.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data2) != out {
		t.Errorf("re-marshaled document differs:\n%s\n---\n%s", out, data2)
	}
}

func TestMissing(t *testing.T) {
	doc := New("de", "")
	doc.Apply(scalar("c1", "name", "Pizza"), "Pizza")
	doc.Apply(scalar("c1", "description", "Au feu de bois"), "")

	entries := []catalog.Entry{
		scalar("c1", "name", "Pizza"),
		scalar("c1", "description", "Au feu de bois"),
		scalar("c2", "name", "Pâtes"),
		size("9", 0, "Petite"),
	}
	missing := doc.Missing(entries)
	if len(missing) != 3 {
		t.Fatalf("Missing() returned %d entries, want 3: %v", len(missing), missing)
	}
	if missing[0].Key != "categories.c1.description" {
		t.Errorf("missing[0] = %s", missing[0])
	}

	present, total := doc.Stats(entries)
	if present != 1 || total != 4 {
		t.Errorf("Stats() = %d/%d, want 1/4", present, total)
	}
}
