package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minios-linux/catsync/catalog"
)

func entry(typ catalog.RecordType, id, field, value string) catalog.Entry {
	return catalog.Entry{Key: catalog.NewKey(typ, id, field), Value: value, Type: typ, ID: id, Field: field}
}

func sizeEntry(id string, index int, value string) catalog.Entry {
	e := entry(catalog.Product, id, "productSizes", value)
	e.Element = &catalog.Element{Index: index, Attr: "size"}
	return e
}

func TestHash(t *testing.T) {
	got := Hash("Pizza")
	if len(got) != 40 {
		t.Fatalf("Hash() length = %d, want 40", len(got))
	}
	if Hash("Pizza") != got {
		t.Error("Hash not deterministic")
	}
	if Hash("Pizzas") == got {
		t.Error("Hash collision")
	}
	if Hash("") != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("Hash(\"\") = %s", Hash(""))
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(filepath.Join(t.TempDir(), ".cache", FileName))
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadWrongShapeTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `{"product": "broken", "category": {"c1": "also broken", "c2": {"name": 5, "description": "abc"}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	lf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := lf.Checksums["product"]; ok {
		t.Error("non-object type node should be dropped")
	}
	if _, ok := lf.Checksums["category"]["c1"]; ok {
		t.Error("non-object id node should be dropped")
	}
	if got := lf.Checksums["category"]["c2"]; len(got) != 1 || got["description"] != "abc" {
		t.Errorf("c2 digests = %v", got)
	}

	if !lf.Checksums.IsChanged(entry(catalog.Category, "c1", "name", "Pizza")) {
		t.Error("entry under broken node should be changed")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cache", FileName)

	lf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lf.Checksums.Put(entry(catalog.Category, "c1", "name", "Pizza"))
	lf.Checksums.Put(sizeEntry("p1", 2, "Grande"))

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file not created: %v", err)
	}

	lf2, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	records, keys := lf2.Checksums.Stats()
	if records != 2 || keys != 2 {
		t.Errorf("Stats() = %d, %d, want 2, 2", records, keys)
	}
	if got := lf2.Checksums["product"]["p1"]["productSizes_2"]; got != Hash("Grande") {
		t.Errorf("productSizes_2 = %q, want %q", got, Hash("Grande"))
	}

	if err := lf2.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Errorf("re-saved cache differs:\n%s\n---\n%s", first, second)
	}
}

func TestDiff(t *testing.T) {
	unchanged := entry(catalog.Category, "c1", "name", "Pizza")
	edited := entry(catalog.Category, "c1", "description", "Au feu de bois")
	added := sizeEntry("p1", 0, "Petite")

	cs := make(Checksums)
	cs.Put(unchanged)
	cs.Put(entry(catalog.Category, "c1", "description", "Au four"))

	entries := []catalog.Entry{unchanged, edited, added}

	updated, changed := Diff(entries, cs, false)
	if len(changed) != 2 || changed[0].Key != edited.Key || changed[1].CacheKey() != "productSizes_0" {
		t.Fatalf("changed = %v", changed)
	}
	for _, e := range entries {
		if updated.IsChanged(e) {
			t.Errorf("updated cache still reports %s as changed", e)
		}
	}
	if cs["category"]["c1"]["description"] != Hash("Au four") {
		t.Error("Diff modified its input")
	}

	_, again := Diff(entries, updated, false)
	if len(again) != 0 {
		t.Errorf("second diff changed = %v, want none", again)
	}

	_, forced := Diff(entries, updated, true)
	if len(forced) != len(entries) {
		t.Errorf("forced diff changed %d entries, want %d", len(forced), len(entries))
	}
}

func TestSummary(t *testing.T) {
	cs := make(Checksums)
	if cs.Summary() != "empty" {
		t.Errorf("Summary() = %q, want %q", cs.Summary(), "empty")
	}
	cs.Put(entry(catalog.Category, "c1", "name", "Pizza"))
	cs.Put(entry(catalog.Product, "1", "name", "Margherita"))
	cs.Put(entry(catalog.Product, "1", "description", "Tomate"))

	want := "2 records, 3 keys (category: 1 keys, product: 2 keys)"
	if cs.Summary() != want {
		t.Errorf("Summary() = %q, want %q", cs.Summary(), want)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	lf, _ := Load(path)
	lf.Checksums.Put(entry(catalog.Category, "c1", "name", "Pizza"))
	if err := lf.Save(); err != nil {
		t.Fatal(err)
	}
	if err := lf.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cache file still exists")
	}
	if err := lf.Remove(); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}
