// Package locale reads and writes per-language catalog documents.
//
// A document is a nested JSON object addressed by entry keys:
//
//	{
//	    "categories": { "c1": { "name": "Pizza" } },
//	    "products": {
//	        "12": {
//	            "name": "Margherita",
//	            "productSizes": [ { "size": "Small" }, {}, { "size": "Large" } ]
//	        }
//	    }
//	}
//
// Empty string values count as untranslated.
package locale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/catsync/catalog"
	"github.com/minios-linux/catsync/keypath"
)

// Document is a parsed locale file.
type Document struct {
	Lang string
	Tree map[string]any
	path string
}

// Path returns the locale file path for a language inside dir.
func Path(dir, lang string) string {
	return filepath.Join(dir, lang+".json")
}

// New returns an empty document that will be written to path.
func New(lang, path string) *Document {
	return &Document{Lang: lang, Tree: make(map[string]any), path: path}
}

// Load reads the document of lang from dir. A missing file yields an empty
// document; a file that is not a JSON object is an error.
func Load(dir, lang string) (*Document, error) {
	path := Path(dir, lang)
	doc := New(lang, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Tree = tree
	return doc, nil
}

// Parse decodes locale file contents.
func Parse(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return tree, nil
}

// Marshal renders the document: two-space indent, sorted keys, HTML left
// unescaped, trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the document to its path through a temporary file.
func (d *Document) Save() error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", d.path, err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", d.path, err)
	}
	return nil
}

// FilePath returns the file the document is bound to.
func (d *Document) FilePath() string {
	return d.path
}

// Apply stores value at the entry's key path (or array element).
func (d *Document) Apply(e catalog.Entry, value string) {
	if e.Element != nil {
		keypath.SetElement(d.Tree, e.Key, e.Element.Index, e.Element.Attr, value)
		return
	}
	keypath.Set(d.Tree, e.Key, value)
}

// Value returns the text stored for the entry.
func (d *Document) Value(e catalog.Entry) (string, bool) {
	if e.Element != nil {
		return keypath.Element(d.Tree, e.Key, e.Element.Index, e.Element.Attr)
	}
	return keypath.GetString(d.Tree, e.Key)
}

// Has reports whether the entry has a non-empty value in the document.
func (d *Document) Has(e catalog.Entry) bool {
	s, ok := d.Value(e)
	return ok && strings.TrimSpace(s) != ""
}

// Missing returns the entries that have no value in the document,
// preserving input order.
func (d *Document) Missing(entries []catalog.Entry) []catalog.Entry {
	var out []catalog.Entry
	for _, e := range entries {
		if !d.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// Stats returns the number of entries present and the total.
func (d *Document) Stats(entries []catalog.Entry) (present, total int) {
	total = len(entries)
	present = total - len(d.Missing(entries))
	return
}
