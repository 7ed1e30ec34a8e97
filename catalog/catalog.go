// Package catalog turns product and category records into the flat list of
// translatable entries that the sync engine works on.
package catalog

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// RecordType identifies the kind of catalog record.
type RecordType string

const (
	Product  RecordType = "product"
	Category RecordType = "category"
)

// Plural returns the top-level key used for the record type in locale
// documents ("products", "categories").
func (t RecordType) Plural() string {
	switch t {
	case Product:
		return "products"
	case Category:
		return "categories"
	}
	return string(t) + "s"
}

// Element locates one item of an array-valued field.
type Element struct {
	Index int    `json:"index"`
	Attr  string `json:"attr"`
}

// Entry is one translatable string extracted from a record.
type Entry struct {
	Key     string     // "<plural>.<id>.<field>"
	Value   string     // source-language text
	Type    RecordType // product or category
	ID      string
	Field   string
	Element *Element // set for array-valued fields
}

// Record is a decoded catalog record.
type Record map[string]any

// ArrayField describes an array-valued field whose elements each carry
// their text under Attr.
type ArrayField struct {
	Field string `mapstructure:"field" yaml:"field"`
	Attr  string `mapstructure:"attr" yaml:"attr"`
}

// TypeSchema lists the translatable fields of one record type in
// extraction order.
type TypeSchema struct {
	Fields []string     `mapstructure:"fields" yaml:"fields"`
	Arrays []ArrayField `mapstructure:"arrays" yaml:"arrays"`
}

// Schema maps each record type to its translatable fields.
type Schema struct {
	Product  TypeSchema `mapstructure:"product" yaml:"product"`
	Category TypeSchema `mapstructure:"category" yaml:"category"`
}

// DefaultSchema is the catalog layout used when no schema is configured.
func DefaultSchema() Schema {
	return Schema{
		Product: TypeSchema{
			Fields: []string{"name", "description", "longDescription"},
			Arrays: []ArrayField{{Field: "productSizes", Attr: "size"}},
		},
		Category: TypeSchema{
			Fields: []string{"name", "description"},
		},
	}
}

// For returns the schema of a record type.
func (s Schema) For(t RecordType) TypeSchema {
	if t == Category {
		return s.Category
	}
	return s.Product
}

// ---------------------------------------------------------------------------
// Entry helpers
// ---------------------------------------------------------------------------

// NewKey builds the dot path of a field.
func NewKey(t RecordType, id, field string) string {
	return t.Plural() + "." + id + "." + field
}

// Index returns the array index of the entry, or -1 for scalar fields.
func (e Entry) Index() int {
	if e.Element == nil {
		return -1
	}
	return e.Element.Index
}

// CacheKey returns the fingerprint cache key of the entry: the field name,
// suffixed with "_<index>" for array elements.
func (e Entry) CacheKey() string {
	if e.Element == nil {
		return e.Field
	}
	return e.Field + "_" + strconv.Itoa(e.Element.Index)
}

// String renders the entry key with its array index, if any.
func (e Entry) String() string {
	if e.Element == nil {
		return e.Key
	}
	return fmt.Sprintf("%s[%d]", e.Key, e.Element.Index)
}
