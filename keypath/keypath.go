// Package keypath reads and writes values in nested JSON-like trees
// addressed by dot-separated paths such as "products.42.name".
//
// Trees are the generic shape produced by encoding/json and yaml.v3:
// map[string]any for objects and []any for arrays. Array-valued fields
// hold ordered sequences of single-attribute records, for example
// [{"size": "Small"}, {"size": "Large"}].
package keypath

import "strings"

// Split breaks a dot path into its segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Join builds a dot path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, ".")
}

// Get returns the value stored at path. The second result is false when a
// segment is missing or an intermediate node is not an object.
func Get(tree map[string]any, path string) (any, bool) {
	segs := Split(path)
	if len(segs) == 0 || tree == nil {
		return nil, false
	}
	node := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	v, ok := node[segs[len(segs)-1]]
	return v, ok
}

// GetString is Get restricted to string leaves.
func GetString(tree map[string]any, path string) (string, bool) {
	v, ok := Get(tree, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set assigns value at path, creating objects for missing intermediate
// segments. Existing objects along the path are reused; any other value in
// an intermediate position is replaced by a fresh object.
func Set(tree map[string]any, path string, value any) {
	segs := Split(path)
	if len(segs) == 0 || tree == nil {
		return
	}
	parent(tree, segs)[segs[len(segs)-1]] = value
}

// SetElement stores {attr: value} at position index of the array at path.
// The array is created when absent (or when the node is not an array) and
// padded with empty records so that index is addressable.
func SetElement(tree map[string]any, path string, index int, attr string, value any) {
	segs := Split(path)
	if len(segs) == 0 || tree == nil || index < 0 {
		return
	}
	p := parent(tree, segs)
	leaf := segs[len(segs)-1]

	arr, _ := p[leaf].([]any)
	for len(arr) <= index {
		arr = append(arr, map[string]any{})
	}
	arr[index] = map[string]any{attr: value}
	p[leaf] = arr
}

// Element returns the string attribute attr of the array element at index.
func Element(tree map[string]any, path string, index int, attr string) (string, bool) {
	v, ok := Get(tree, path)
	if !ok {
		return "", false
	}
	arr, ok := v.([]any)
	if !ok || index < 0 || index >= len(arr) {
		return "", false
	}
	rec, ok := arr[index].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := rec[attr].(string)
	return s, ok
}

// Delete removes the leaf at path. Empty parents are left in place.
func Delete(tree map[string]any, path string) bool {
	segs := Split(path)
	if len(segs) == 0 || tree == nil {
		return false
	}
	node := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			return false
		}
		node = next
	}
	leaf := segs[len(segs)-1]
	if _, ok := node[leaf]; !ok {
		return false
	}
	delete(node, leaf)
	return true
}

// parent walks to the object holding the last segment, creating or
// replacing intermediate nodes as needed.
func parent(tree map[string]any, segs []string) map[string]any {
	node := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	return node
}
