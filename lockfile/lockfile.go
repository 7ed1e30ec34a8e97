// Package lockfile implements the fingerprint cache: a JSON file that
// records the SHA-1 digest of every source string that was last sent for
// translation. Comparing current digests against it tells the sync engine
// which entries changed, so only those are translated again.
//
// The file is a three-level object, record type -> record id -> field key:
//
//	{"product": {"12": {"name": "<sha1>", "productSizes_0": "<sha1>"}}}
package lockfile

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/catsync/catalog"
)

// FileName is the default cache file name.
const FileName = "translated-refs.json"

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Checksums maps record type -> record id -> cache key -> digest.
type Checksums map[string]map[string]map[string]string

// LockFile is a fingerprint cache bound to a file path.
type LockFile struct {
	Checksums Checksums
	path      string
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the cache file at path. A missing file yields an empty cache.
// Nodes of the wrong shape are dropped and treated as never translated.
func Load(path string) (*LockFile, error) {
	lf := &LockFile{Checksums: make(Checksums), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return lf, nil
	}

	cs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.Checksums = cs
	return lf, nil
}

// Parse decodes cache file contents.
func Parse(data []byte) (Checksums, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cs := make(Checksums, len(raw))
	for typ, v := range raw {
		ids, ok := v.(map[string]any)
		if !ok {
			continue
		}
		byID := make(map[string]map[string]string, len(ids))
		for id, v := range ids {
			keys, ok := v.(map[string]any)
			if !ok {
				continue
			}
			digests := make(map[string]string, len(keys))
			for k, v := range keys {
				if s, ok := v.(string); ok {
					digests[k] = s
				}
			}
			byID[id] = digests
		}
		cs[typ] = byID
	}
	return cs, nil
}

// Save writes the cache to disk through a temporary file, creating the
// parent directory if needed. Output is stable for identical contents.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("cache file path not set")
	}
	if err := os.MkdirAll(filepath.Dir(lf.path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := json.MarshalIndent(lf.Checksums, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	data = append(data, '\n')

	tmp := lf.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, lf.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Path returns the cache file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Remove deletes the cache file. A missing file is not an error.
func (lf *LockFile) Remove() error {
	if err := os.Remove(lf.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", lf.path, err)
	}
	lf.Checksums = make(Checksums)
	return nil
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the SHA-1 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(s)))
}

// Lookup returns the stored digest of an entry.
func (cs Checksums) Lookup(e catalog.Entry) (string, bool) {
	d, ok := cs[string(e.Type)][e.ID][e.CacheKey()]
	return d, ok
}

// Put stores the digest of an entry's current value.
func (cs Checksums) Put(e catalog.Entry) {
	typ := string(e.Type)
	if cs[typ] == nil {
		cs[typ] = make(map[string]map[string]string)
	}
	if cs[typ][e.ID] == nil {
		cs[typ][e.ID] = make(map[string]string)
	}
	cs[typ][e.ID][e.CacheKey()] = Hash(e.Value)
}

// Clone returns a deep copy.
func (cs Checksums) Clone() Checksums {
	out := make(Checksums, len(cs))
	for typ, ids := range cs {
		byID := make(map[string]map[string]string, len(ids))
		for id, keys := range ids {
			digests := make(map[string]string, len(keys))
			for k, d := range keys {
				digests[k] = d
			}
			byID[id] = digests
		}
		out[typ] = byID
	}
	return out
}

// IsChanged reports whether the entry is new or its value changed since
// its digest was recorded.
func (cs Checksums) IsChanged(e catalog.Entry) bool {
	d, ok := cs.Lookup(e)
	return !ok || d != Hash(e.Value)
}

// Diff returns a copy of cs advanced to the current digests together with
// the entries that need translation: all of them when force is set,
// otherwise those that are new or whose value changed. cs is not modified.
func Diff(entries []catalog.Entry, cs Checksums, force bool) (Checksums, []catalog.Entry) {
	updated := cs.Clone()
	var changed []catalog.Entry
	for _, e := range entries {
		if force || cs.IsChanged(e) {
			changed = append(changed, e)
			updated.Put(e)
		}
	}
	return updated, changed
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of records and digests stored per record type.
func (cs Checksums) Stats() (records, keys int) {
	for _, ids := range cs {
		records += len(ids)
		for _, k := range ids {
			keys += len(k)
		}
	}
	return
}

// Types returns the sorted record types present in the cache.
func (cs Checksums) Types() []string {
	types := make([]string, 0, len(cs))
	for t := range cs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Summary returns a human-readable summary string.
func (cs Checksums) Summary() string {
	records, keys := cs.Stats()
	if keys == 0 {
		return "empty"
	}

	var parts []string
	for _, t := range cs.Types() {
		n := 0
		for _, k := range cs[t] {
			n += len(k)
		}
		parts = append(parts, fmt.Sprintf("%s: %d keys", t, n))
	}
	return fmt.Sprintf("%d records, %d keys (%s)", records, keys, strings.Join(parts, ", "))
}
