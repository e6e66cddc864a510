// Package enrichment builds the reference index that supplies authoritative
// state and institution type for colleges, keyed by normalized name.
//
// The index is built once per build from reference sources and is read-only
// afterwards. A lookup miss is not an error: the merge engine falls back to
// values found in the cutoff sources themselves.
package enrichment

import (
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Entry is the reference metadata for one college.
type Entry struct {
	State string `json:"state,omitempty" yaml:"state,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// IsZero reports whether the entry carries no metadata.
func (e Entry) IsZero() bool {
	return e.State == "" && e.Type == ""
}

// Index maps normalized names to reference metadata. A nil *Index behaves as empty.
type Index struct {
	entries map[normalize.Key]Entry
}

// Build indexes reference rows. Rows without a usable name are ignored. When
// several rows share a key, each field keeps its first non-empty value.
func Build(rows []sources.RawRow) *Index {
	idx := &Index{entries: make(map[normalize.Key]Entry)}
	for _, row := range rows {
		idx.add(sources.NewRecord(row))
	}
	return idx
}

func (idx *Index) add(rec sources.Record) {
	key := normalize.Name(rec.Name())
	if key.IsZero() {
		return
	}
	entry := idx.entries[key]
	if entry.State == "" {
		entry.State = rec.State()
	}
	if entry.Type == "" {
		entry.Type = rec.Type()
	}
	idx.entries[key] = entry
}

// Lookup returns the entry for key.
func (idx *Index) Lookup(key normalize.Key) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	entry, ok := idx.entries[key]
	return entry, ok
}

// Len returns the number of indexed colleges.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}
