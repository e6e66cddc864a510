package sources

import (
	"context"
	"slices"
)

// Summary describes what a source file contains and how its columns resolve.
type Summary struct {
	Path   string `json:"path" yaml:"path"`
	Format Format `json:"format" yaml:"format"`
	Rows   int    `json:"rows" yaml:"rows"`
	// Keys lists every key seen across rows, sorted.
	Keys []string `json:"keys" yaml:"keys"`
	// Resolved counts rows in which each logical field resolved.
	Resolved map[string]int `json:"resolved" yaml:"resolved"`
	// Matched records the keys that satisfied each logical field.
	Matched map[string][]string `json:"matched" yaml:"matched"`
}

// Inspect loads path and summarizes its shape. Load errors are returned
// alongside a summary of whatever could be read.
func Inspect(ctx context.Context, path string) (*Summary, error) {
	rows, err := Load(ctx, path)
	summary := Summarize(rows)
	summary.Path = path
	summary.Format = FormatOf(path)
	return summary, err
}

// Summarize computes a Summary over rows already in memory.
func Summarize(rows []RawRow) *Summary {
	s := &Summary{
		Rows:     len(rows),
		Keys:     []string{},
		Resolved: make(map[string]int),
		Matched:  make(map[string][]string),
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				s.Keys = append(s.Keys, key)
			}
		}
		rec := NewRecord(row)
		for _, f := range Fields() {
			_, key, ok := rec.Lookup(f)
			if !ok {
				continue
			}
			s.Resolved[f.String()]++
			if !slices.Contains(s.Matched[f.String()], key) {
				s.Matched[f.String()] = append(s.Matched[f.String()], key)
			}
		}
	}
	slices.Sort(s.Keys)
	for f := range s.Matched {
		slices.Sort(s.Matched[f])
	}
	return s
}
