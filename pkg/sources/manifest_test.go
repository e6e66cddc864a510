package sources_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/sources"
)

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, "rankmap.yaml", `
exams:
  - id: jee
    ceiling: 250000
    coverage: true
  - id: NEET
sources:
  - id: neet_2024
    path: neet.json
    exam: neet
  - id: jee_2024
    path: /abs/jee.csv
    exam: JEE
    category: General
  - path: data/reference.json
    role: Reference
  - id: pool
    path: pool.json
    role: pool
`)
	m, err := sources.LoadManifest(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	cutoffs := m.ByRole(sources.RoleCutoffs)
	require.Len(t, cutoffs, 2)
	assert.Equal(t, "jee_2024", cutoffs[0].ID)
	assert.Equal(t, "/abs/jee.csv", cutoffs[0].Path)
	assert.Equal(t, catalogs.ExamNEET, cutoffs[1].Exam)
	assert.Equal(t, filepath.Join(dir, "neet.json"), cutoffs[1].Path)

	refs := m.ByRole(sources.RoleReference)
	require.Len(t, refs, 1)
	assert.Equal(t, "reference", refs[0].ID)

	reg := m.Registry()
	assert.Equal(t, 250000, reg.Ceiling(catalogs.ExamJEE))
	assert.Equal(t, 200000, reg.Ceiling(catalogs.ExamNEET))
}

func TestLoadManifestValidation(t *testing.T) {
	tests := map[string]string{
		"missing path": "sources:\n  - id: a\n",
		"bad role":     "sources:\n  - id: a\n    path: a.json\n    role: mystery\n",
		"duplicate":    "sources:\n  - id: a\n    path: a.json\n  - id: a\n    path: b.json\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := sources.LoadManifest(writeFile(t, "m.yaml", content))
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestManifestDefaultRegistry(t *testing.T) {
	m := &sources.Manifest{}
	assert.Equal(t, []string{"JEE", "NEET"}, m.Registry().Strings())
}

func TestDescriptorLoadCarriesID(t *testing.T) {
	d := sources.Descriptor{ID: "jee_2023", Path: filepath.Join(t.TempDir(), "gone.json")}
	_, err := d.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jee_2023")
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "mixed.json", `[
		{"college": "A", "rank": 10, "state": "Goa"},
		{"university": "B", "cutoff": "20"},
		{"note": "no name"}
	]`)
	summary, err := sources.Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, sources.FormatJSON, summary.Format)
	assert.Equal(t, []string{"college", "cutoff", "note", "rank", "state", "university"}, summary.Keys)
	assert.Equal(t, 2, summary.Resolved["name"])
	assert.Equal(t, 2, summary.Resolved["cutoff"])
	assert.Equal(t, 1, summary.Resolved["state"])
	assert.Equal(t, []string{"college", "university"}, summary.Matched["name"])
}
