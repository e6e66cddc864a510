package save_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/save"
)

var built = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func sample(t *testing.T) (*catalogs.Catalog, *catalogs.Exams) {
	t.Helper()
	acc := catalogs.New()
	delhi, _, err := acc.Ensure("IIT Delhi")
	require.NoError(t, err)
	delhi.State, delhi.Type = "Delhi", "Government"
	delhi.RaiseCutoff(catalogs.ExamJEE, 900)
	delhi.AddExam(catalogs.ExamJEE)
	delhi.AddSource("jee_2024")

	aiims, _, err := acc.Ensure("AIIMS Delhi")
	require.NoError(t, err)
	aiims.State, aiims.Type = "Delhi", "Government"
	aiims.RaiseCutoff(catalogs.ExamNEET, 50)
	aiims.AddExam(catalogs.ExamNEET)
	aiims.AddSource("neet_2024")
	aiims.AddCategory("AIQ")

	return acc.Freeze(), catalogs.DefaultExams()
}

func TestNewDocumentMetadata(t *testing.T) {
	cat, exams := sample(t)
	doc := save.NewDocument(cat, exams, "build-1", built)

	assert.Equal(t, 2, doc.Metadata.TotalColleges)
	assert.Equal(t, built, doc.Metadata.LastUpdated)
	assert.Equal(t, "JEE 1-900, NEET 1-50", doc.Metadata.Coverage)
	assert.Equal(t, []catalogs.ExamType{catalogs.ExamJEE, catalogs.ExamNEET}, doc.Metadata.Exams)
	assert.Equal(t, map[catalogs.ExamType]int{catalogs.ExamJEE: 200000, catalogs.ExamNEET: 200000}, doc.Metadata.RankCoverage)
	assert.Equal(t, "IIT Delhi", doc.Colleges[0].Name)
}

func TestJSONShape(t *testing.T) {
	cat, exams := sample(t)
	var buf bytes.Buffer
	require.NoError(t, save.NewDocument(cat, exams, "build-1", built).Write(save.WithWriter(&buf)))

	var probe struct {
		Metadata map[string]any   `json:"metadata"`
		Colleges []map[string]any `json:"colleges"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &probe))

	assert.Equal(t, "2024-06-01T12:30:00Z", probe.Metadata["last_updated"])
	assert.EqualValues(t, 2, probe.Metadata["total_colleges"])
	assert.Contains(t, probe.Metadata, "rank_coverage")
	assert.Equal(t, map[string]any{"JEE": float64(900)}, probe.Colleges[0]["cutoffs"])
	assert.Equal(t, "iit delhi", probe.Colleges[0]["key"])
	assert.NotContains(t, probe.Colleges[0], "derived")
}

func TestWriteAndLoad(t *testing.T) {
	cat, exams := sample(t)
	dir := t.TempDir()

	for _, name := range []string{"colleges.json", "nested/colleges.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, save.NewDocument(cat, exams, "build-1", built).Write(save.WithPath(path)))

			doc, err := save.Load(path)
			require.NoError(t, err)
			assert.Equal(t, "build-1", doc.Metadata.BuildID)
			assert.True(t, doc.Metadata.LastUpdated.Equal(built))

			loaded, err := doc.Catalog()
			require.NoError(t, err)
			assert.True(t, loaded.Frozen())
			if diff := cmp.Diff(cat.List(), loaded.List()); diff != "" {
				t.Errorf("catalog mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, exams.List(), doc.Registry().List())
		})
	}
}

func TestEmptyCatalogIsWellFormed(t *testing.T) {
	doc := save.NewDocument(catalogs.New(), catalogs.DefaultExams(), "", built)
	var buf bytes.Buffer
	require.NoError(t, doc.Write(save.WithWriter(&buf), save.WithCompact(true)))
	assert.Contains(t, buf.String(), `"colleges":[]`)
	assert.Contains(t, buf.String(), `"coverage":"none"`)
}

func TestLoadMissing(t *testing.T) {
	_, err := save.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.IsNotFound(err))
}

func TestWriteRequiresDestination(t *testing.T) {
	err := save.NewDocument(nil, nil, "", built).Write()
	assert.True(t, errors.IsValidationError(err))
}

func TestParseFormat(t *testing.T) {
	f, err := save.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, save.FormatYAML, f)

	_, err = save.ParseFormat("xml")
	assert.Error(t, err)
}
