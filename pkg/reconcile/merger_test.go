package reconcile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/enrichment"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/reconcile"
	"github.com/agentstation/rankmap/pkg/sources"
)

var jee = sources.Descriptor{ID: "jee_a", Exam: catalogs.ExamJEE}

func newMerger(opts ...reconcile.Option) *reconcile.Merger {
	return reconcile.NewMerger(catalogs.DefaultExams(), append(opts, reconcile.WithLogger(logging.NewNopLogger()))...)
}

func TestMergeDuplicateNamesTakeMaxCutoff(t *testing.T) {
	m := newMerger()

	acc, _ := m.Merge(nil, sources.Descriptor{ID: "a", Exam: catalogs.ExamJEE},
		[]sources.RawRow{{"college": "IIT Delhi", "cutoff_rank": 500}})
	acc, _ = m.Merge(acc, sources.Descriptor{ID: "b", Exam: catalogs.ExamJEE},
		[]sources.RawRow{{"college": "iit delhi", "cutoff_rank": 900}})

	require.Equal(t, 1, acc.Len())
	college, ok := acc.Get("iit delhi")
	require.True(t, ok)
	assert.Equal(t, "IIT Delhi", college.Name)
	assert.Equal(t, 900, college.Cutoffs[catalogs.ExamJEE])
	assert.Equal(t, []string{"a", "b"}, college.Sources)
	assert.Equal(t, []catalogs.ExamType{catalogs.ExamJEE}, college.Exams)
}

func TestMergeIsMonotonic(t *testing.T) {
	m := newMerger()
	acc, _ := m.Merge(nil, jee, []sources.RawRow{{"college": "NIT Surathkal", "rank": 8000}})
	acc, stats := m.Merge(acc, jee, []sources.RawRow{{"college": "NIT Surathkal", "rank": 3000}})

	college, _ := acc.Get("nit surathkal")
	assert.Equal(t, 8000, college.Cutoffs[catalogs.ExamJEE])
	assert.Equal(t, 0, stats.Raised)
	assert.Equal(t, 1, stats.Merged)
}

func TestMergeClampsCutoffs(t *testing.T) {
	m := newMerger()
	acc, stats := m.Merge(nil, jee, []sources.RawRow{
		{"college": "Low", "cutoff_rank": -40},
		{"college": "High", "cutoff_rank": 999999999},
		{"college": "Missing"},
		{"college": "Garbage", "cutoff_rank": "n/a"},
		{"college": "Grouped", "cutoff_rank": "1,234"},
		{"college": "Float", "cutoff_rank": 88.9},
	})

	want := map[string]int{
		"low":     1,
		"high":    constants.DefaultRankCeiling,
		"missing": 1,
		"garbage": 1,
		"grouped": 1234,
		"float":   88,
	}
	for key, cutoff := range want {
		college, ok := acc.Get(normalize.Key(key))
		require.True(t, ok, key)
		assert.Equal(t, cutoff, college.Cutoffs[catalogs.ExamJEE], key)
	}
	assert.Equal(t, 2, stats.Defaulted)
}

func TestMergeSkipsMalformedRows(t *testing.T) {
	m := newMerger()
	acc, stats := m.Merge(nil, sources.Descriptor{ID: "mixed"}, []sources.RawRow{
		{"cutoff_rank": 10, "exam": "JEE"},
		{"college": "   ", "exam": "JEE"},
		{"college": "No Exam", "rank": 10},
		{"college": "Unknown Exam", "rank": 10, "exam": "GATE"},
		{"college": "Good", "rank": 10, "exam": "neet"},
	})

	assert.Equal(t, 1, acc.Len())
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 4, stats.Skipped)
	assert.Equal(t, 1, stats.Merged)
	require.Len(t, stats.Errors, 4)
	for _, err := range stats.Errors {
		assert.True(t, errors.IsRowMalformed(err))
	}

	good, _ := acc.Get("good")
	assert.Equal(t, 10, good.Cutoffs[catalogs.ExamNEET])
}

func TestMergeMetadataRules(t *testing.T) {
	idx := enrichment.Build([]sources.RawRow{
		{"college": "IIT Kanpur", "state": "Uttar Pradesh"},
	})
	m := newMerger(reconcile.WithIndex(idx))

	acc, _ := m.Merge(nil, jee, []sources.RawRow{
		{"college": "IIT Kanpur", "rank": 2000, "state": "Wrong State", "type": "Government"},
		{"college": "IIT Kanpur", "rank": 2100, "type": "Private"},
		{"college": "VIT Vellore", "rank": 30000},
		{"college": "VIT Vellore", "rank": 31000, "state": "Tamil Nadu", "type": "Private"},
		{"college": "VIT Vellore", "rank": 32000, "state": ""},
	})

	kanpur, _ := acc.Get("iit kanpur")
	assert.Equal(t, "Uttar Pradesh", kanpur.State, "index wins")
	assert.Equal(t, "Government", kanpur.Type, "first non-empty row value wins")

	vit, _ := acc.Get("vit vellore")
	assert.Equal(t, "Tamil Nadu", vit.State)
	assert.Equal(t, "Private", vit.Type)
}

func TestMergeCategories(t *testing.T) {
	m := newMerger()
	desc := sources.Descriptor{ID: "jee_obc", Exam: catalogs.ExamJEE, Category: "OBC"}
	acc, _ := m.Merge(nil, desc, []sources.RawRow{
		{"college": "NIT Rourkela", "rank": 9000},
		{"college": "NIT Rourkela", "rank": 9000, "quota": "Home State"},
	})
	college, _ := acc.Get("nit rourkela")
	assert.Equal(t, []string{"Home State", "OBC"}, college.Categories)
}

func TestMergeIsIdempotent(t *testing.T) {
	m := newMerger()
	rows := []sources.RawRow{
		{"college": "IIT Delhi", "cutoff_rank": 500},
		{"college": "IIT Bombay", "cutoff_rank": 300, "state": "Maharashtra"},
	}

	once, _ := m.Merge(nil, jee, rows)
	snapshot := once.Clone()
	twice, _ := m.Merge(once, jee, rows)

	if diff := cmp.Diff(snapshot.List(), twice.List()); diff != "" {
		t.Errorf("second merge changed the aggregate (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotTouchFrozenCatalog(t *testing.T) {
	m := newMerger()
	published, _ := m.Merge(nil, jee, []sources.RawRow{{"college": "A", "rank": 5}})
	published.Freeze()

	next, _ := m.Merge(published, jee, []sources.RawRow{{"college": "B", "rank": 6}})
	assert.Equal(t, 1, published.Len())
	assert.Equal(t, 2, next.Len())
	assert.NotSame(t, published, next)
}

func TestMergeAllOrdersSourcesAndSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	descs := []sources.Descriptor{
		{ID: "z_second", Path: write("z.json", `[{"college": "Shared", "rank": 100, "state": "Kerala"}]`), Exam: catalogs.ExamJEE},
		{ID: "missing", Path: filepath.Join(dir, "missing.json"), Exam: catalogs.ExamJEE},
		{ID: "broken", Path: write("broken.json", `{`), Exam: catalogs.ExamJEE},
		{ID: "a_first", Path: write("a.json", `{"data": [{"college": "Shared", "rank": 50, "state": "Goa"}]}`), Exam: catalogs.ExamJEE},
	}

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	acc, report := newMerger().MergeAll(ctx, nil, descs)

	shared, ok := acc.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "Goa", shared.State, "a_first is merged before z_second")
	assert.Equal(t, 100, shared.Cutoffs[catalogs.ExamJEE])

	assert.Equal(t, []string{"a_first", "z_second"}, report.Used())
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "broken", report.Failed[0].Source)
	assert.True(t, errors.IsSourceMalformed(report.Failed[0].Err))
	assert.True(t, errors.IsSourceUnavailable(report.Failed[1].Err))
	assert.Equal(t, 2, report.Rows())
	assert.Equal(t, 2, report.Merged())
	tl.AssertContains(t, "Skipping source")
}

func TestMergeAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	acc, report := newMerger().MergeAll(ctx, nil, []sources.Descriptor{{ID: "a", Path: "a.json"}})
	assert.Equal(t, 0, acc.Len())
	assert.ErrorIs(t, report.Err, context.Canceled)
}

func TestFinalizeFillsUnknown(t *testing.T) {
	m := newMerger()
	acc, _ := m.Merge(nil, jee, []sources.RawRow{
		{"college": "Bare", "rank": 10},
		{"college": "Full", "rank": 10, "state": "Punjab", "type": "Private"},
	})
	reconcile.Finalize(acc)

	bare, _ := acc.Get("bare")
	assert.Equal(t, constants.Unknown, bare.State)
	assert.Equal(t, constants.Unknown, bare.Type)
	full, _ := acc.Get("full")
	assert.Equal(t, "Punjab", full.State)
}
