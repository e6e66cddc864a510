package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/coverage"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/sources"
)

func seeded(t *testing.T, exam catalogs.ExamType, cutoff int) *catalogs.Catalog {
	t.Helper()
	acc := catalogs.New()
	c, _, err := acc.Ensure("Seed College")
	require.NoError(t, err)
	c.RaiseCutoff(exam, cutoff)
	c.AddExam(exam)
	return acc
}

func TestExtendFillsToCeiling(t *testing.T) {
	acc := seeded(t, catalogs.ExamJEE, 199990)
	pool := []coverage.Candidate{
		{Name: "Alpha Institute", State: "Goa"},
		{Name: "Beta College"},
		{Name: "Gamma University", Type: "Private"},
	}

	acc, result := coverage.NewExtender(logging.NewNopLogger()).Extend(acc, catalogs.ExamJEE, pool, 200000)

	assert.Equal(t, 10, result.Created)
	assert.Equal(t, 199990, result.CurrentMax)
	assert.Equal(t, 11, acc.Len())
	assert.Equal(t, 200000, acc.MaxCutoff(catalogs.ExamJEE))

	var derived []catalogs.College
	for _, c := range acc.List() {
		if c.IsDerived() {
			derived = append(derived, c)
		}
	}
	require.Len(t, derived, 10)
	for i, c := range derived {
		assert.Equal(t, 199991+i, c.Cutoffs[catalogs.ExamJEE])
		assert.True(t, c.Derived)
		assert.Equal(t, []string{constants.DerivedSourceTag}, c.Sources)
		assert.Equal(t, []catalogs.ExamType{catalogs.ExamJEE}, c.Exams)
	}

	assert.Equal(t, "Alpha Institute (JEE 199991)", derived[0].Name)
	assert.Equal(t, "Goa", derived[0].State)
	assert.Equal(t, "Beta College (JEE 199992)", derived[1].Name)
	assert.Equal(t, constants.States[1], derived[1].State)
	assert.Equal(t, "Private", derived[2].Type)
	assert.Equal(t, "Alpha Institute (JEE 199994)", derived[3].Name, "pool wraps around")
}

func TestExtendNoOpAtCeiling(t *testing.T) {
	acc := seeded(t, catalogs.ExamNEET, 5000)
	acc, result := coverage.NewExtender(logging.NewNopLogger()).Extend(acc, catalogs.ExamNEET, nil, 5000)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, acc.Len())
}

func TestExtendEmptyPoolUsesPlaceholder(t *testing.T) {
	acc := seeded(t, catalogs.ExamNEET, 98)
	acc, result := coverage.NewExtender(logging.NewNopLogger()).Extend(acc, catalogs.ExamNEET, nil, 100)
	require.Equal(t, 2, result.Created)

	c, err := acc.Find(constants.PlaceholderCandidate + " (NEET 100)")
	require.NoError(t, err)
	assert.Equal(t, 100, c.Cutoffs[catalogs.ExamNEET])
}

func TestExtendIsDeterministicAndIdempotent(t *testing.T) {
	pool := []coverage.Candidate{{Name: "P"}, {Name: "Q"}}
	ext := coverage.NewExtender(logging.NewNopLogger())

	first, _ := ext.Extend(seeded(t, catalogs.ExamJEE, 95), catalogs.ExamJEE, pool, 100)
	second, _ := ext.Extend(seeded(t, catalogs.ExamJEE, 95), catalogs.ExamJEE, pool, 100)
	assert.Equal(t, first.List(), second.List())

	again, result := ext.Extend(first, catalogs.ExamJEE, pool, 100)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, first.Len(), again.Len())
}

func TestExtendLeavesCollidingRecordUntouched(t *testing.T) {
	acc := catalogs.New()
	real, _, err := acc.Ensure("Alpha (JEE 12)")
	require.NoError(t, err)
	real.RaiseCutoff(catalogs.ExamJEE, 10)
	real.AddExam(catalogs.ExamJEE)
	real.AddSource("jee_2024")

	pool := []coverage.Candidate{{Name: "Alpha"}}
	acc, result := coverage.NewExtender(logging.NewNopLogger()).Extend(acc, catalogs.ExamJEE, pool, 12)

	assert.Equal(t, 1, result.Collisions)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 3, acc.Len())
	assert.Equal(t, 12, acc.MaxCutoff(catalogs.ExamJEE))

	kept, err := acc.Find("Alpha (JEE 12)")
	require.NoError(t, err)
	assert.Equal(t, 10, kept.Cutoffs[catalogs.ExamJEE])
	assert.Equal(t, []string{"jee_2024"}, kept.Sources)
	assert.False(t, kept.Derived)

	suffixed, err := acc.Find("Alpha (JEE 12) #2")
	require.NoError(t, err)
	assert.Equal(t, 12, suffixed.Cutoffs[catalogs.ExamJEE])
	assert.True(t, suffixed.IsDerived())
	assert.Equal(t, []string{constants.DerivedSourceTag}, suffixed.Sources)
}

func TestExtendAllRespectsRegistry(t *testing.T) {
	acc := seeded(t, catalogs.ExamJEE, 8)
	exams := catalogs.NewExams(
		catalogs.Exam{Type: catalogs.ExamJEE, Ceiling: 10, Coverage: true},
		catalogs.Exam{Type: catalogs.ExamNEET, Ceiling: 10, Coverage: true},
		catalogs.Exam{Type: "GATE", Ceiling: 10, Coverage: false},
	)

	acc, results := coverage.NewExtender(logging.NewNopLogger()).ExtendAll(acc, exams, nil)
	require.Len(t, results, 1, "NEET has no observed cutoffs and GATE has coverage off")
	assert.Equal(t, catalogs.ExamJEE, results[0].Exam)
	assert.Equal(t, 2, results[0].Created)
	assert.Equal(t, 10, acc.MaxCutoff(catalogs.ExamJEE))
	assert.Equal(t, 0, acc.MaxCutoff(catalogs.ExamNEET))
}

func TestPoolFromRows(t *testing.T) {
	pool := coverage.PoolFromRows([]sources.RawRow{
		{"name": "Amity University", "state": "Uttar Pradesh", "type": "Private"},
		{"name": "amity  university", "state": "Rajasthan"},
		{"state": "nameless"},
		{"college": "Manipal Institute"},
	})
	assert.Equal(t, []coverage.Candidate{
		{Name: "Amity University", State: "Uttar Pradesh", Type: "Private"},
		{Name: "Manipal Institute"},
	}, pool)
}
