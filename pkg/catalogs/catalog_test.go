package catalogs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/normalize"
)

func TestEnsureDeduplicatesByNormalizedKey(t *testing.T) {
	acc := catalogs.New()

	first, created, err := acc.Ensure("IIT Delhi")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := acc.Ensure("  iit   DELHI ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, "IIT Delhi", second.Name, "display name comes from first encounter")
	assert.Equal(t, 1, acc.Len())
}

func TestEnsureRejectsEmptyName(t *testing.T) {
	_, _, err := catalogs.New().Ensure("   ")
	assert.True(t, errors.IsValidationError(err))
}

func TestFrozenCatalogIsReadOnly(t *testing.T) {
	acc := catalogs.New()
	_, _, err := acc.Ensure("NIT Trichy")
	require.NoError(t, err)
	acc.Freeze()

	_, _, err = acc.Ensure("NIT Warangal")
	assert.ErrorIs(t, err, errors.ErrReadOnly)
	assert.ErrorIs(t, acc.Add(catalogs.NewCollege("X")), errors.ErrReadOnly)
	assert.True(t, acc.Frozen())

	clone := acc.Clone()
	assert.False(t, clone.Frozen())
	_, _, err = clone.Ensure("NIT Warangal")
	assert.NoError(t, err)
	assert.Equal(t, 1, acc.Len())
}

func TestFindReturnsCopy(t *testing.T) {
	acc := catalogs.New()
	c, _, _ := acc.Ensure("BITS Pilani")
	c.RaiseCutoff(catalogs.ExamJEE, 3000)

	found, err := acc.Find("bits pilani")
	require.NoError(t, err)
	found.Cutoffs[catalogs.ExamJEE] = 1

	live, _ := acc.Get(normalize.Name("BITS Pilani"))
	assert.Equal(t, 3000, live.Cutoffs[catalogs.ExamJEE])

	_, err = acc.Find("missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestRaiseCutoffIsMonotonic(t *testing.T) {
	c := catalogs.NewCollege("IIT Bombay")
	assert.True(t, c.RaiseCutoff(catalogs.ExamJEE, 5000))
	assert.False(t, c.RaiseCutoff(catalogs.ExamJEE, 3000))
	assert.False(t, c.RaiseCutoff(catalogs.ExamJEE, 5000))
	assert.Equal(t, 5000, c.Cutoffs[catalogs.ExamJEE])
}

func TestSetsCollapseDuplicates(t *testing.T) {
	c := catalogs.NewCollege("AIIMS Delhi")
	c.AddExam(catalogs.ExamNEET)
	c.AddExam(catalogs.ExamJEE)
	c.AddExam(catalogs.ExamNEET)
	c.AddSource("b")
	c.AddSource("a")
	c.AddSource("b")
	c.AddSource("")
	c.AddCategory("General")

	assert.Equal(t, []catalogs.ExamType{catalogs.ExamJEE, catalogs.ExamNEET}, c.Exams)
	assert.Equal(t, []string{"a", "b"}, c.Sources)
	assert.True(t, c.HasExam(catalogs.ExamNEET))
	assert.True(t, c.MatchesCategory("general"))
	assert.False(t, c.MatchesCategory("OBC"))
}

func TestMatchesCategoryUsesType(t *testing.T) {
	c := catalogs.NewCollege("NIT Calicut")
	c.Type = "Government"
	assert.True(t, c.MatchesCategory("GOVERNMENT"))
}

func TestDerivedAndUnknown(t *testing.T) {
	c := catalogs.NewCollege("Filler")
	assert.False(t, c.IsDerived())
	c.AddSource(constants.DerivedSourceTag)
	assert.True(t, c.IsDerived())

	c.FillUnknown()
	assert.Equal(t, constants.Unknown, c.State)
	assert.Equal(t, constants.Unknown, c.Type)

	c.State = "Kerala"
	c.FillUnknown()
	assert.Equal(t, "Kerala", c.State)
}

func TestStatsAndMaxCutoff(t *testing.T) {
	acc := catalogs.New()
	a, _, _ := acc.Ensure("A")
	a.RaiseCutoff(catalogs.ExamJEE, 100)
	b, _, _ := acc.Ensure("B")
	b.RaiseCutoff(catalogs.ExamJEE, 900)
	b.RaiseCutoff(catalogs.ExamNEET, 50)
	b.Derived = true

	assert.Equal(t, 900, acc.MaxCutoff(catalogs.ExamJEE))
	assert.Equal(t, 0, acc.MaxCutoff("GATE"))

	stats := acc.Stats()
	assert.Equal(t, 2, stats.Colleges)
	assert.Equal(t, 1, stats.Derived)
	assert.Equal(t, 2, stats.PerExam[catalogs.ExamJEE])
	assert.Equal(t, 50, stats.MaxRank[catalogs.ExamNEET])
}

func TestListPreservesFirstSeenOrder(t *testing.T) {
	acc := catalogs.New()
	for _, name := range []string{"Zeta", "Alpha", "Mu"} {
		_, _, err := acc.Ensure(name)
		require.NoError(t, err)
	}
	var names []string
	for _, c := range acc.List() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mu"}, names)
	assert.Equal(t, []normalize.Key{"zeta", "alpha", "mu"}, acc.Keys())
}
