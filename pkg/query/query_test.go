package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/query"
)

type fixture struct {
	name       string
	state      string
	kind       string
	categories []string
	derived    bool
	cutoffs    map[catalogs.ExamType]int
}

func build(t *testing.T, fixtures ...fixture) *catalogs.Catalog {
	t.Helper()
	acc := catalogs.New()
	for _, f := range fixtures {
		c, _, err := acc.Ensure(f.name)
		require.NoError(t, err)
		c.State = f.state
		c.Type = f.kind
		for _, cat := range f.categories {
			c.AddCategory(cat)
		}
		for exam, cutoff := range f.cutoffs {
			c.RaiseCutoff(exam, cutoff)
			c.AddExam(exam)
		}
		if f.derived {
			c.Derived = true
			c.AddSource(constants.DerivedSourceTag)
		}
	}
	return acc.Freeze()
}

func names(colleges []catalogs.College) []string {
	out := make([]string, len(colleges))
	for i, c := range colleges {
		out[i] = c.Name
	}
	return out
}

func jee(cutoff int) map[catalogs.ExamType]int {
	return map[catalogs.ExamType]int{catalogs.ExamJEE: cutoff}
}

func TestRunIITDelhiExample(t *testing.T) {
	cat := build(t, fixture{name: "IIT Delhi", cutoffs: jee(900)})
	exams := catalogs.DefaultExams()

	got, err := query.Run(cat, exams, query.Request{Exam: "JEE", Rank: 700})
	require.NoError(t, err)
	assert.Equal(t, []string{"IIT Delhi"}, names(got))

	got, err = query.Run(cat, exams, query.Request{Exam: "JEE", Rank: 1000})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRunCorrectnessAndOrder(t *testing.T) {
	cat := build(t,
		fixture{name: "zeta college", cutoffs: jee(5000)},
		fixture{name: "Alpha College", cutoffs: jee(5000)},
		fixture{name: "Beta Institute", cutoffs: jee(3000)},
		fixture{name: "Too Selective", cutoffs: jee(999)},
		fixture{name: "Boundary", cutoffs: jee(1000)},
		fixture{name: "NEET Only", cutoffs: map[catalogs.ExamType]int{catalogs.ExamNEET: 90000}},
	)

	got, err := query.Run(cat, catalogs.DefaultExams(), query.Request{Exam: "jee", Rank: 1000})
	require.NoError(t, err)
	assert.Equal(t, []string{"Boundary", "Beta Institute", "Alpha College", "zeta college"}, names(got))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Cutoffs[catalogs.ExamJEE], got[i].Cutoffs[catalogs.ExamJEE])
	}
}

func TestRunFilters(t *testing.T) {
	cat := build(t,
		fixture{name: "NIT Trichy", state: "Tamil Nadu", kind: "Government", categories: []string{"OBC"}, cutoffs: jee(6000)},
		fixture{name: "VIT Vellore", state: "tamil nadu", kind: "Private", cutoffs: jee(40000)},
		fixture{name: "COEP Pune", state: "Maharashtra", kind: "Government", cutoffs: jee(15000)},
		fixture{name: "Filler (JEE 199999)", state: "Tamil Nadu", derived: true, cutoffs: jee(199999)},
	)
	exams := catalogs.DefaultExams()

	tests := []struct {
		name string
		req  query.Request
		want []string
	}{
		{"state ignores case", query.Request{Exam: "JEE", Rank: 100, State: "TAMIL NADU"}, []string{"NIT Trichy", "VIT Vellore", "Filler (JEE 199999)"}},
		{"category by type", query.Request{Exam: "JEE", Rank: 100, Category: "government"}, []string{"NIT Trichy", "COEP Pune"}},
		{"category by set", query.Request{Exam: "JEE", Rank: 100, Category: "obc"}, []string{"NIT Trichy"}},
		{"exclude derived", query.Request{Exam: "JEE", Rank: 100, State: "Tamil Nadu", ExcludeDerived: true}, []string{"NIT Trichy", "VIT Vellore"}},
		{"max cutoff", query.Request{Exam: "JEE", Rank: 100, MaxCutoff: 20000}, []string{"NIT Trichy", "COEP Pune"}},
		{"limit", query.Request{Exam: "JEE", Rank: 100, Limit: 2}, []string{"NIT Trichy", "COEP Pune"}},
		{"negative limit is unlimited", query.Request{Exam: "JEE", Rank: 100, Limit: -1}, []string{"NIT Trichy", "COEP Pune", "VIT Vellore", "Filler (JEE 199999)"}},
		{"no matches", query.Request{Exam: "JEE", Rank: 100, State: "Goa"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.Run(cat, exams, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestRunErrors(t *testing.T) {
	cat := build(t, fixture{name: "A", cutoffs: jee(10)})
	exams := catalogs.DefaultExams()

	_, err := query.Run(cat, exams, query.Request{Exam: "GATE", Rank: 10})
	assert.True(t, errors.IsInvalidExamType(err))

	_, err = query.Run(cat, exams, query.Request{Exam: "JEE", Rank: 0})
	assert.True(t, errors.IsInvalidRank(err))

	_, err = query.Run(cat, exams, query.Request{Exam: "JEE", Rank: -3})
	assert.True(t, errors.IsInvalidRank(err))

	_, err = query.Run(cat, exams, query.Request{Exam: "JEE", Rank: 3, MaxCutoff: -1})
	assert.True(t, errors.IsInvalidRank(err))
}

func TestRunDoesNotExposeCatalogRecords(t *testing.T) {
	cat := build(t, fixture{name: "A", cutoffs: jee(10)})
	got, err := query.Run(cat, catalogs.DefaultExams(), query.Request{Exam: "JEE", Rank: 1})
	require.NoError(t, err)
	got[0].Cutoffs[catalogs.ExamJEE] = 1

	live, _ := cat.Get("a")
	assert.Equal(t, 10, live.Cutoffs[catalogs.ExamJEE])
}

func TestRunNilCatalog(t *testing.T) {
	got, err := query.Run(nil, catalogs.DefaultExams(), query.Request{Exam: "NEET", Rank: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}
