package sources_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/rankmap/pkg/sources"
)

func TestRecordAliasOrder(t *testing.T) {
	rec := sources.NewRecord(sources.RawRow{
		"name":         "Second Choice",
		"college":      "First Choice",
		"college_name": "Last Choice",
		"closing_rank": 10,
		"rank":         20,
	})
	assert.Equal(t, "First Choice", rec.Name())

	v, key, ok := rec.Lookup(sources.FieldCutoff)
	assert.True(t, ok)
	assert.Equal(t, "rank", key)
	assert.Equal(t, 20, v)
}

func TestRecordHeaderSpellingsResolveStably(t *testing.T) {
	row := sources.RawRow{"College": "Alpha", "COLLEGE ": "Beta"}
	for range 50 {
		v, key, ok := sources.NewRecord(row).Lookup(sources.FieldName)
		assert.True(t, ok)
		assert.Equal(t, "COLLEGE ", key)
		assert.Equal(t, "Beta", v)
	}
}

func TestRecordSkipsBlankAliases(t *testing.T) {
	rec := sources.NewRecord(sources.RawRow{
		"college":    "   ",
		"university": nil,
		"institute":  "IISc Bangalore",
	})
	assert.Equal(t, "IISc Bangalore", rec.Name())
}

func TestRecordHeaderSpellings(t *testing.T) {
	rec := sources.NewRecord(sources.RawRow{
		"College-Name":     "IIT Madras",
		"Institution Type": "Government",
		"EXAM_TYPE":        "jee",
	})
	assert.Equal(t, "IIT Madras", rec.Name())
	assert.Equal(t, "Government", rec.Type())
	assert.Equal(t, "jee", rec.Exam())
}

func TestRecordMissingFields(t *testing.T) {
	rec := sources.NewRecord(sources.RawRow{"foo": "bar"})
	assert.Equal(t, "", rec.Name())
	_, ok := rec.Cutoff()
	assert.False(t, ok)
	assert.Equal(t, "", rec.State())
}

func TestText(t *testing.T) {
	assert.Equal(t, "12", sources.Text(json.Number("12")))
	assert.Equal(t, "1.5", sources.Text(1.5))
	assert.Equal(t, "7", sources.Text(uint64(7)))
	assert.Equal(t, "x", sources.Text(" x "))
	assert.Equal(t, "", sources.Text([]any{1}))
	assert.Equal(t, "", sources.Text(nil))
}

func TestAliases(t *testing.T) {
	assert.Equal(t, []string{"college", "university", "name", "institute", "college_name"}, sources.Aliases(sources.FieldName))
	assert.Equal(t, []string{"cutoff_rank", "rank", "closing_rank", "cutoff"}, sources.Aliases(sources.FieldCutoff))
	assert.Equal(t, "category", sources.FieldCategory.String())
}
