package enrichment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/rankmap/pkg/enrichment"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/sources"
)

func TestBuildFirstNonEmptyWins(t *testing.T) {
	idx := enrichment.Build([]sources.RawRow{
		{"college": "IIT Delhi", "state": "Delhi"},
		{"college": "iit  delhi", "state": "Haryana", "type": "Government"},
		{"college": "IIT Delhi", "type": "Private"},
		{"state": "Goa"},
	})

	assert.Equal(t, 1, idx.Len())
	entry, ok := idx.Lookup(normalize.Name("IIT DELHI"))
	assert.True(t, ok)
	assert.Equal(t, enrichment.Entry{State: "Delhi", Type: "Government"}, entry)
}

func TestLookupMiss(t *testing.T) {
	idx := enrichment.Build(nil)
	entry, ok := idx.Lookup("nowhere")
	assert.False(t, ok)
	assert.True(t, entry.IsZero())
}

func TestNilIndex(t *testing.T) {
	var idx *enrichment.Index
	_, ok := idx.Lookup("iit delhi")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}
