package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/internal/cmd/table"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestWrite(t *testing.T) {
	data := map[string]int{"colleges": 2}
	tbl := table.Data{
		Headers: []string{"Cutoff", "College"},
		Rows:    [][]string{{"900", "IIT Delhi"}},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatTable, data, tbl))
		assert.Contains(t, buf.String(), "IIT Delhi")
		assert.Contains(t, buf.String(), "900")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, data, tbl))
		assert.JSONEq(t, `{"colleges":2}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, data, tbl))
		assert.Equal(t, "colleges: 2\n", buf.String())
	})
}

func TestTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []int{1, 2}))
	assert.JSONEq(t, `[1,2]`, buf.String())
}
