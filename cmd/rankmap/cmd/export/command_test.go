package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/internal/cmd/cmdtest"
	"github.com/agentstation/rankmap/pkg/errors"
)

func runExport(t *testing.T, f *cmdtest.Fixture, args ...string) Result {
	t.Helper()
	out, err := cmdtest.Run(t, NewCommand(f.App("json")), append([]string{"sqlite"}, args...)...)
	require.NoError(t, err)

	var res Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestExportArtifact(t *testing.T) {
	f := cmdtest.NewFixture(t)
	snap := f.Build(t).Snapshot()

	res := runExport(t, f)
	assert.Equal(t, f.SQLite, res.Path)
	assert.Equal(t, 9, res.Colleges)
	assert.Equal(t, "9", res.Metadata["total_colleges"])
	assert.Equal(t, snap.BuildID, res.Metadata["build_id"])
	assert.FileExists(t, f.SQLite)
}

func TestExportRebuild(t *testing.T) {
	f := cmdtest.NewFixture(t)

	res := runExport(t, f, "--rebuild")
	assert.Equal(t, 9, res.Colleges)
	assert.NoFileExists(t, f.Artifact)
}

func TestExportWithoutArtifact(t *testing.T) {
	f := cmdtest.NewFixture(t)

	_, err := cmdtest.Run(t, NewCommand(f.App("json")), "sqlite")
	assert.True(t, errors.IsNotFound(err))
	assert.NoFileExists(t, f.SQLite)
}

func TestExportTable(t *testing.T) {
	f := cmdtest.NewFixture(t)
	f.Build(t)

	out, err := cmdtest.Run(t, NewCommand(f.App("table")), "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "total_colleges")
	assert.Contains(t, out, f.SQLite)
}
