// Package cmdtest provides fixtures for command tests: a small manifest
// with its datasets on disk and an appcontext.Mock wired to it.
package cmdtest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/store/sqlite"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/save"
)

// Fixture is a temporary workspace holding a manifest and its sources.
//
// The catalog it builds has four observed colleges. JEE coverage extends
// 4001..4005 with five derived records; NEET is already at its ceiling.
type Fixture struct {
	Dir      string
	Manifest string
	Artifact string
	SQLite   string
}

const manifest = `exams:
  - id: JEE
    ceiling: 4005
    coverage: true
  - id: NEET
    ceiling: 50
    coverage: true
sources:
  - id: jee_2024
    path: jee.csv
    exam: JEE
  - id: neet_2024
    path: neet.json
    exam: NEET
  - id: directory
    path: directory.yaml
    role: reference
`

var files = map[string]string{
	"jee.csv": "college,closing_rank,state,type\n" +
		"IIT Delhi,900,Delhi,Engineering\n" +
		"IIT Bombay,600,Maharashtra,Engineering\n" +
		"NIT Trichy,4000,Tamil Nadu,Engineering\n",
	"neet.json":      `{"colleges": [{"name": "AIIMS Delhi", "rank": 50, "state": "Delhi"}]}`,
	"directory.yaml": "- name: AIIMS Delhi\n  type: Medical\n",
}

// NewFixture writes the fixture into a fresh temporary directory and
// silences the default logger for the test.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	logging.DisableLoggingForTest(t)

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	path := filepath.Join(dir, "rankmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	return &Fixture{
		Dir:      dir,
		Manifest: path,
		Artifact: filepath.Join(dir, "colleges.json"),
		SQLite:   filepath.Join(dir, "rankmap.db"),
	}
}

// Build rebuilds the fixture manifest, writes the artifact and returns the
// client holding the result.
func (f *Fixture) Build(t testing.TB) rankmap.Client {
	t.Helper()
	client, err := rankmap.New(
		rankmap.WithManifestPath(f.Manifest),
		rankmap.WithRebuildOnStart(true),
	)
	require.NoError(t, err)
	require.NoError(t, client.Save(save.WithPath(f.Artifact)))
	return client
}

// Export builds the fixture and exports it to the SQLite path.
func (f *Fixture) Export(t testing.TB) {
	t.Helper()
	snap := f.Build(t).Snapshot()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, f.SQLite)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Export(ctx, save.NewDocument(snap.Catalog, snap.Exams, snap.BuildID, snap.UpdatedAt)))
}

// App returns a mock application context configured like App would be for
// this fixture, printing in format.
func (f *Fixture) App(format string) *appcontext.Mock {
	return &appcontext.Mock{
		ClientFunc: func() (rankmap.Client, error) {
			return rankmap.New(
				rankmap.WithManifestPath(f.Manifest),
				rankmap.WithArtifactPath(f.Artifact),
			)
		},
		ClientWithOptionsFunc: func(opts ...rankmap.Option) (rankmap.Client, error) {
			return rankmap.New(append([]rankmap.Option{rankmap.WithManifestPath(f.Manifest)}, opts...)...)
		},
		Format: format,
		PathsValue: appcontext.Paths{
			Manifest: f.Manifest,
			Artifact: f.Artifact,
			SQLite:   f.SQLite,
		},
	}
}

// Run executes cmd with args and returns what it wrote to stdout.
func Run(t testing.TB, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
