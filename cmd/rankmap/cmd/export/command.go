// Package export provides commands that write the catalog to other stores.
package export

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/cmd/output"
	"github.com/agentstation/rankmap/internal/cmd/table"
	"github.com/agentstation/rankmap/internal/store/sqlite"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/save"
)

// Result reports a finished export.
type Result struct {
	Path     string            `json:"path" yaml:"path"`
	Colleges int               `json:"colleges" yaml:"colleges"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// NewCommand creates the export command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to another store",
	}
	cmd.AddCommand(newSQLiteCommand(app))
	return cmd
}

func newSQLiteCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlite",
		Short: "Export the catalog to a SQLite database",
		Long: `Export the catalog artifact into a SQLite database with colleges, cutoffs,
categories and metadata tables. Existing rows are replaced in a single
transaction. The database can then be queried with "rankmap query
--from-sqlite" or any SQLite client.`,
		Example: `  rankmap export sqlite
  rankmap export sqlite --sqlite /var/lib/rankmap/rankmap.db --rebuild`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rebuild, _ := cmd.Flags().GetBool("rebuild")
			return runSQLite(cmd, app, rebuild)
		},
	}
	cmd.Flags().Bool("rebuild", false, "Build from the manifest instead of reading the artifact")
	return cmd
}

func runSQLite(cmd *cobra.Command, app appcontext.Interface, rebuild bool) error {
	ctx := cmd.Context()
	path := app.Paths().SQLite

	var (
		client rankmap.Client
		err    error
	)
	if rebuild {
		client, err = app.ClientWithOptions(rankmap.WithRebuildOnStart(true))
	} else {
		client, err = app.Client()
	}
	if err != nil {
		return err
	}
	snap := client.Snapshot()
	if snap.Catalog.Len() == 0 && !rebuild {
		return errors.NewNotFoundError("artifact", app.Paths().Artifact)
	}

	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	doc := save.NewDocument(snap.Catalog, snap.Exams, snap.BuildID, snap.UpdatedAt)
	if err := store.Export(ctx, doc); err != nil {
		return err
	}
	meta, err := store.Metadata(ctx)
	if err != nil {
		return err
	}
	app.Logger().Info().Str("path", path).Int("colleges", snap.Catalog.Len()).Msg("SQLite export written")

	res := Result{Path: path, Colleges: snap.Catalog.Len(), Metadata: meta}
	rows := [][]string{{"Path", path}}
	for _, k := range []string{"total_colleges", "last_updated", "coverage", "build_id"} {
		if v, ok := meta[k]; ok {
			rows = append(rows, []string{k, v})
		}
	}
	format := output.DetectFormat(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, res, table.Data{Headers: []string{"Property", "Value"}, Rows: rows})
}
