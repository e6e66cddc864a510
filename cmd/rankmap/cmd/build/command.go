// Package build provides the build command, which merges every source in
// the manifest and writes the resulting catalog artifact.
package build

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/cmd/output"
	"github.com/agentstation/rankmap/internal/cmd/table"
	"github.com/agentstation/rankmap/internal/store/sqlite"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/pipeline"
	"github.com/agentstation/rankmap/pkg/save"
)

// Summary is the machine-readable result of a build.
type Summary struct {
	BuildID  string   `json:"build_id" yaml:"build_id"`
	Colleges int      `json:"colleges" yaml:"colleges"`
	Derived  int      `json:"derived" yaml:"derived"`
	Rows     int      `json:"rows" yaml:"rows"`
	Merged   int      `json:"merged" yaml:"merged"`
	Skipped  int      `json:"skipped" yaml:"skipped"`
	Failed   []string `json:"failed,omitempty" yaml:"failed,omitempty"`
	Duration string   `json:"duration" yaml:"duration"`
	Artifact string   `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	SQLite   string   `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

// NewCommand creates the build command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge all sources into a catalog artifact",
		Long: `Build loads every source declared in the manifest, merges them into one
catalog, extends each exam's coverage up to its ceiling and writes the
result as a JSON or YAML artifact.

Sources that are missing or unparseable are reported and skipped; the
build still succeeds with whatever remains.`,
		Example: `  # Build with the default manifest and artifact
  rankmap build

  # Build without synthesized coverage records and also export to SQLite
  rankmap build --no-coverage --export-sqlite

  # Preview the merge without writing anything
  rankmap build --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().Bool("no-coverage", false, "Skip coverage extension")
	cmd.Flags().Bool("export-sqlite", false, "Also export the catalog to the SQLite database")
	cmd.Flags().Bool("compact", false, "Write the artifact without indentation")
	cmd.Flags().Bool("dry-run", false, "Build and report without writing files")
	cmd.Flags().Duration("timeout", constants.BuildTimeout, "Maximum build duration")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface) error {
	logger := app.Logger()
	paths := app.Paths()
	flags := cmd.Flags()

	noCoverage, _ := flags.GetBool("no-coverage")
	exportSQLite, _ := flags.GetBool("export-sqlite")
	compact, _ := flags.GetBool("compact")
	dryRun, _ := flags.GetBool("dry-run")
	timeout, _ := flags.GetDuration("timeout")

	var opts []rankmap.Option
	if noCoverage {
		opts = append(opts, rankmap.WithCoverage(false))
	}
	client, err := app.ClientWithOptions(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := client.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	for _, f := range result.Failed {
		logger.Warn().Str("source", f.Source).Str("path", f.Path).Err(f.Err).Msg("Source skipped")
	}

	summary := newSummary(result)
	if !dryRun {
		if err := client.Save(save.WithPath(paths.Artifact), save.WithCompact(compact)); err != nil {
			return err
		}
		summary.Artifact = paths.Artifact
		logger.Info().Str("path", paths.Artifact).Int("colleges", summary.Colleges).Msg("Artifact written")

		if exportSQLite {
			if err := exportTo(ctx, paths.SQLite, client.Snapshot()); err != nil {
				return err
			}
			summary.SQLite = paths.SQLite
			logger.Info().Str("path", paths.SQLite).Msg("SQLite export written")
		}
	}

	format := output.DetectFormat(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, summary, table.Build(result))
}

func newSummary(result *pipeline.Result) Summary {
	s := Summary{
		BuildID:  result.ID,
		Colleges: result.Catalog.Len(),
		Derived:  result.Derived(),
		Rows:     result.Merge.Rows(),
		Merged:   result.Merge.Merged(),
		Skipped:  result.Merge.Skipped(),
		Duration: table.FormatDuration(result.Duration().Round(time.Microsecond)),
	}
	for _, f := range result.Failed {
		s.Failed = append(s.Failed, f.Source)
	}
	return s
}

func exportTo(ctx context.Context, path string, snap *rankmap.Snapshot) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	doc := save.NewDocument(snap.Catalog, snap.Exams, snap.BuildID, snap.UpdatedAt)
	return store.Export(ctx, doc)
}
