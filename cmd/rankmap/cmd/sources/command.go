// Package sources provides commands for examining source datasets.
package sources

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/cmd/output"
	"github.com/agentstation/rankmap/internal/cmd/table"
	rmsources "github.com/agentstation/rankmap/pkg/sources"
)

// NewCommand creates the sources command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Examine source datasets",
		Long: `Sources lists the datasets a manifest declares and shows how a file's
columns resolve to the fields rankmap understands.`,
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newInspectCommand(app))
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the sources declared in the manifest",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := rmsources.LoadManifest(app.Paths().Manifest)
			if err != nil {
				return err
			}
			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, m, table.Manifest(m))
		},
	}
}

func newInspectCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Show how a source file's columns resolve",
		Long: `Inspect loads each file the way a build would and reports, per logical
field, how many rows resolved it and through which keys. Use it to check a
new dataset before adding it to the manifest.`,
		Example: `  rankmap sources inspect data/jee_2024.csv
  rankmap sources inspect data/*.json -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()
			format := output.DetectFormat(app.OutputFormat())

			var errs []error
			summaries := make([]*rmsources.Summary, 0, len(args))
			for _, path := range args {
				summary, err := rmsources.Inspect(cmd.Context(), path)
				if err != nil {
					logger.Warn().Str("path", path).Err(err).Msg("Source could not be loaded")
					errs = append(errs, err)
				}
				summaries = append(summaries, summary)
			}

			if format == output.FormatTable || format == "" {
				for _, s := range summaries {
					if len(summaries) > 1 {
						fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d rows)\n", s.Path, s.Format, s.Rows)
					}
					if err := output.Write(cmd.OutOrStdout(), format, s, table.Inspection(s)); err != nil {
						return err
					}
				}
			} else if err := output.Write(cmd.OutOrStdout(), format, summaries, table.Data{}); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
}
