// Package query provides the query command, which lists the colleges a
// candidate with a given rank is eligible for.
package query

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/cmd/output"
	"github.com/agentstation/rankmap/internal/cmd/table"
	"github.com/agentstation/rankmap/internal/store/sqlite"
	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	rmquery "github.com/agentstation/rankmap/pkg/query"
)

// Response is the machine-readable query result.
type Response struct {
	Query    rmquery.Request    `json:"query" yaml:"query"`
	Exam     catalogs.ExamType  `json:"exam" yaml:"exam"`
	Count    int                `json:"count" yaml:"count"`
	Colleges []catalogs.College `json:"colleges" yaml:"colleges"`
}

// NewCommand creates the query command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List colleges eligible for a rank",
		Long: `Query lists the colleges whose cutoff for an exam is at or above the given
rank, most selective first. Records synthesized by coverage extension are
marked with * in table output.

By default the catalog artifact is read. Use --rebuild to build from the
manifest first, or --from-sqlite to query the SQLite export.`,
		Example: `  rankmap query --exam JEE --rank 700
  rankmap query --exam neet --rank 40 --state Delhi --exclude-derived
  rankmap query --exam JEE --rank 5000 --category Engineering --limit 10 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().String("exam", "", "Exam type (e.g. JEE, NEET)")
	cmd.Flags().Int("rank", 0, "Candidate rank (positive)")
	cmd.Flags().String("state", "", "Only colleges in this state")
	cmd.Flags().String("category", "", "Only colleges of this type or category")
	cmd.Flags().Int("max-cutoff", 0, "Drop colleges whose cutoff exceeds this rank")
	cmd.Flags().Bool("exclude-derived", false, "Drop records synthesized by coverage extension")
	cmd.Flags().Int("limit", constants.DefaultQueryLimit, "Maximum results (0 for all)")
	cmd.Flags().Bool("rebuild", false, "Build from the manifest instead of reading the artifact")
	cmd.Flags().Bool("from-sqlite", false, "Query the SQLite export")
	_ = cmd.MarkFlagRequired("exam")
	_ = cmd.MarkFlagRequired("rank")
	cmd.MarkFlagsMutuallyExclusive("rebuild", "from-sqlite")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface) error {
	req, err := parseRequest(cmd)
	if err != nil {
		return err
	}

	fromSQLite, _ := cmd.Flags().GetBool("from-sqlite")
	var (
		colleges []catalogs.College
		exam     catalogs.ExamType
	)
	if fromSQLite {
		colleges, exam, err = querySQLite(cmd, app, req)
	} else {
		colleges, exam, err = queryClient(cmd, app, req)
	}
	if err != nil {
		return err
	}

	resp := Response{Query: req, Exam: exam, Count: len(colleges), Colleges: colleges}
	format := output.DetectFormat(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, resp, table.Colleges(colleges, exam))
}

func parseRequest(cmd *cobra.Command) (rmquery.Request, error) {
	flags := cmd.Flags()
	var req rmquery.Request
	req.Exam, _ = flags.GetString("exam")
	req.Rank, _ = flags.GetInt("rank")
	req.State, _ = flags.GetString("state")
	req.Category, _ = flags.GetString("category")
	req.MaxCutoff, _ = flags.GetInt("max-cutoff")
	req.ExcludeDerived, _ = flags.GetBool("exclude-derived")
	req.Limit, _ = flags.GetInt("limit")
	if req.Limit < 0 {
		return req, fmt.Errorf("invalid limit %d: must not be negative", req.Limit)
	}
	if req.Limit > constants.MaxQueryLimit {
		req.Limit = constants.MaxQueryLimit
	}
	return req, nil
}

func queryClient(cmd *cobra.Command, app appcontext.Interface, req rmquery.Request) ([]catalogs.College, catalogs.ExamType, error) {
	rebuild, _ := cmd.Flags().GetBool("rebuild")

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
		return nil, "", err
	}

	snap := client.Snapshot()
	exam, err := req.Validate(snap.Exams)
	if err != nil {
		return nil, "", err
	}
	if snap.Catalog.Len() == 0 {
		app.Logger().Warn().
			Str("artifact", app.Paths().Artifact).
			Msg("Catalog is empty; run 'rankmap build' or pass --rebuild")
	}

	colleges, err := rmquery.Run(snap.Catalog, snap.Exams, req)
	return colleges, exam, err
}

func querySQLite(cmd *cobra.Command, app appcontext.Interface, req rmquery.Request) ([]catalogs.College, catalogs.ExamType, error) {
	ctx := cmd.Context()
	store, err := sqlite.Open(ctx, app.Paths().SQLite)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	exams, err := store.Exams(ctx)
	if err != nil {
		return nil, "", err
	}
	exam, err := req.Validate(exams)
	if err != nil {
		return nil, "", err
	}
	colleges, err := store.Eligible(ctx, req)
	return colleges, exam, err
}
