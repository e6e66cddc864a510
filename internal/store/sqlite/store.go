// Package sqlite materializes a published artifact into a SQLite database so
// the aggregate can be queried with plain SQL by downstream tools.
//
// Export replaces the entire contents in one transaction; a reader never sees
// a half-written catalog.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/query"
	"github.com/agentstation/rankmap/pkg/save"
)

// Store is a SQLite-backed export of one catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("path", path, "sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent exports.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.WrapResource("migrate", "store", s.path, err)
	}
	return nil
}

// Export replaces the stored catalog with doc.
func (s *Store) Export(ctx context.Context, doc *save.Document) (err error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("export", "store", s.path, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"cutoffs", "categories", "colleges", "metadata"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.WrapResource("clear", "store", table, err)
		}
	}

	insCollege, err := tx.PrepareContext(ctx, `INSERT INTO colleges
		(key, name, name_fold, state, state_fold, type, type_fold, derived, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("export", "store", s.path, err)
	}
	defer insCollege.Close()

	insCutoff, err := tx.PrepareContext(ctx, `INSERT INTO cutoffs (college_key, exam, cutoff) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("export", "store", s.path, err)
	}
	defer insCutoff.Close()

	insCategory, err := tx.PrepareContext(ctx, `INSERT INTO categories (college_key, category, category_fold) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("export", "store", s.path, err)
	}
	defer insCategory.Close()

	for i := range doc.Colleges {
		c := &doc.Colleges[i]
		if err = ctx.Err(); err != nil {
			return err
		}

		sourcesJSON, mErr := json.Marshal(nonNil(c.Sources))
		if mErr != nil {
			err = mErr
			return errors.WrapParse("json", c.Key.String(), err)
		}
		if _, err = insCollege.ExecContext(ctx,
			c.Key.String(), c.Name, normalize.Fold(c.Name),
			c.State, normalize.Fold(c.State),
			c.Type, normalize.Fold(c.Type),
			c.IsDerived(), string(sourcesJSON),
		); err != nil {
			return errors.WrapResource("insert", "college", c.Key.String(), err)
		}
		for exam, cutoff := range c.Cutoffs {
			if _, err = insCutoff.ExecContext(ctx, c.Key.String(), exam.String(), cutoff); err != nil {
				return errors.WrapResource("insert", "cutoff", c.Key.String(), err)
			}
		}
		for _, category := range c.Categories {
			if _, err = insCategory.ExecContext(ctx, c.Key.String(), category, normalize.Fold(category)); err != nil {
				return errors.WrapResource("insert", "category", c.Key.String(), err)
			}
		}
	}

	rankCoverage, err := json.Marshal(doc.Metadata.RankCoverage)
	if err != nil {
		return errors.WrapParse("json", metaRankCoverage, err)
	}
	meta := map[string]string{
		metaTotalColleges: strconv.Itoa(len(doc.Colleges)),
		metaLastUpdated:   doc.Metadata.LastUpdated.UTC().Format(time.RFC3339),
		metaCoverage:      doc.Metadata.Coverage,
		metaRankCoverage:  string(rankCoverage),
		metaBuildID:       doc.Metadata.BuildID,
	}
	for k, v := range meta {
		if _, err = tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return errors.WrapResource("insert", "metadata", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.WrapResource("commit", "store", s.path, err)
	}

	logger.Info().
		Str("path", s.path).
		Int("colleges", len(doc.Colleges)).
		Dur("duration", time.Since(start)).
		Msg("Exported catalog to SQLite")
	return nil
}

// Metadata returns the stored metadata values keyed by name.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, errors.WrapResource("read", "metadata", s.path, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, errors.WrapResource("read", "metadata", s.path, err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Exams rebuilds the exam registry recorded by the last export. An empty
// store yields the default registry.
func (s *Store) Exams(ctx context.Context) (*catalogs.Exams, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, metaRankCoverage).Scan(&raw)
	if err == sql.ErrNoRows {
		return catalogs.DefaultExams(), nil
	}
	if err != nil {
		return nil, errors.WrapResource("read", "metadata", metaRankCoverage, err)
	}

	var coverage map[catalogs.ExamType]int
	if err := json.Unmarshal([]byte(raw), &coverage); err != nil {
		return nil, errors.WrapParse("json", metaRankCoverage, err)
	}
	if len(coverage) == 0 {
		return catalogs.DefaultExams(), nil
	}
	exams := make([]catalogs.Exam, 0, len(coverage))
	for t, ceiling := range coverage {
		exams = append(exams, catalogs.Exam{Type: t, Ceiling: ceiling, Coverage: true})
	}
	return catalogs.NewExams(exams...), nil
}

// Count returns the number of stored colleges.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM colleges`).Scan(&n); err != nil {
		return 0, errors.WrapResource("count", "colleges", s.path, err)
	}
	return n, nil
}

// Eligible runs an eligibility query in SQL. Validation, filtering, ordering
// and limiting match query.Run over the exported catalog.
func (s *Store) Eligible(ctx context.Context, req query.Request) ([]catalogs.College, error) {
	exams, err := s.Exams(ctx)
	if err != nil {
		return nil, err
	}
	exam, err := req.Validate(exams)
	if err != nil {
		return nil, err
	}

	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`SELECT c.key, c.name, c.state, c.type, c.derived, c.sources
		FROM colleges c JOIN cutoffs k ON k.college_key = c.key
		WHERE k.exam = ? AND k.cutoff >= ?`)
	args = append(args, exam.String(), req.Rank)

	if req.MaxCutoff > 0 {
		b.WriteString(` AND k.cutoff <= ?`)
		args = append(args, req.MaxCutoff)
	}
	if req.ExcludeDerived {
		b.WriteString(` AND c.derived = 0`)
	}
	if req.State != "" {
		b.WriteString(` AND c.state_fold = ?`)
		args = append(args, normalize.Fold(req.State))
	}
	if req.Category != "" {
		fold := normalize.Fold(req.Category)
		b.WriteString(` AND (c.type_fold = ? OR EXISTS (
			SELECT 1 FROM categories g WHERE g.college_key = c.key AND g.category_fold = ?))`)
		args = append(args, fold, fold)
	}
	b.WriteString(` ORDER BY k.cutoff, c.name_fold, c.key`)
	if req.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, req.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, errors.WrapResource("query", "colleges", exam.String(), err)
	}

	results := []catalogs.College{}
	for rows.Next() {
		var (
			c       catalogs.College
			key     string
			sources string
		)
		if err := rows.Scan(&key, &c.Name, &c.State, &c.Type, &c.Derived, &sources); err != nil {
			rows.Close()
			return nil, errors.WrapResource("scan", "college", key, err)
		}
		c.Key = normalize.Key(key)
		if err := json.Unmarshal([]byte(sources), &c.Sources); err != nil {
			rows.Close()
			return nil, errors.WrapParse("json", key, err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.WrapResource("query", "colleges", exam.String(), err)
	}
	rows.Close()

	// Rows are closed before the detail lookups: the pool holds one connection.
	for i := range results {
		if err := s.fillDetails(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// fillDetails loads every cutoff and category for c.
func (s *Store) fillDetails(ctx context.Context, c *catalogs.College) error {
	c.Cutoffs = make(map[catalogs.ExamType]int)
	rows, err := s.db.QueryContext(ctx, `SELECT exam, cutoff FROM cutoffs WHERE college_key = ? ORDER BY exam`, c.Key.String())
	if err != nil {
		return errors.WrapResource("query", "cutoffs", c.Key.String(), err)
	}
	for rows.Next() {
		var (
			exam   string
			cutoff int
		)
		if err := rows.Scan(&exam, &cutoff); err != nil {
			rows.Close()
			return errors.WrapResource("scan", "cutoff", c.Key.String(), err)
		}
		c.Cutoffs[catalogs.ExamType(exam)] = cutoff
		c.Exams = append(c.Exams, catalogs.ExamType(exam))
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT category FROM categories WHERE college_key = ? ORDER BY category`, c.Key.String())
	if err != nil {
		return errors.WrapResource("query", "categories", c.Key.String(), err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return errors.WrapResource("scan", "category", c.Key.String(), err)
		}
		c.Categories = append(c.Categories, category)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading categories of %s: %w", c.Key, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
