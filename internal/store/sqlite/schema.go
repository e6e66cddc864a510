package sqlite

// schema creates the export tables. Folded columns hold normalize.Fold of the
// display value so SQL filters and ordering match the in-memory query.
const schema = `
CREATE TABLE IF NOT EXISTS colleges (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_fold  TEXT NOT NULL,
	state      TEXT NOT NULL,
	state_fold TEXT NOT NULL,
	type       TEXT NOT NULL,
	type_fold  TEXT NOT NULL,
	derived    INTEGER NOT NULL DEFAULT 0,
	sources    TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS cutoffs (
	college_key TEXT NOT NULL REFERENCES colleges(key) ON DELETE CASCADE,
	exam        TEXT NOT NULL,
	cutoff      INTEGER NOT NULL CHECK (cutoff > 0),
	PRIMARY KEY (college_key, exam)
);

CREATE INDEX IF NOT EXISTS idx_cutoffs_exam_cutoff ON cutoffs(exam, cutoff);

CREATE TABLE IF NOT EXISTS categories (
	college_key   TEXT NOT NULL REFERENCES colleges(key) ON DELETE CASCADE,
	category      TEXT NOT NULL,
	category_fold TEXT NOT NULL,
	PRIMARY KEY (college_key, category)
);

CREATE INDEX IF NOT EXISTS idx_categories_fold ON categories(category_fold);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Metadata keys written by Export.
const (
	metaTotalColleges = "total_colleges"
	metaLastUpdated   = "last_updated"
	metaCoverage      = "coverage"
	metaRankCoverage  = "rank_coverage"
	metaBuildID       = "build_id"
)
