// Package save writes and reads the materialized aggregate artifact.
//
// The artifact is a single document with build metadata and every college
// record, in JSON (default) or YAML:
//
//	{
//	  "metadata": {"total_colleges": 2, "last_updated": "2024-06-01T00:00:00Z", ...},
//	  "colleges": [{"key": "iit delhi", "name": "IIT Delhi", ...}]
//	}
package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
)

// Metadata describes the build that produced an artifact.
type Metadata struct {
	TotalColleges int       `json:"total_colleges" yaml:"total_colleges"`
	LastUpdated   time.Time `json:"last_updated" yaml:"last_updated"`
	// Coverage states the rank span each exam reaches, e.g. "JEE 1-200000".
	Coverage     string                    `json:"coverage" yaml:"coverage"`
	Exams        []catalogs.ExamType       `json:"exams" yaml:"exams"`
	RankCoverage map[catalogs.ExamType]int `json:"rank_coverage" yaml:"rank_coverage"`
	BuildID      string                    `json:"build_id,omitempty" yaml:"build_id,omitempty"`
}

// Document is the on-disk artifact.
type Document struct {
	Metadata Metadata           `json:"metadata" yaml:"metadata"`
	Colleges []catalogs.College `json:"colleges" yaml:"colleges"`
}

// NewDocument captures cat and the exam registry as an artifact.
func NewDocument(cat *catalogs.Catalog, exams *catalogs.Exams, buildID string, updated time.Time) *Document {
	doc := &Document{
		Metadata: Metadata{
			LastUpdated:  updated.UTC().Truncate(time.Second),
			Exams:        exams.Types(),
			RankCoverage: make(map[catalogs.ExamType]int),
			BuildID:      buildID,
		},
		Colleges: []catalogs.College{},
	}
	if doc.Metadata.Exams == nil {
		doc.Metadata.Exams = []catalogs.ExamType{}
	}
	for _, exam := range exams.List() {
		doc.Metadata.RankCoverage[exam.Type] = exam.Ceiling
	}
	if cat != nil {
		doc.Colleges = cat.List()
		doc.Metadata.TotalColleges = cat.Len()
	}
	doc.Metadata.Coverage = describeCoverage(cat, exams)
	return doc
}

func describeCoverage(cat *catalogs.Catalog, exams *catalogs.Exams) string {
	var parts []string
	for _, exam := range exams.Types() {
		highest := 0
		if cat != nil {
			highest = cat.MaxCutoff(exam)
		}
		if highest == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d-%d", exam, constants.MinRank, highest))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Registry rebuilds the exam registry recorded in the metadata. Coverage
// flags are not persisted, so every exam is marked as covered.
func (d *Document) Registry() *catalogs.Exams {
	exams := make([]catalogs.Exam, 0, len(d.Metadata.Exams))
	for _, t := range d.Metadata.Exams {
		exams = append(exams, catalogs.Exam{Type: t, Ceiling: d.Metadata.RankCoverage[t], Coverage: true})
	}
	if len(exams) == 0 {
		return catalogs.DefaultExams()
	}
	return catalogs.NewExams(exams...)
}

// Catalog returns the records as a frozen catalog.
func (d *Document) Catalog() (*catalogs.Catalog, error) {
	cat := catalogs.New()
	for i := range d.Colleges {
		college := d.Colleges[i].Clone()
		if err := cat.Add(college); err != nil {
			return nil, errors.WrapResource("load", "college", college.Name, err)
		}
	}
	return cat.Freeze(), nil
}

// Encode serializes the document in the given format.
func (d *Document) Encode(format Format, compact bool) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return data, nil
	case FormatJSON:
		var (
			data []byte
			err  error
		)
		if compact {
			data, err = json.Marshal(d)
		} else {
			data, err = json.MarshalIndent(d, "", "  ")
		}
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return append(data, '\n'), nil
	}
	return nil, errors.NewValidationError("format", format.String(), "unsupported format")
}

// Write saves the document to the configured writer, or atomically to the
// configured path. One of the two is required.
func (d *Document) Write(opts ...Option) error {
	options := Defaults().Apply(opts...)
	data, err := d.Encode(options.Format(), options.Compact())
	if err != nil {
		return err
	}

	if w := options.Writer(); w != nil {
		_, err := w.Write(data)
		return errors.WrapIO("write", "", err)
	}
	if options.Path() == "" {
		return errors.NewValidationError("path", "", "either a path or a writer is required")
	}
	return writeAtomic(options.Path(), data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads an artifact written by Write.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("artifact", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, FormatFromPath(path))
}

// Decode parses an artifact from memory.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
	}
	return &doc, nil
}
