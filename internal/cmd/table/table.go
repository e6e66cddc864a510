// Package table converts rankmap values into rows for CLI table output.
package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/pipeline"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Colleges lists eligible colleges with the cutoff for exam.
func Colleges(colleges []catalogs.College, exam catalogs.ExamType) Data {
	rows := make([][]string, 0, len(colleges))
	for _, c := range colleges {
		cutoff := "-"
		if v, ok := c.Cutoff(exam); ok {
			cutoff = strconv.Itoa(v)
		}
		name := c.Name
		if c.IsDerived() {
			name += " *"
		}
		rows = append(rows, []string{cutoff, name, c.State, c.Type, joinOrDash(c.Sources)})
	}
	return Data{
		Headers:         []string{"Cutoff", "College", "State", "Type", "Sources"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

// College shows every field of one record as property/value pairs.
func College(c catalogs.College) Data {
	rows := [][]string{
		{"Key", c.Key.String()},
		{"Name", c.Name},
		{"State", c.State},
		{"Type", c.Type},
	}
	for _, exam := range sortedExams(c.Cutoffs) {
		rows = append(rows, []string{exam.String() + " cutoff", strconv.Itoa(c.Cutoffs[exam])})
	}
	rows = append(rows,
		[]string{"Sources", joinOrDash(c.Sources)},
		[]string{"Categories", joinOrDash(c.Categories)},
		[]string{"Derived", strconv.FormatBool(c.IsDerived())},
	)
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// Build summarizes a finished build, one row per source.
func Build(result *pipeline.Result) Data {
	rows := make([][]string, 0, len(result.Merge.Sources)+len(result.Failed)+len(result.Coverage))
	for _, s := range result.Merge.Sources {
		rows = append(rows, []string{
			s.Source, "merged",
			strconv.Itoa(s.Rows), strconv.Itoa(s.Merged), strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Created), strconv.Itoa(s.Raised),
		})
	}
	for _, f := range result.Failed {
		status := "failed"
		if f.Err != nil {
			status = "failed: " + f.Err.Error()
		}
		rows = append(rows, []string{f.Source, status, "-", "-", "-", "-", "-"})
	}
	for _, c := range result.Coverage {
		rows = append(rows, []string{
			"coverage " + c.Exam.String(),
			fmt.Sprintf("%d-%d", c.CurrentMax+1, c.Ceiling),
			"-", "-", "-",
			strconv.Itoa(c.Created), strconv.Itoa(c.Collisions),
		})
	}
	return Data{
		Headers:         []string{"Source", "Status", "Rows", "Merged", "Skipped", "Created", "Raised"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// Stats summarizes a catalog per exam.
func Stats(stats catalogs.Stats, exams *catalogs.Exams) Data {
	rows := make([][]string, 0, exams.Len())
	for _, e := range exams.List() {
		rows = append(rows, []string{
			e.Type.String(),
			strconv.Itoa(stats.PerExam[e.Type]),
			strconv.Itoa(stats.MaxRank[e.Type]),
			strconv.Itoa(e.Ceiling),
			strconv.FormatBool(e.Coverage),
		})
	}
	return Data{
		Headers:         []string{"Exam", "Colleges", "Max Cutoff", "Ceiling", "Coverage"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignCenter},
	}
}

// Inspection shows how a source file's columns resolve to logical fields.
func Inspection(s *sources.Summary) Data {
	rows := make([][]string, 0, len(sources.Fields()))
	for _, f := range sources.Fields() {
		name := f.String()
		rows = append(rows, []string{
			name,
			strconv.Itoa(s.Resolved[name]),
			joinOrDash(s.Matched[name]),
		})
	}
	return Data{
		Headers:         []string{"Field", "Rows", "Matched Keys"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// Manifest lists the sources a manifest declares, in declaration order.
func Manifest(m *sources.Manifest) Data {
	rows := make([][]string, 0, len(m.Sources))
	for _, d := range m.Sources {
		exam := d.Exam.String()
		if exam == "" {
			exam = "-"
		}
		category := d.Category
		if category == "" {
			category = "-"
		}
		rows = append(rows, []string{d.ID, string(d.Role), exam, category, d.Path})
	}
	return Data{
		Headers: []string{"ID", "Role", "Exam", "Category", "Path"},
		Rows:    rows,
	}
}

// FormatDuration renders d rounded for humans.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func sortedExams(m map[catalogs.ExamType]int) []catalogs.ExamType {
	exams := make([]catalogs.ExamType, 0, len(m))
	for e := range m {
		exams = append(exams, e)
	}
	slices.Sort(exams)
	return exams
}
