package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
)

// Role says what a source contributes to a build.
type Role string

// Source roles.
const (
	// RoleCutoffs sources are merged into the aggregate.
	RoleCutoffs Role = "cutoffs"
	// RoleReference sources feed the enrichment index.
	RoleReference Role = "reference"
	// RolePool sources feed the coverage candidate pool.
	RolePool Role = "pool"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCutoffs, RoleReference, RolePool:
		return true
	}
	return false
}

// Descriptor names one dataset and the defaults applied to its rows.
type Descriptor struct {
	ID       string            `yaml:"id" json:"id"`
	Path     string            `yaml:"path" json:"path"`
	Exam     catalogs.ExamType `yaml:"exam,omitempty" json:"exam,omitempty"`
	Category string            `yaml:"category,omitempty" json:"category,omitempty"`
	Role     Role              `yaml:"role,omitempty" json:"role,omitempty"`
}

// Load reads the descriptor's file. Errors carry the descriptor ID.
func (d Descriptor) Load(ctx context.Context) ([]RawRow, error) {
	return load(ctx, d.ID, d.Path)
}

// Manifest declares the exam registry and the sources of a build.
type Manifest struct {
	Exams   []catalogs.Exam `yaml:"exams" json:"exams"`
	Sources []Descriptor    `yaml:"sources" json:"sources"`
}

// LoadManifest reads a YAML manifest. Relative source paths are resolved
// against the manifest's directory and missing roles default to cutoffs.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapResource("load", "manifest", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Sources {
		d := &m.Sources[i]
		if d.Path != "" && !filepath.IsAbs(d.Path) {
			d.Path = filepath.Join(base, d.Path)
		}
	}
	m.normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) normalize() {
	for i := range m.Sources {
		d := &m.Sources[i]
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			d.ID = strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
		}
		if d.Role == "" {
			d.Role = RoleCutoffs
		}
		d.Role = Role(strings.ToLower(string(d.Role)))
		d.Exam = catalogs.ParseExamType(string(d.Exam))
	}
}

// Validate checks for missing paths, unknown roles and duplicate IDs.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Sources))
	for i, d := range m.Sources {
		if d.Path == "" {
			return errors.NewValidationError(fmt.Sprintf("sources[%d].path", i), d.Path, "is required")
		}
		if !d.Role.IsValid() {
			return errors.NewValidationError(fmt.Sprintf("sources[%d].role", i), d.Role, "must be cutoffs, reference or pool")
		}
		if seen[d.ID] {
			return errors.NewValidationError(fmt.Sprintf("sources[%d].id", i), d.ID, "is duplicated")
		}
		seen[d.ID] = true
	}
	for i, exam := range m.Exams {
		if exam.Ceiling < 0 {
			return errors.NewValidationError(fmt.Sprintf("exams[%d].ceiling", i), exam.Ceiling, "must not be negative")
		}
	}
	return nil
}

// Registry returns the declared exams, or the JEE/NEET defaults when none are declared.
func (m *Manifest) Registry() *catalogs.Exams {
	if m == nil || len(m.Exams) == 0 {
		return catalogs.DefaultExams()
	}
	return catalogs.NewExams(m.Exams...)
}

// ByRole returns the descriptors with role r, ordered by ID.
func (m *Manifest) ByRole(r Role) []Descriptor {
	if m == nil {
		return nil
	}
	var out []Descriptor
	for _, d := range m.Sources {
		if d.Role == r {
			out = append(out, d)
		}
	}
	SortDescriptors(out)
	return out
}

// SortDescriptors orders descriptors lexicographically by ID, the order in
// which the merge engine processes them.
func SortDescriptors(descs []Descriptor) {
	slices.SortStableFunc(descs, func(a, b Descriptor) int {
		return strings.Compare(a.ID, b.ID)
	})
}
