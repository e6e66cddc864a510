package save

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/agentstation/rankmap/pkg/errors"
)

// Format is the artifact encoding.
type Format int

// Format constants.
const (
	FormatJSON Format = iota
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatJSON, errors.NewValidationError("format", s, "must be json or yaml")
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Options is the configuration for save.
type Options struct {
	path    string
	writer  io.Writer
	format  Format
	compact bool
}

// Path returns the path for the save options.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the writer for the save options.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the format for the save options.
func (s *Options) Format() Format {
	return s.format
}

// Compact reports whether JSON output skips indentation.
func (s *Options) Compact() bool {
	return s.compact
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{format: FormatJSON}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat for custom output format.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}

// WithPath for filesystem saves. The format follows the extension unless
// WithFormat is applied afterwards.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
		s.format = FormatFromPath(path)
	}
}

// WithWriter for custom outputs.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithCompact disables JSON indentation.
func WithCompact(compact bool) Option {
	return func(s *Options) {
		s.compact = compact
	}
}
