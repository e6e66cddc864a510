// Package errors provides custom error types for the rankmap system.
// These errors let the build pipeline distinguish recoverable ingestion
// failures from caller mistakes surfaced by the query layer.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the rankmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates that a source file does not exist or cannot be opened.
	// The pipeline logs it and continues with the remaining sources.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceMalformed indicates that a source exists but its content could not be parsed.
	ErrSourceMalformed = errors.New("source malformed")

	// ErrRowMalformed indicates a single unusable row; the row is dropped.
	ErrRowMalformed = errors.New("row malformed")

	// ErrInvalidExamType indicates a query against an exam type that is not registered.
	ErrInvalidExamType = errors.New("invalid exam type")

	// ErrInvalidRank indicates a non-positive rank or rank bound.
	ErrInvalidRank = errors.New("invalid rank")

	// ErrReadOnly indicates an attempt to modify a published snapshot
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SourceError reports a dataset that could not be used at all.
// Kind is either ErrSourceUnavailable or ErrSourceMalformed.
type SourceError struct {
	Source string
	Path   string
	Kind   error
	Err    error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	label := e.Path
	if e.Source != "" {
		label = fmt.Sprintf("%s (%s)", e.Source, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, label, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, label)
}

// Unwrap implements errors.Unwrap
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceError) Is(target error) bool {
	return target == e.Kind
}

// NewSourceUnavailable creates a SourceError for a missing or unreadable file.
func NewSourceUnavailable(source, path string, err error) *SourceError {
	return &SourceError{Source: source, Path: path, Kind: ErrSourceUnavailable, Err: err}
}

// NewSourceMalformed creates a SourceError for unparseable content.
func NewSourceMalformed(source, path string, err error) *SourceError {
	return &SourceError{Source: source, Path: path, Kind: ErrSourceMalformed, Err: err}
}

// RowError reports a single row dropped during the merge pass.
type RowError struct {
	Source string
	Index  int
	Reason string
}

// Error implements the error interface
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d of %s: %s", e.Index, e.Source, e.Reason)
}

// Is implements errors.Is support
func (e *RowError) Is(target error) bool {
	return target == ErrRowMalformed
}

// NewRowError creates a new RowError
func NewRowError(source string, index int, reason string) *RowError {
	return &RowError{Source: source, Index: index, Reason: reason}
}

// InvalidExamTypeError is returned when a query names an unregistered exam.
type InvalidExamTypeError struct {
	Exam  string
	Known []string
}

// Error implements the error interface
func (e *InvalidExamTypeError) Error() string {
	if len(e.Known) > 0 {
		return fmt.Sprintf("invalid exam type %q (known: %v)", e.Exam, e.Known)
	}
	return fmt.Sprintf("invalid exam type %q", e.Exam)
}

// Is implements errors.Is support
func (e *InvalidExamTypeError) Is(target error) bool {
	return target == ErrInvalidExamType || target == ErrInvalidInput
}

// NewInvalidExamTypeError creates a new InvalidExamTypeError
func NewInvalidExamTypeError(exam string, known []string) *InvalidExamTypeError {
	return &InvalidExamTypeError{Exam: exam, Known: known}
}

// InvalidRankError is returned for a non-positive rank or rank bound.
type InvalidRankError struct {
	Field string
	Rank  int
}

// Error implements the error interface
func (e *InvalidRankError) Error() string {
	field := e.Field
	if field == "" {
		field = "rank"
	}
	return fmt.Sprintf("invalid %s %d: must be a positive integer", field, e.Rank)
}

// Is implements errors.Is support
func (e *InvalidRankError) Is(target error) bool {
	return target == ErrInvalidRank || target == ErrInvalidInput
}

// NewInvalidRankError creates a new InvalidRankError
func NewInvalidRankError(field string, rank int) *InvalidRankError {
	return &InvalidRankError{Field: field, Rank: rank}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv", "xlsx"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "load", "save", "build"
	Resource  string // "snapshot", "manifest", "store", "config"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSourceUnavailable checks if an error reports a missing source
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsSourceMalformed checks if an error reports unparseable source content
func IsSourceMalformed(err error) bool {
	return errors.Is(err, ErrSourceMalformed)
}

// IsRowMalformed checks if an error reports a dropped row
func IsRowMalformed(err error) bool {
	return errors.Is(err, ErrRowMalformed)
}

// IsInvalidExamType checks if an error reports an unregistered exam type
func IsInvalidExamType(err error) bool {
	return errors.Is(err, ErrInvalidExamType)
}

// IsInvalidRank checks if an error reports a non-positive rank
func IsInvalidRank(err error) bool {
	return errors.Is(err, ErrInvalidRank)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
