// Package constants provides shared constants used throughout the rankmap codebase.
// This includes rank limits, well-known field names, file permissions, and
// the fallback state list used when synthesizing coverage records.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// BuildTimeout bounds a single full rebuild of the aggregate
	BuildTimeout = 10 * time.Minute

	// DefaultRebuildInterval is the default interval between automatic rebuilds
	DefaultRebuildInterval = 24 * time.Hour

	// ShutdownTimeout is how long graceful shutdown may take
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Rank constants
const (
	// MinRank is the best possible rank and the lower clamp bound for cutoffs
	MinRank = 1

	// DefaultRankCeiling is the coverage ceiling used when an exam does not declare one
	DefaultRankCeiling = 200000

	// DefaultQueryLimit is the result limit used by transports when none is given.
	// The query core itself treats non-positive limits as unlimited.
	DefaultQueryLimit = 100

	// MaxQueryLimit caps transport-supplied limits
	MaxQueryLimit = 5000
)

// Metadata sentinels
const (
	// Unknown fills state and type when no source or reference supplied a value
	Unknown = "Unknown"

	// DerivedSourceTag marks records synthesized by the coverage extender
	DerivedSourceTag = "derived:coverage"

	// PlaceholderCandidate names the candidate used when the coverage pool is empty
	PlaceholderCandidate = "Unlisted Institution"
)

// ContainerKeys are the object keys searched, in order, when a source's top level
// is an object rather than an array.
var ContainerKeys = []string{"colleges", "data", "items", "rows"}

// States is the cyclic fallback list assigned to synthesized records whose
// candidate carries no state of its own.
var States = []string{
	"Andhra Pradesh",
	"Assam",
	"Bihar",
	"Delhi",
	"Gujarat",
	"Haryana",
	"Karnataka",
	"Kerala",
	"Madhya Pradesh",
	"Maharashtra",
	"Odisha",
	"Punjab",
	"Rajasthan",
	"Tamil Nadu",
	"Telangana",
	"Uttar Pradesh",
	"Uttarakhand",
	"West Bengal",
}
