// Package sources loads raw college datasets from local files.
//
// Upstream producers hand over files in whatever shape they like: a JSON
// array, an object wrapping the array under a container key, YAML, CSV or an
// Excel workbook. The loader turns each into a slice of RawRow without
// validating individual rows; row-level interpretation happens through
// Record, and rejection happens in the merge engine.
//
// Load never returns a nil-unsafe result. A missing file yields an empty slice
// and an error wrapping errors.ErrSourceUnavailable; unparseable content
// yields an empty slice and an error wrapping errors.ErrSourceMalformed. The
// build pipeline logs both and continues with the remaining sources.
//
// Example usage:
//
//	rows, err := sources.Load(ctx, "data/jee_2024.json")
//	if err != nil {
//	    logger.Warn().Err(err).Msg("skipping source")
//	}
//	for _, row := range rows {
//	    rec := sources.NewRecord(row)
//	    fmt.Println(rec.Name())
//	}
package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/rankmap/pkg/errors"
)

// RawRow is one untyped record as produced by a loader.
type RawRow map[string]any

// Format identifies the on-disk encoding of a source.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// FormatOf picks the format from the file extension. Unrecognized extensions
// are read as JSON, the format every upstream producer supports.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Load reads the file at path and returns its rows.
func Load(ctx context.Context, path string) ([]RawRow, error) {
	return load(ctx, "", path)
}

func load(ctx context.Context, id, path string) ([]RawRow, error) {
	if err := ctx.Err(); err != nil {
		return []RawRow{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return []RawRow{}, errors.NewSourceUnavailable(id, path, err)
	}
	if info.IsDir() {
		return []RawRow{}, errors.NewSourceUnavailable(id, path, errors.New("is a directory"))
	}

	var rows []RawRow
	switch FormatOf(path) {
	case FormatXLSX:
		rows, err = decodeXLSX(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return []RawRow{}, errors.NewSourceUnavailable(id, path, err)
		}
		rows, err = decode(FormatOf(path), data)
	}
	if err != nil {
		return []RawRow{}, errors.NewSourceMalformed(id, path, err)
	}
	if rows == nil {
		rows = []RawRow{}
	}
	return rows, nil
}

func decode(format Format, data []byte) ([]RawRow, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return decodeJSON(data)
	}
}
