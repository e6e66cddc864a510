package sources

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
)

// decodeJSON keeps numbers as json.Number so large ranks survive without float rounding.
func decodeJSON(data []byte) ([]RawRow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.WrapParse("json", "", io.ErrUnexpectedEOF)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return rowsFromDocument(doc), nil
}

func decodeYAML(data []byte) ([]RawRow, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return rowsFromDocument(doc), nil
}

// rowsFromDocument accepts either a top-level array or an object holding the
// array under the first matching container key. Anything else has no rows.
func rowsFromDocument(doc any) []RawRow {
	if obj, ok := asObject(doc); ok {
		doc = nil
		for _, key := range constants.ContainerKeys {
			if v, found := obj[key]; found {
				if _, isArray := v.([]any); isArray {
					doc = v
					break
				}
			}
		}
	}

	items, ok := doc.([]any)
	if !ok {
		return []RawRow{}
	}
	rows := make([]RawRow, 0, len(items))
	for _, item := range items {
		obj, isObject := asObject(item)
		if !isObject {
			// Kept so the merge engine can count it as malformed.
			obj = RawRow{}
		}
		rows = append(rows, obj)
	}
	return rows
}

func asObject(v any) (RawRow, bool) {
	switch m := v.(type) {
	case map[string]any:
		return RawRow(m), true
	case RawRow:
		return m, true
	case map[any]any:
		row := make(RawRow, len(m))
		for k, val := range m {
			row[fmt.Sprint(k)] = val
		}
		return row, true
	default:
		return nil, false
	}
}

func decodeCSV(data []byte) ([]RawRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", "", err)
	}
	return rowsFromTable(records), nil
}

func decodeXLSX(path string) ([]RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.NewParseError("xlsx", path, "no sheets found", nil)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	return rowsFromTable(records), nil
}

// rowsFromTable maps every record after the header onto the header's column
// names. Blank lines and unnamed columns are dropped.
func rowsFromTable(records [][]string) []RawRow {
	if len(records) == 0 {
		return []RawRow{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make(RawRow, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
