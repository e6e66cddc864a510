package sources

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Field is a logical column that upstream producers spell in different ways.
type Field int

// Logical fields resolved through aliases.
const (
	FieldName Field = iota
	FieldCutoff
	FieldExam
	FieldCategory
	FieldState
	FieldType
)

var fieldNames = [...]string{
	FieldName:     "name",
	FieldCutoff:   "cutoff",
	FieldExam:     "exam",
	FieldCategory: "category",
	FieldState:    "state",
	FieldType:     "type",
}

// String returns the logical field name.
func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Fields lists every logical field in resolution order.
func Fields() []Field {
	return []Field{FieldName, FieldCutoff, FieldExam, FieldCategory, FieldState, FieldType}
}

// aliases are tried in order; the first key present with a usable value wins.
var aliases = map[Field][]string{
	FieldName:     {"college", "university", "name", "institute", "college_name"},
	FieldCutoff:   {"cutoff_rank", "rank", "closing_rank", "cutoff"},
	FieldExam:     {"exam", "exam_type"},
	FieldCategory: {"category", "quota"},
	FieldState:    {"state", "location_state"},
	FieldType:     {"type", "institution_type", "college_type"},
}

// Aliases returns the ordered key aliases for f.
func Aliases(f Field) []string {
	out := make([]string, len(aliases[f]))
	copy(out, aliases[f])
	return out
}

// Record resolves logical fields on a RawRow.
type Record struct {
	row RawRow
}

// NewRecord wraps row.
func NewRecord(row RawRow) Record {
	return Record{row: row}
}

// Raw returns the wrapped row.
func (r Record) Raw() RawRow {
	return r.row
}

// Lookup returns the first alias of f that is present with a non-empty value,
// along with the key that matched. Keys match exactly first, then ignoring
// case with spaces and dashes read as underscores ("College Name"). When
// several spellings fold to the same alias the smallest key wins.
func (r Record) Lookup(f Field) (any, string, bool) {
	for _, alias := range aliases[f] {
		if v, ok := r.row[alias]; ok && present(v) {
			return v, alias, true
		}
	}
	keys := slices.Sorted(maps.Keys(r.row))
	for _, alias := range aliases[f] {
		for _, key := range keys {
			if v := r.row[key]; headerKey(key) == alias && present(v) {
				return v, key, true
			}
		}
	}
	return nil, "", false
}

// String returns the trimmed textual value of f, or "" when absent.
func (r Record) String(f Field) string {
	v, _, ok := r.Lookup(f)
	if !ok {
		return ""
	}
	return Text(v)
}

// Name returns the college name, or "" when no alias carries one.
func (r Record) Name() string {
	return r.String(FieldName)
}

// Cutoff returns the raw cutoff value for numeric coercion.
func (r Record) Cutoff() (any, bool) {
	v, _, ok := r.Lookup(FieldCutoff)
	return v, ok
}

// Exam returns the row-level exam tag, or "".
func (r Record) Exam() string {
	return r.String(FieldExam)
}

// Category returns the row-level category, or "".
func (r Record) Category() string {
	return r.String(FieldCategory)
}

// State returns the row-level state, or "".
func (r Record) State() string {
	return r.String(FieldState)
}

// Type returns the row-level institution type, or "".
func (r Record) Type() string {
	return r.String(FieldType)
}

// Text renders a scalar value as trimmed text. Composite values render as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func present(v any) bool {
	return Text(v) != ""
}

func headerKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}
