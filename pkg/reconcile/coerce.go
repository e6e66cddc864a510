package reconcile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/rankmap/pkg/constants"
)

// Coerce converts a raw cutoff to an int. Integers, floats, numeric strings
// and comma-grouped strings ("1,234") are accepted; anything else is 0. The
// second result reports whether the value was numeric.
func Coerce(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return clampInt64(n), true
	case uint:
		return clampUint64(uint64(n)), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return clampUint64(uint64(n)), true
	case uint64:
		return clampUint64(n), true
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return parseNumber(n.String())
	case string:
		return parseNumber(n)
	default:
		return 0, false
	}
}

// Clamp bounds a cutoff to [MinRank, ceiling].
func Clamp(cutoff, ceiling int) int {
	if ceiling < constants.MinRank {
		ceiling = constants.MinRank
	}
	return min(max(cutoff, constants.MinRank), ceiling)
}

func parseNumber(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampInt64(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(f)
	}
	return 0, false
}

func fromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt, true
	}
	if f <= math.MinInt64 {
		return math.MinInt, true
	}
	return clampInt64(int64(f)), true
}

func clampInt64(i int64) int {
	if i > math.MaxInt {
		return math.MaxInt
	}
	if i < math.MinInt {
		return math.MinInt
	}
	return int(i)
}

func clampUint64(u uint64) int {
	if u > math.MaxInt {
		return math.MaxInt
	}
	return int(u)
}
