package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"survey-curator/internal/table"
)

// MissingToken is the normalized form of every missing value.
const MissingToken = table.MissingToken

// Normalize returns the canonical string form of a cell value.
//
//   - nil, blank, "n/a" and NaN become MissingToken
//   - booleans become "true" or "false"
//   - integral numbers lose their fraction ("2.0" -> "2")
//   - everything else is stringified as is
func Normalize(v any) string {
	if table.IsMissing(v) {
		return MissingToken
	}

	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if strings.Contains(s, ".") {
			if f, err := strconv.ParseFloat(s, 64); err == nil && isIntegral(f) {
				return strconv.FormatInt(int64(f), 10)
			}
		}

		return s
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if isIntegral(f) {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) < 1<<53
}

// numeric parses a normalized value as a number.
func numeric(s string) (float64, bool) {
	if s == "" || s == MissingToken {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
