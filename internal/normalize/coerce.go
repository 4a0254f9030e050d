package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// coerceNumeric attempts to parse a raw cell as a number with deterministic
// cleanup rules: surrounding whitespace, thousands separators, currency
// symbols, percent signs and parenthesised negatives are stripped before
// parsing. Values that still fail coercion report ok=false so the caller can
// inject the column default instead of raising.
func coerceNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Parentheses mean negative in accounting exports: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	if hasComma && hasPeriod {
		// European format when the comma comes last: 1.234,56
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	} else if hasComma {
		// Bare comma: thousands separator when it groups by three, decimal otherwise.
		idx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-idx-1 == 3 && strings.Count(cleanVal, ",") >= 1 && !strings.Contains(cleanVal[:idx], ".") && len(cleanVal[:idx]) <= 3+strings.Count(cleanVal, ",")*4 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	}
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// timeFormats covers the layouts observed across uploaded files: ISO, US
// month-first, day-first and textual-month variants.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2-1-2006",
}

// coerceTime parses a date/time cell permissively. Layouts are tried in
// declaration order so ambiguous numeric dates resolve month-first, matching
// the behavior the models were trained against. Unparsable values report
// ok=false and downstream derived fields degrade (weekday "Unknown",
// is_weekend false) instead of aborting the batch.
func coerceTime(raw string) (time.Time, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return time.Time{}, false
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, cleanVal); err == nil {
			return t, true
		}
	}
	// Unix timestamps show up in exported telemetry.
	if unixVal, err := strconv.ParseInt(cleanVal, 10, 64); err == nil {
		if unixVal > 1_000_000_000 && unixVal < 4_000_000_000 {
			return time.Unix(unixVal, 0).UTC(), true
		}
	}
	return time.Time{}, false
}
