package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// round2 rounds half away from zero to 2 decimal places. Statistics are
// kept at full precision until this point. Rounding works on the shortest
// decimal form of f, so 1.005 becomes 1.01 rather than following the
// binary value just below it.
func round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}

	digits := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	if len(frac) <= 2 {
		return f
	}
	if len(whole) > 15 {
		return math.Round(f*100) / 100
	}

	cents, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Round(f*100) / 100
	}
	if frac[2] >= '5' {
		cents++
	}

	rounded := float64(cents) / 100
	if f < 0 {
		rounded = -rounded
	}
	return rounded
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", round2(f))
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatCell renders one table cell
func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case int:
		return formatInt(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
