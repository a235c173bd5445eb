package insights

import (
	"math"
	"strconv"
	"strings"
)

// formatFixed formats v with the given number of decimals. Values exactly
// halfway between two results round away from zero, unlike fmt's round half
// to even, so 0.25 formats as "0.3" and 12.5 as "13".
func formatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	abs := math.Abs(v)

	// an exact tie shows up as a 5 followed only by zeros
	exact := strconv.FormatFloat(abs, 'f', digits+30, 64)
	tail := exact[strings.IndexByte(exact, '.')+1+digits:]
	if tail[0] == '5' && strings.TrimRight(tail[1:], "0") == "" {
		abs = math.Nextafter(abs, math.Inf(1))
	}

	out := strconv.FormatFloat(abs, 'f', digits, 64)
	if v < 0 {
		return "-" + out
	}
	return out
}

// formatNumber formats v with the fewest digits needed, so 92 is "92" and
// 92.5 is "92.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
