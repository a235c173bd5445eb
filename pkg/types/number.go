package types

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Number is a float64 that decodes leniently from JSON. It accepts numbers,
// numeric strings and strings with a numeric prefix (e.g. "3.21 kW/h").
// Anything else, including null, decodes to 0 rather than failing.
type Number float64

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Float returns the value as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		*n = Number(ParseLeadingFloat(str))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number(f)
	return nil
}

// ParseLeadingFloat parses the longest numeric prefix of s after leading
// whitespace. It returns 0 if s does not start with a number.
func ParseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0
	}
	return f
}
