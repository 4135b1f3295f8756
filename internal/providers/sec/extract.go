package sec

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

const cikWidth = 10

// yearToken matches a 19xx/20xx token that is not part of a longer digit run.
var yearToken = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)[0-9]{2})(?:[^0-9]|$)`)

// NormalizeCIK trims the identifier, strips an optional "CIK" prefix and
// zero-pads it to 10 digits: "2969" → "0000002969".
func NormalizeCIK(identifier string) (string, error) {
	s := strings.TrimSpace(identifier)
	if len(s) >= 3 && strings.EqualFold(s[:3], "CIK") {
		s = strings.TrimSpace(s[3:])
	}
	if !isNumeric(s) || len(s) > cikWidth {
		return "", &provider.InvalidIdentifierError{Input: identifier}
	}
	return padCIK(s), nil
}

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < cikWidth {
		cik = "0" + cik
	}
	return cik
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ParseYear derives a four-digit year from a year label such as "2022",
// "FY2022" or "2022FY". It returns false when the label has no 1900-2099 token.
func ParseYear(label string) (int, bool) {
	m := yearToken.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// coerceValue converts a decoded value to a finite float. Numeric strings
// (optionally with thousands separators) are accepted.
func coerceValue(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// filterObservations keeps the entries with a derivable year strictly after
// cutoffYear and a finite numeric value, preserving input order.
func filterObservations(entries []rawEntry, cutoffYear int) []models.Observation {
	var out []models.Observation
	for _, e := range entries {
		year, ok := ParseYear(e.label)
		if !ok || year <= cutoffYear {
			continue
		}
		value, ok := coerceValue(e.value)
		if !ok {
			continue
		}
		out = append(out, models.Observation{Year: year, Value: value, RawYearLabel: e.label})
	}
	return out
}

// selectExtrema returns the maximum and minimum observations in one pass.
// On ties the first occurrence wins for both.
func selectExtrema(obs []models.Observation) (hi, lo models.Observation, ok bool) {
	if len(obs) == 0 {
		return hi, lo, false
	}
	hi, lo = obs[0], obs[0]
	for _, o := range obs[1:] {
		if o.Value > hi.Value {
			hi = o
		}
		if o.Value < lo.Value {
			lo = o
		}
	}
	return hi, lo, true
}
