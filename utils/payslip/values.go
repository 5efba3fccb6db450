package payslip

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Digits with an optional single decimal part, after locale normalisation.
	plainNumberPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

	// 31 DE ENERO DE 2024
	datePattern = regexp.MustCompile(`(?i)(\d{1,2})\s+DE\s+(\w+)\s+DE\s+(\d{4})`)
)

var spanishMonths = map[string]string{
	"ENERO":      "01",
	"FEBRERO":    "02",
	"MARZO":      "03",
	"ABRIL":      "04",
	"MAYO":       "05",
	"JUNIO":      "06",
	"JULIO":      "07",
	"AGOSTO":     "08",
	"SEPTIEMBRE": "09",
	"OCTUBRE":    "10",
	"NOVIEMBRE":  "11",
	"DICIEMBRE":  "12",
}

// ParseNumber converts a Spanish-formatted number ("1.234,56", "176,25 €")
// to a float64. Dots are thousands separators and the comma is the decimal
// separator. ok is false for empty or malformed input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "")
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	if !plainNumberPattern.MatchString(s) {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numberPtr is ParseNumber for optional fields.
func numberPtr(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// ParseDate converts "31 DE ENERO DE 2024" to "2024-01-31". It returns ""
// when the text does not match or the month name is unknown.
func ParseDate(s string) string {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	month, ok := spanishMonths[strings.ToUpper(m[2])]
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%s-%02d", m[3], month, day)
}
