package payslip

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Aashish23092/payslip-extractor/utils/layout"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is the result of an anchor scan. Found is false when no row matched.
type Field[T any] struct {
	Value T
	Found bool
}

func found[T any](v T) Field[T] {
	return Field[T]{Value: v, Found: true}
}

// Or returns the value, or def when the field was not found.
func (f Field[T]) Or(def T) T {
	if !f.Found {
		return def
	}
	return f.Value
}

// PaymentDate is the payment date as printed and as YYYY-MM-DD.
type PaymentDate struct {
	Display  string
	Sortable string
}

// Totals is the TOTALES row.
type Totals struct {
	Earnings   float64
	Deductions float64
}

var (
	paymentDatePattern = regexp.MustCompile(`(?i)FECHA DE ABONO\s+(\d{1,2}\s+DE\s+\w+\s+DE\s+\d{4})`)
	netPayPattern      = regexp.MustCompile(`(?i)LIQUIDO A RECIBIR\s+([\d.,]+)\s*€?`)
	totalsPattern      = regexp.MustCompile(`(?i)TOTALES\s+([\d.,]+)\s+([\d.,]+)`)
)

// FindPaymentDate scans for "FECHA DE ABONO <d> DE <month> DE <yyyy>".
// Sortable is empty when the month name is not recognised.
func FindPaymentDate(lines []layout.LineGroup) Field[PaymentDate] {
	m := firstMatch(lines, paymentDatePattern)
	if m == nil {
		return Field[PaymentDate]{}
	}
	return found(PaymentDate{Display: m[1], Sortable: ParseDate(foldDiacritics(m[1]))})
}

// FindNetPay scans for "LIQUIDO A RECIBIR <amount>".
func FindNetPay(lines []layout.LineGroup) Field[float64] {
	m := firstMatch(lines, netPayPattern)
	if m == nil {
		return Field[float64]{}
	}
	v, _ := ParseNumber(m[1])
	return found(v)
}

// FindTotals scans for "TOTALES <earnings> <deductions>" on a single row.
func FindTotals(lines []layout.LineGroup) Field[Totals] {
	m := firstMatch(lines, totalsPattern)
	if m == nil {
		return Field[Totals]{}
	}
	earnings, _ := ParseNumber(m[1])
	deductions, _ := ParseNumber(m[2])
	return found(Totals{Earnings: earnings, Deductions: deductions})
}

// firstMatch returns the submatches of the first row matching re. Rows are
// matched with diacritics folded; submatches are cut from the row as printed.
func firstMatch(lines []layout.LineGroup, re *regexp.Regexp) []string {
	for _, line := range lines {
		row := foldLine(line.Text())
		loc := re.FindStringSubmatchIndex(row.folded)
		if loc == nil {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			m[i] = row.span(loc[2*i], loc[2*i+1])
		}
		return m
	}
	return nil
}

// foldedLine is a row with diacritics removed. offsets[i] is the byte in
// original that produced folded byte i; the last entry is len(original).
type foldedLine struct {
	original string
	folded   string
	offsets  []int
}

func foldLine(text string) foldedLine {
	text = norm.NFC.String(text)

	var b strings.Builder
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		piece := foldDiacritics(string(r))
		for range len(piece) {
			offsets = append(offsets, i)
		}
		b.WriteString(piece)
	}
	offsets = append(offsets, len(text))

	return foldedLine{original: text, folded: b.String(), offsets: offsets}
}

// span maps the folded byte range [start, end) back onto the original text.
// An unmatched optional group (start < 0) yields "".
func (l foldedLine) span(start, end int) string {
	if start < 0 || end < start {
		return ""
	}
	return l.original[l.offsets[start]:l.offsets[end]]
}

// foldDiacritics strips combining marks so "LÍQUIDO" matches "LIQUIDO".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
