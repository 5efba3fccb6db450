package payslip

import (
	"strings"
	"testing"

	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageFromRows lays each row out on its own baseline, one token per
// space-separated word, top to bottom.
func pageFromRows(number int, rows ...string) layout.Page {
	page := layout.Page{Number: number}
	y := 800.0
	for _, row := range rows {
		x := 40.0
		for _, word := range strings.Fields(row) {
			page.Tokens = append(page.Tokens, layout.TextToken{
				Text: word, X: x, Y: y, Width: float64(len(word)) * 5, Height: 8,
			})
			x += float64(len(word))*5 + 4
		}
		y -= 20
	}
	return page
}

func docFromRows(rows ...string) layout.Document {
	return layout.Document{Pages: []layout.Page{pageFromRows(1, rows...)}}
}

var sampleRows = []string{
	"FECHA DE ABONO 31 DE ENERO DE 2024",
	"321 SALARIO BASE 30 1250,00 3750,00",
	"1005 SEGURIDAD SOCIAL 3750,00 4,70 176,25",
	"TOTALES 3750,00 176,25",
	"LIQUIDO A RECIBIR 3573,75",
}

func TestParseEndToEnd(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	slip, err := p.Parse(docFromRows(sampleRows...))
	require.NoError(t, err)

	assert.Equal(t, "31 DE ENERO DE 2024", slip.PaymentDate)
	assert.Equal(t, "2024-01-31", slip.SortableDate)

	require.Len(t, slip.Earnings, 1)
	earning := slip.Earnings[0]
	assert.Equal(t, "321", earning.Code)
	assert.Equal(t, "SALARIO BASE", earning.Name)
	assert.Equal(t, "Base monthly salary before any additions or deductions", earning.Description)
	require.NotNil(t, earning.Quantity)
	require.NotNil(t, earning.UnitRate)
	require.NotNil(t, earning.EarningAmount)
	assert.Equal(t, 30.0, *earning.Quantity)
	assert.Equal(t, 1250.00, *earning.UnitRate)
	assert.Equal(t, 3750.00, *earning.EarningAmount)
	assert.Nil(t, earning.DeductionAmount)

	require.Len(t, slip.Deductions, 1)
	deduction := slip.Deductions[0]
	assert.Equal(t, "1005", deduction.Code)
	require.NotNil(t, deduction.Quantity)
	require.NotNil(t, deduction.UnitRate)
	require.NotNil(t, deduction.DeductionAmount)
	assert.Equal(t, 3750.00, *deduction.Quantity)
	assert.Equal(t, 4.70, *deduction.UnitRate)
	assert.Equal(t, 176.25, *deduction.DeductionAmount)
	assert.Nil(t, deduction.EarningAmount)

	assert.Equal(t, 3750.00, slip.TotalEarnings)
	assert.Equal(t, 176.25, slip.TotalDeductions)
	assert.Equal(t, 3573.75, slip.NetPay)
}

func TestParseIsIdempotent(t *testing.T) {
	p := NewParser(concepts.MustDefault())
	doc := docFromRows(append(sampleRows, "9999 FOO 12,00")...)

	first, err := p.Parse(doc)
	require.NoError(t, err)
	second, err := p.Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, p.DetectUnknownConcepts(doc), p.DetectUnknownConcepts(doc))
}

func TestParseEmptyDocument(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	_, err := p.Parse(layout.Document{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestParseBlankPageDegrades(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	slip, err := p.Parse(layout.Document{Pages: []layout.Page{{Number: 1}}})
	require.NoError(t, err)

	assert.Empty(t, slip.PaymentDate)
	assert.Empty(t, slip.SortableDate)
	assert.NotNil(t, slip.Earnings)
	assert.NotNil(t, slip.Deductions)
	assert.Empty(t, slip.Earnings)
	assert.Empty(t, slip.Deductions)
	assert.Zero(t, slip.TotalEarnings)
	assert.Zero(t, slip.TotalDeductions)
	assert.Zero(t, slip.NetPay)
}

func TestParseReadsOnlyFirstPage(t *testing.T) {
	p := NewParser(concepts.MustDefault())
	doc := layout.Document{Pages: []layout.Page{
		pageFromRows(1, "321 SALARIO BASE 3750,00"),
		pageFromRows(2, "1005 SEGURIDAD SOCIAL 176,25", "LIQUIDO A RECIBIR 1,00"),
	}}

	slip, err := p.Parse(doc)
	require.NoError(t, err)

	assert.Len(t, slip.Earnings, 1)
	assert.Empty(t, slip.Deductions)
	assert.Zero(t, slip.NetPay)
}

func TestUnknownConceptRoundTrip(t *testing.T) {
	p := NewParser(concepts.MustDefault())
	doc := docFromRows(append(sampleRows, "9999 FOO 12,00")...)

	unknown := p.DetectUnknownConcepts(doc)
	require.Len(t, unknown, 1)
	assert.Equal(t, "9999", unknown[0].Code)
	assert.Equal(t, "FOO", unknown[0].Name)
	require.NotNil(t, unknown[0].DeductionAmount)
	assert.Equal(t, 12.0, *unknown[0].DeductionAmount)
	assert.Nil(t, unknown[0].EarningAmount)

	slip, err := p.Parse(doc)
	require.NoError(t, err)
	for _, item := range append(slip.Earnings, slip.Deductions...) {
		assert.NotEqual(t, "9999", item.Code)
	}
}

func TestDetectUnknownConceptsCoversEarnings(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	unknown := p.DetectUnknownConcepts(docFromRows("450 PLUS TRANSPORTE 1 80,00 80,00", "321 SALARIO BASE 3750,00"))

	require.Len(t, unknown, 1)
	assert.Equal(t, "450", unknown[0].Code)
	assert.Equal(t, "PLUS TRANSPORTE", unknown[0].Name)
	require.NotNil(t, unknown[0].EarningAmount)
	assert.Equal(t, 80.0, *unknown[0].EarningAmount)
}

func TestDetectUnknownConceptsEmptyDocument(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	assert.Empty(t, p.DetectUnknownConcepts(layout.Document{}))
}

func TestParseUsesRegistryName(t *testing.T) {
	p := NewParser(concepts.MustDefault())

	slip, err := p.Parse(docFromRows("1051 IMP A CUENTA RE 21,00 1294,37"))
	require.NoError(t, err)

	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "IMP A CUENTA RENTA", slip.Deductions[0].Name)
	assert.Equal(t, "Income tax withholding (IRPF)", slip.Deductions[0].Description)
	require.NotNil(t, slip.Deductions[0].Quantity)
	assert.Equal(t, 21.0, *slip.Deductions[0].Quantity)
	assert.Nil(t, slip.Deductions[0].UnitRate)
	assert.Equal(t, 1294.37, *slip.Deductions[0].DeductionAmount)
}

func TestParseWithInjectedRegistry(t *testing.T) {
	reg, err := concepts.Parse([]byte(`version: test
concepts:
  - code: "9999"
    name: CUSTOM
    description: Custom deduction
`))
	require.NoError(t, err)
	p := NewParser(reg)
	doc := docFromRows("9999 FOO 12,00", "321 SALARIO BASE 3750,00")

	slip, err := p.Parse(doc)
	require.NoError(t, err)

	assert.Empty(t, slip.Earnings)
	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "CUSTOM", slip.Deductions[0].Name)

	unknown := p.DetectUnknownConcepts(doc)
	require.Len(t, unknown, 1)
	assert.Equal(t, "321", unknown[0].Code)
}

func TestWithTolerance(t *testing.T) {
	tokens := []layout.TextToken{
		{Text: "321", X: 10, Y: 100},
		{Text: "SALARIO", X: 40, Y: 95},
		{Text: "3750,00", X: 200, Y: 95},
	}
	doc := layout.Document{Pages: []layout.Page{{Number: 1, Tokens: tokens}}}

	strict, err := NewParser(concepts.MustDefault()).Parse(doc)
	require.NoError(t, err)
	require.Len(t, strict.Earnings, 1)
	assert.Nil(t, strict.Earnings[0].EarningAmount)

	loose, err := NewParser(concepts.MustDefault(), WithTolerance(6)).Parse(doc)
	require.NoError(t, err)
	require.Len(t, loose.Earnings, 1)
	require.NotNil(t, loose.Earnings[0].EarningAmount)
	assert.Equal(t, 3750.0, *loose.Earnings[0].EarningAmount)
}
