// Package payslip reconstructs payslip tables from positioned text.
package payslip

import (
	"errors"

	"github.com/Aashish23092/payslip-extractor/dto"
	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/layout"
)

// ErrEmptyDocument is returned when a document has no pages at all.
var ErrEmptyDocument = errors.New("document has no pages")

// Parser turns the first page of a document into a Payslip. A Parser holds no
// per-parse state and may be shared between goroutines.
type Parser struct {
	registry  *concepts.Registry
	tolerance float64
}

// Option configures a Parser.
type Option func(*Parser)

// WithTolerance sets the vertical tolerance used to group tokens into rows.
func WithTolerance(tolerance float64) Option {
	return func(p *Parser) {
		p.tolerance = tolerance
	}
}

func NewParser(registry *concepts.Registry, opts ...Option) *Parser {
	p := &Parser{
		registry:  registry,
		tolerance: layout.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry the parser resolves codes against.
func (p *Parser) Registry() *concepts.Registry {
	return p.registry
}

// Lines groups the first page into rows. Later pages are not part of the
// payslip (they carry employer contributions) and are ignored.
func (p *Parser) Lines(doc layout.Document) ([]layout.LineGroup, error) {
	page, ok := doc.FirstPage()
	if !ok {
		return nil, ErrEmptyDocument
	}
	return layout.GroupLines(page.Tokens, p.tolerance), nil
}

// Parse extracts the payslip. Only registered concepts appear in Earnings and
// Deductions; unmatched anchors leave their fields empty or zero. The only
// error is ErrEmptyDocument.
func (p *Parser) Parse(doc layout.Document) (dto.Payslip, error) {
	lines, err := p.Lines(doc)
	if err != nil {
		return dto.Payslip{}, err
	}

	date := FindPaymentDate(lines).Value
	totals := FindTotals(lines).Value

	result := dto.Payslip{
		PaymentDate:     date.Display,
		SortableDate:    date.Sortable,
		Earnings:        []dto.PayslipLineItem{},
		Deductions:      []dto.PayslipLineItem{},
		TotalEarnings:   totals.Earnings,
		TotalDeductions: totals.Deductions,
		NetPay:          FindNetPay(lines).Value,
	}

	for _, raw := range ExtractRawLineItems(lines) {
		def, ok := p.registry.Resolve(raw.Code)
		if !ok {
			continue
		}
		item := toLineItem(raw, def)
		if category, _ := concepts.Categorize(raw.Code); category == dto.CategoryEarning {
			result.Earnings = append(result.Earnings, item)
		} else {
			result.Deductions = append(result.Deductions, item)
		}
	}

	return result, nil
}

// DetectUnknownConcepts lists every line item whose code is not registered,
// earnings and deductions alike, keeping the name as scanned. A document
// without pages has no unknown concepts.
func (p *Parser) DetectUnknownConcepts(doc layout.Document) []dto.UnknownConcept {
	lines, err := p.Lines(doc)
	if err != nil {
		return []dto.UnknownConcept{}
	}

	unknown := []dto.UnknownConcept{}
	for _, raw := range ExtractRawLineItems(lines) {
		if p.registry.IsKnown(raw.Code) {
			continue
		}
		unknown = append(unknown, toUnknownConcept(raw))
	}
	return unknown
}
