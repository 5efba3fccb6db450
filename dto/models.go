package dto

// Category separates line items into the two columns of a payslip.
type Category string

const (
	CategoryEarning   Category = "earning"
	CategoryDeduction Category = "deduction"
)

// ConceptDefinition is the canonical metadata for a payslip concept code.
type ConceptDefinition struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	Bonus       bool     `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// PayslipLineItem is one resolved row of the earnings or deductions table.
// Absent values are nil; which amount is set tells the category.
type PayslipLineItem struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Quantity        *float64 `json:"quantity"`
	UnitRate        *float64 `json:"unit_rate"`
	EarningAmount   *float64 `json:"earning_amount"`
	DeductionAmount *float64 `json:"deduction_amount"`
}

// Amount returns whichever amount column is populated, or 0.
func (i PayslipLineItem) Amount() float64 {
	switch {
	case i.EarningAmount != nil:
		return *i.EarningAmount
	case i.DeductionAmount != nil:
		return *i.DeductionAmount
	}
	return 0
}

// Payslip is the structured result of parsing one document.
//
// TotalEarnings, TotalDeductions and NetPay are read from the document itself
// and are never recomputed from the line items.
type Payslip struct {
	PaymentDate     string            `json:"payment_date"`
	SortableDate    string            `json:"sortable_date"` // YYYY-MM-DD
	Earnings        []PayslipLineItem `json:"earnings"`
	Deductions      []PayslipLineItem `json:"deductions"`
	TotalEarnings   float64           `json:"total_earnings"`
	TotalDeductions float64           `json:"total_deductions"`
	NetPay          float64           `json:"net_pay"`
}

// BonusTotal sums the earnings whose code satisfies isBonus.
func (p Payslip) BonusTotal(isBonus func(code string) bool) float64 {
	var total float64
	for _, e := range p.Earnings {
		if isBonus(e.Code) && e.EarningAmount != nil {
			total += *e.EarningAmount
		}
	}
	return total
}

// UnknownConcept is a line item whose code is missing from the registry.
type UnknownConcept struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Quantity        *float64 `json:"quantity"`
	UnitRate        *float64 `json:"unit_rate"`
	EarningAmount   *float64 `json:"earning_amount"`
	DeductionAmount *float64 `json:"deduction_amount"`
}
