package payslip

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/payslip-extractor/dto"
	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/layout"
)

var (
	itemCodePattern     = regexp.MustCompile(`^\d{3,4}$`)
	numericTokenPattern = regexp.MustCompile(`^[\d.,]+$`)
)

// RawLineItem is a candidate table row before typing and resolution.
type RawLineItem struct {
	Code   string
	Name   string
	Values []string
}

// ExtractRawLineItems returns every row whose first token is a bare 3–4
// digit code. The name runs up to the first numeric token; that token and
// everything after it are the row's values.
func ExtractRawLineItems(lines []layout.LineGroup) []RawLineItem {
	var items []RawLineItem

	for _, line := range lines {
		texts := make([]string, 0, len(line.Tokens))
		for _, tok := range line.Tokens {
			if s := strings.TrimSpace(tok.Text); s != "" {
				texts = append(texts, s)
			}
		}
		if len(texts) == 0 || !itemCodePattern.MatchString(texts[0]) {
			continue
		}

		rest := texts[1:]
		nameEnd := len(rest)
		for i, s := range rest {
			if numericTokenPattern.MatchString(s) {
				nameEnd = i
				break
			}
		}

		items = append(items, RawLineItem{
			Code:   texts[0],
			Name:   strings.Join(rest[:nameEnd], " "),
			Values: append([]string(nil), rest[nameEnd:]...),
		})
	}

	return items
}

// Amounts are the typed values of a row.
type Amounts struct {
	Quantity *float64
	UnitRate *float64
	Amount   *float64
}

// AssignValues maps values by count:
//
//	0  -> nothing
//	1  -> amount
//	2  -> quantity, amount
//	3+ -> quantity, unit rate, amount (extras ignored)
//
// The table is the same for earnings and deductions.
func AssignValues(values []string) Amounts {
	switch len(values) {
	case 0:
		return Amounts{}
	case 1:
		return Amounts{Amount: numberPtr(values[0])}
	case 2:
		return Amounts{Quantity: numberPtr(values[0]), Amount: numberPtr(values[1])}
	default:
		return Amounts{
			Quantity: numberPtr(values[0]),
			UnitRate: numberPtr(values[1]),
			Amount:   numberPtr(values[2]),
		}
	}
}

// split places the amount in the column the code's category selects.
func (a Amounts) split(code string) (earning, deduction *float64) {
	if category, _ := concepts.Categorize(code); category == dto.CategoryEarning {
		return a.Amount, nil
	}
	return nil, a.Amount
}

func toLineItem(raw RawLineItem, def dto.ConceptDefinition) dto.PayslipLineItem {
	amounts := AssignValues(raw.Values)
	earning, deduction := amounts.split(raw.Code)
	return dto.PayslipLineItem{
		Code:            raw.Code,
		Name:            def.Name,
		Description:     def.Description,
		Quantity:        amounts.Quantity,
		UnitRate:        amounts.UnitRate,
		EarningAmount:   earning,
		DeductionAmount: deduction,
	}
}

func toUnknownConcept(raw RawLineItem) dto.UnknownConcept {
	amounts := AssignValues(raw.Values)
	earning, deduction := amounts.split(raw.Code)
	return dto.UnknownConcept{
		Code:            raw.Code,
		Name:            raw.Name,
		Quantity:        amounts.Quantity,
		UnitRate:        amounts.UnitRate,
		EarningAmount:   earning,
		DeductionAmount: deduction,
	}
}
