package payslip

import (
	"github.com/Aashish23092/payslip-extractor/dto"
	"github.com/shopspring/decimal"
)

// cent is the largest difference still treated as rounding.
var cent = decimal.New(1, -2)

// Reconcile compares the stated totals and net pay with the line items.
// Only registered concepts are summed, so a document with unknown concepts
// will not balance.
func Reconcile(p dto.Payslip) dto.Reconciliation {
	earnings := sumAmounts(p.Earnings)
	deductions := sumAmounts(p.Deductions)

	totalEarnings := decimal.NewFromFloat(p.TotalEarnings)
	totalDeductions := decimal.NewFromFloat(p.TotalDeductions)

	earningsDelta := totalEarnings.Sub(earnings)
	deductionsDelta := totalDeductions.Sub(deductions)
	netDelta := decimal.NewFromFloat(p.NetPay).Sub(totalEarnings.Sub(totalDeductions))

	return dto.Reconciliation{
		EarningsSum:     earnings.Round(2).InexactFloat64(),
		DeductionsSum:   deductions.Round(2).InexactFloat64(),
		EarningsDelta:   earningsDelta.Round(2).InexactFloat64(),
		DeductionsDelta: deductionsDelta.Round(2).InexactFloat64(),
		NetDelta:        netDelta.Round(2).InexactFloat64(),
		Balanced: earningsDelta.Abs().LessThan(cent) &&
			deductionsDelta.Abs().LessThan(cent) &&
			netDelta.Abs().LessThan(cent),
	}
}

func sumAmounts(items []dto.PayslipLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Amount()))
	}
	return sum
}
