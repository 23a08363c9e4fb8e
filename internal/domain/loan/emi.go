package loan

import (
	"math"

	"github.com/shopspring/decimal"
)

// CalculateEMI computes the equated monthly installment for an amortizing
// loan: EMI = P*r*(1+r)^n / ((1+r)^n - 1), with r the monthly rate derived
// from the annual percentage rate. A zero rate degrades to simple division
// over the tenure; a zero tenure yields 0. The result is rounded to two
// decimal places.
func CalculateEMI(principal, annualRate float64, tenureMonths int) float64 {
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 || tenureMonths == 0 {
		if tenureMonths > 0 {
			return roundMoney(principal / float64(tenureMonths))
		}
		return 0
	}

	compound := math.Pow(1+monthlyRate, float64(tenureMonths))
	emi := principal * monthlyRate * compound / (compound - 1)
	return roundMoney(emi)
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
