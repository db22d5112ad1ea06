// Package tax implements the terminal withholding rules applied to
// investment yield: the regressive income-tax bracket table, product-class
// exemptions, and the first-period IOF penalty curves.
package tax

import (
	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/mathutil"
)

// ProductType categorizes an investment product for tax purposes.
type ProductType string

const (
	ProductCDB      ProductType = "CDB"
	ProductLCI      ProductType = "LCI"
	ProductLCA      ProductType = "LCA"
	ProductTesouro  ProductType = "TESOURO"
	ProductPoupanca ProductType = "POUPANCA"
)

// Regressive income-tax brackets by elapsed holding time in days.
const (
	rateUpTo180Days = 0.225
	rateUpTo360Days = 0.20
	rateUpTo720Days = 0.175
	rateBeyond      = 0.15
)

// IsExempt reports whether a product class is exempt from income-tax
// withholding.
func IsExempt(product ProductType) bool {
	return product == ProductLCI || product == ProductLCA
}

// RegressiveRate returns the withholding rate for a holding period measured
// in calendar days.
func RegressiveRate(elapsedDays int) float64 {
	switch {
	case elapsedDays <= 180:
		return rateUpTo180Days
	case elapsedDays <= 360:
		return rateUpTo360Days
	case elapsedDays <= 720:
		return rateUpTo720Days
	default:
		return rateBeyond
	}
}

// ElapsedDays approximates the holding period for a number of monthly
// periods when no exact calendar dates are available.
func ElapsedDays(periods int) int {
	return periods * constants.DaysPerPeriod
}

// Withheld computes the terminal income-tax deduction for accumulated gross
// yield. Exempt product classes withhold nothing; negative yield is clamped
// to zero before the bracket applies. This is a single deduction at
// termination, never a per-period charge.
func Withheld(product ProductType, grossYield float64, elapsedDays int) float64 {
	if IsExempt(product) {
		return 0
	}
	return mathutil.Round(mathutil.Max(0, grossYield) * RegressiveRate(elapsedDays))
}

// IOFCurve maps elapsed days at the first period's close to the penalty
// factor applied to that period's interest.
type IOFCurve func(elapsedDays int) float64

// FixedIOFCurve returns a curve that applies a single scalar factor
// regardless of elapsed days. A non-positive factor falls back to the
// default.
func FixedIOFCurve(factor float64) IOFCurve {
	if factor <= 0 {
		factor = constants.DefaultIOFFactor
	}
	return func(int) float64 {
		return factor
	}
}

// LinearDecayIOFCurve returns the 30-day linear decay curve: full penalty at
// day 0 falling to zero at day 30 and beyond.
func LinearDecayIOFCurve() IOFCurve {
	return func(elapsedDays int) float64 {
		if elapsedDays >= constants.DaysPerPeriod {
			return 0
		}
		if elapsedDays < 0 {
			elapsedDays = 0
		}
		return float64(constants.DaysPerPeriod-elapsedDays) / float64(constants.DaysPerPeriod)
	}
}
