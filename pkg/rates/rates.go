// Package rates converts nominal rate definitions into effective per-period
// compounding rates.
package rates

import (
	"math"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/mathutil"
)

// Kind identifies how a nominal rate is quoted.
type Kind string

const (
	// KindFlat is a plain percentage rate, annual or monthly.
	KindFlat Kind = "flat"

	// KindCDILinked is a floating rate quoted as a percentage of the CDI
	// annual rate.
	KindCDILinked Kind = "cdi"

	// KindIPCAPlus is an inflation-indexed rate: IPCA plus a fixed real
	// spread, composed multiplicatively.
	KindIPCAPlus Kind = "ipca"
)

// Period identifies the quotation period of a flat rate.
type Period string

const (
	// PeriodAnnual means the flat rate is quoted per year.
	PeriodAnnual Period = "annual"

	// PeriodMonthly means the flat rate is already quoted per month.
	PeriodMonthly Period = "monthly"
)

// NominalRate describes a rate as entered at the boundary. All percentage
// fields are in percent units (e.g. 12 means 12%).
type NominalRate struct {
	Kind   Kind
	Period Period // flat rates only

	Percent float64 // flat

	PercentOfCDI     float64 // cdi-linked
	CDIAnnualPercent float64 // cdi-linked

	IPCAAnnualPercent float64 // ipca-plus
	SpreadPercent     float64 // ipca-plus
}

// MonthlyFromAnnual converts an effective annual rate (decimal) into the
// equivalent effective monthly compounding rate.
func MonthlyFromAnnual(annual float64) float64 {
	return math.Pow(1+annual, 1.0/constants.MonthsPerYear) - 1
}

// EffectiveAnnual returns the effective annual rate as a decimal fraction.
// For already-monthly flat rates the quoted monthly rate is compounded up.
// Malformed numeric input (NaN, Inf) is normalized to 0.
func (r NominalRate) EffectiveAnnual() float64 {
	switch r.Kind {
	case KindCDILinked:
		percentOfCDI := mathutil.Sanitize(r.PercentOfCDI) / constants.PercentageMultiplier
		cdi := mathutil.Sanitize(r.CDIAnnualPercent) / constants.PercentageMultiplier
		return percentOfCDI * cdi
	case KindIPCAPlus:
		ipca := mathutil.Sanitize(r.IPCAAnnualPercent) / constants.PercentageMultiplier
		spread := mathutil.Sanitize(r.SpreadPercent) / constants.PercentageMultiplier
		// Multiplicative composition; adding the two understates the rate.
		return (1+ipca)*(1+spread) - 1
	default:
		flat := mathutil.Sanitize(r.Percent) / constants.PercentageMultiplier
		if r.Period == PeriodMonthly {
			return math.Pow(1+flat, constants.MonthsPerYear) - 1
		}
		return flat
	}
}

// Monthly returns the effective monthly compounding rate as a decimal
// fraction. A zero nominal rate yields exactly 0.
func (r NominalRate) Monthly() float64 {
	if r.Kind == KindFlat && r.Period == PeriodMonthly {
		return mathutil.Sanitize(r.Percent) / constants.PercentageMultiplier
	}
	return MonthlyFromAnnual(r.EffectiveAnnual())
}
