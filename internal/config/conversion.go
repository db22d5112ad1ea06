// Package config conversion utilities from configuration objects to engine
// parameters.
package config

import (
	"fmt"

	"github.com/brfinance/finsim/internal/simulation"
	"github.com/brfinance/finsim/pkg/accumulation"
	"github.com/brfinance/finsim/pkg/amortization"
	"github.com/brfinance/finsim/pkg/datetime"
	"github.com/brfinance/finsim/pkg/rates"
	"github.com/brfinance/finsim/pkg/schedule"
	"github.com/brfinance/finsim/pkg/tax"
)

// ToNominalRate converts a RateConfig into the engine's rate representation.
func (r RateConfig) ToNominalRate() rates.NominalRate {
	nominal := rates.NominalRate{
		Percent:           r.Percent,
		PercentOfCDI:      r.PercentOfCDI,
		CDIAnnualPercent:  r.CDIAnnual,
		IPCAAnnualPercent: r.IPCAAnnual,
		SpreadPercent:     r.Spread,
	}

	switch r.Kind {
	case "cdi":
		nominal.Kind = rates.KindCDILinked
	case "ipca":
		nominal.Kind = rates.KindIPCAPlus
	default:
		nominal.Kind = rates.KindFlat
	}

	if r.Period == "monthly" {
		nominal.Period = rates.PeriodMonthly
	} else {
		nominal.Period = rates.PeriodAnnual
	}

	return nominal
}

// ToParameters converts a configured simulation into engine parameters. Extra
// payments scheduled by calendar date are resolved to 1-based period indexes
// relative to the start date; dates before the start month are rejected. The
// correction series is the caller's already-resolved lookup (nil when the
// fetch failed or no correction applies).
func (sim *Simulation) ToParameters(correction schedule.IndexSeries) (simulation.Parameters, error) {
	params := simulation.Parameters{
		Name:       sim.Name,
		TermMonths: sim.TermMonths,
		StartDate:  sim.StartDate,
		Rate:       sim.Rate.ToNominalRate(),

		Principal:    sim.Principal,
		PeriodicFee:  sim.PeriodicFee,
		MonthlyExtra: sim.MonthlyExtra,
		Correction:   correction,

		InitialContribution: sim.InitialContribution,
		MonthlyContribution: sim.MonthlyContribution,
		ContributionTiming:  accumulation.ContributionTiming(sim.ContributionTiming),
		ProductType:         tax.ProductType(sim.ProductType),
		IOFEnabled:          sim.IOF.Enabled,
		IOFCurve:            simulation.IOFCurveKind(sim.IOF.Curve),
		IOFFactor:           sim.IOF.Factor,
		FirstPeriodDays:     sim.IOF.FirstPeriodDays,
	}

	switch sim.Kind {
	case "investment":
		params.Kind = simulation.KindInvestment
	case "loan", "":
		params.Kind = simulation.KindLoan
	default:
		return params, fmt.Errorf("simulation %q: unknown kind %q", sim.Name, sim.Kind)
	}

	switch sim.Method {
	case "sac":
		params.Method = amortization.MethodSAC
	case "price", "":
		params.Method = amortization.MethodPrice
	default:
		return params, fmt.Errorf("simulation %q: unknown method %q", sim.Name, sim.Method)
	}

	for _, extra := range sim.ExtraPayments {
		period := extra.Period
		if extra.Date != "" {
			if sim.StartDate == "" {
				return params, fmt.Errorf("simulation %q: extra payment dated %s requires a startDate",
					sim.Name, extra.Date)
			}
			index, err := datetime.MonthIndex(sim.StartDate, extra.Date)
			if err != nil {
				return params, fmt.Errorf("simulation %q: invalid extra payment date: %w", sim.Name, err)
			}
			period = index
		}
		if period < 1 {
			return params, fmt.Errorf("simulation %q: extra payment falls before the start month", sim.Name)
		}
		params.Extras = append(params.Extras, simulation.ExtraordinaryPayment{
			Period: period,
			Amount: extra.Amount,
		})
	}

	return params, nil
}
