package simulation

import (
	"math"
	"testing"

	"github.com/brfinance/finsim/pkg/accumulation"
	"github.com/brfinance/finsim/pkg/amortization"
	"github.com/brfinance/finsim/pkg/rates"
	"github.com/brfinance/finsim/pkg/schedule"
	"github.com/brfinance/finsim/pkg/tax"
)

func TestRunLoanPrice(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:       "financiamento",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodAnnual, Percent: 12},
		TermMonths: 12,
		Principal:  100000,
		Method:     amortization.MethodPrice,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Summary.PeriodsExecuted != 12 {
		t.Errorf("PeriodsExecuted = %d, expected 12", result.Summary.PeriodsExecuted)
	}
	if math.Abs(result.Summary.FinalBalance) > 0.01 {
		t.Errorf("FinalBalance = %.2f, expected 0.00", result.Summary.FinalBalance)
	}
	if result.Summary.TotalInterest <= 0 {
		t.Errorf("TotalInterest = %.2f, expected positive", result.Summary.TotalInterest)
	}
	// Loans carry no withholding.
	if result.Summary.WithheldTax != 0 {
		t.Errorf("WithheldTax = %.2f, expected 0", result.Summary.WithheldTax)
	}
	// All paid amounts equal principal plus interest for a fee-free loan.
	expectedPaid := 100000 + result.Summary.TotalInterest
	if math.Abs(result.Summary.TotalPaid-expectedPaid) > 0.10 {
		t.Errorf("TotalPaid = %.2f, expected about %.2f", result.Summary.TotalPaid, expectedPaid)
	}
}

func TestRunLoanDefaultsToPriceMethod(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:       "default-method",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths: 12,
		Principal:  12000,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Price keeps principal+interest constant across periods.
	first := result.Rows[0].Principal + result.Rows[0].Interest
	mid := result.Rows[5].Principal + result.Rows[5].Interest
	if math.Abs(first-mid) > 0.01 {
		t.Errorf("installments %.2f and %.2f differ; default method should be Price", first, mid)
	}
}

func TestRunLoanWithExtrasEndsEarly(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:       "quitacao",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths: 60,
		Principal:  50000,
		Method:     amortization.MethodSAC,
		Extras:     []ExtraordinaryPayment{{Period: 3, Amount: 45000}},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Summary.PeriodsExecuted >= 60 {
		t.Errorf("PeriodsExecuted = %d, expected early payoff", result.Summary.PeriodsExecuted)
	}
}

func TestRunLoanYearBuckets(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:       "casa",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths: 14,
		Principal:  14000,
		Method:     amortization.MethodSAC,
		StartDate:  "2026-11",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// 2026 (2 rows), 2027 (12 rows).
	if len(result.YearBuckets) != 2 {
		t.Fatalf("expected 2 year buckets, got %d", len(result.YearBuckets))
	}
	if result.YearBuckets[0].Year != "2026" || result.YearBuckets[1].Year != "2027" {
		t.Errorf("bucket years %q, %q; expected 2026, 2027",
			result.YearBuckets[0].Year, result.YearBuckets[1].Year)
	}
}

func TestRunInvestmentTaxable(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:                "cdb",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          3,
		InitialContribution: 10000,
		ProductType:         tax.ProductCDB,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	summary := result.Summary
	if math.Abs(summary.FinalBalance-10303.01) > 0.001 {
		t.Errorf("FinalBalance = %.2f, expected 10303.01", summary.FinalBalance)
	}
	if math.Abs(summary.GrossYield-303.01) > 0.001 {
		t.Errorf("GrossYield = %.2f, expected 303.01", summary.GrossYield)
	}
	if math.Abs(summary.TotalContributed-10000.00) > 0.001 {
		t.Errorf("TotalContributed = %.2f, expected 10000.00", summary.TotalContributed)
	}

	// 3 periods = 90 days, first bracket.
	expectedTax := 68.18 // round(303.01 * 0.225)
	if math.Abs(summary.WithheldTax-expectedTax) > 0.001 {
		t.Errorf("WithheldTax = %.2f, expected %.2f", summary.WithheldTax, expectedTax)
	}
	if math.Abs(summary.NetFinalBalance-(summary.FinalBalance-expectedTax)) > 0.001 {
		t.Errorf("NetFinalBalance = %.2f, expected %.2f",
			summary.NetFinalBalance, summary.FinalBalance-expectedTax)
	}
}

func TestRunInvestmentExemptProduct(t *testing.T) {
	for _, product := range []tax.ProductType{tax.ProductLCI, tax.ProductLCA} {
		result, err := Run(nil, Parameters{
			Name:                "isento",
			Kind:                KindInvestment,
			Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodAnnual, Percent: 14},
			TermMonths:          48,
			InitialContribution: 250000,
			MonthlyContribution: 2000,
			ProductType:         product,
		})
		if err != nil {
			t.Fatalf("Run(%s) error: %v", product, err)
		}

		if result.Summary.WithheldTax != 0 {
			t.Errorf("%s: WithheldTax = %.2f, expected exactly 0", product, result.Summary.WithheldTax)
		}
		if !result.Summary.TaxExempt {
			t.Errorf("%s: TaxExempt = false, expected true", product)
		}
		if result.Summary.NetFinalBalance != result.Summary.FinalBalance {
			t.Errorf("%s: net %.2f differs from gross %.2f", product,
				result.Summary.NetFinalBalance, result.Summary.FinalBalance)
		}
	}
}

func TestRunInvestmentYearBuckets(t *testing.T) {
	result, err := Run(nil, Parameters{
		Name:                "aportes",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          12,
		InitialContribution: 5000,
		MonthlyContribution: 1000,
		StartDate:           "2026-01",
		Extras:              []ExtraordinaryPayment{{Period: 6, Amount: 2000}},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.YearBuckets) != 1 {
		t.Fatalf("expected 1 year bucket, got %d", len(result.YearBuckets))
	}
	bucket := result.YearBuckets[0]
	if bucket.Year != "2026" {
		t.Errorf("bucket year %q, expected 2026", bucket.Year)
	}
	// Initial 5000 + 12 monthly deposits + 2000 one-off.
	if math.Abs(bucket.Principal-19000.00) > 0.001 {
		t.Errorf("2026 contribution bucket = %.2f, expected 19000.00", bucket.Principal)
	}
	if bucket.Interest <= 0 {
		t.Errorf("2026 interest bucket = %.2f, expected positive", bucket.Interest)
	}
}

func TestRunInvestmentWithIOF(t *testing.T) {
	withFriction, err := Run(nil, Parameters{
		Name:                "resgate-cedo",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          2,
		InitialContribution: 10000,
		ProductType:         tax.ProductCDB,
		IOFEnabled:          true,
		IOFCurve:            IOFCurveFixed,
		IOFFactor:           0.30,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	without, err := Run(nil, Parameters{
		Name:                "resgate-tarde",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          2,
		InitialContribution: 10000,
		ProductType:         tax.ProductCDB,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if withFriction.Summary.GrossYield >= without.Summary.GrossYield {
		t.Errorf("friction yield %.2f should be below frictionless %.2f",
			withFriction.Summary.GrossYield, without.Summary.GrossYield)
	}

	// Linear decay with no elapsed-day hint treats the first period as fully
	// elapsed; the yield must match the frictionless run, not be wiped out.
	decayed, err := Run(nil, Parameters{
		Name:                "decaimento-padrao",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          2,
		InitialContribution: 10000,
		ProductType:         tax.ProductCDB,
		IOFEnabled:          true,
		IOFCurve:            IOFCurveLinearDecay,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if math.Abs(decayed.Summary.GrossYield-without.Summary.GrossYield) > 0.001 {
		t.Errorf("defaulted decay yield %.2f, expected frictionless %.2f",
			decayed.Summary.GrossYield, without.Summary.GrossYield)
	}
}

func TestRunInvestmentContributionTiming(t *testing.T) {
	start, err := Run(nil, Parameters{
		Name:                "inicio",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          12,
		MonthlyContribution: 1000,
		ContributionTiming:  accumulation.TimingStart,
	})
	if err != nil {
		t.Fatalf("Run(start) error: %v", err)
	}

	end, err := Run(nil, Parameters{
		Name:                "fim",
		Kind:                KindInvestment,
		Rate:                rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths:          12,
		MonthlyContribution: 1000,
		ContributionTiming:  accumulation.TimingEnd,
	})
	if err != nil {
		t.Fatalf("Run(end) error: %v", err)
	}

	// Start timing earns one extra period of interest on each contribution.
	if start.Summary.GrossYield <= end.Summary.GrossYield {
		t.Errorf("start-timing yield %.2f should exceed end-timing %.2f",
			start.Summary.GrossYield, end.Summary.GrossYield)
	}
}

func TestRunLoanWithCorrection(t *testing.T) {
	series := schedule.IndexSeries{"2026-01": 0.002, "2026-02": 0.002}

	corrected, err := Run(nil, Parameters{
		Name:       "tr-corrigido",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 0.8},
		TermMonths: 12,
		Principal:  100000,
		Method:     amortization.MethodSAC,
		StartDate:  "2026-01",
		Correction: series,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	plain, err := Run(nil, Parameters{
		Name:       "sem-correcao",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 0.8},
		TermMonths: 12,
		Principal:  100000,
		Method:     amortization.MethodSAC,
		StartDate:  "2026-01",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if corrected.Summary.TotalInterest <= plain.Summary.TotalInterest {
		t.Errorf("corrected interest %.2f should exceed uncorrected %.2f",
			corrected.Summary.TotalInterest, plain.Summary.TotalInterest)
	}
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
	}{
		{
			name:   "Zero term",
			params: Parameters{Name: "bad", Kind: KindLoan, TermMonths: 0, Principal: 1000},
		},
		{
			name:   "Negative principal",
			params: Parameters{Name: "bad", Kind: KindLoan, TermMonths: 12, Principal: -1},
		},
		{
			name:   "Negative initial contribution",
			params: Parameters{Name: "bad", Kind: KindInvestment, TermMonths: 12, InitialContribution: -1},
		},
		{
			name:   "Unknown kind",
			params: Parameters{Name: "bad", Kind: "savings", TermMonths: 12},
		},
		{
			name: "Extra before period 1",
			params: Parameters{
				Name: "bad", Kind: KindLoan, TermMonths: 12, Principal: 1000,
				Extras: []ExtraordinaryPayment{{Period: 0, Amount: 100}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(nil, tt.params); err == nil {
				t.Errorf("Run() accepted invalid parameters")
			}
		})
	}
}

func TestRunIsReentrant(t *testing.T) {
	params := Parameters{
		Name:       "repetido",
		Kind:       KindLoan,
		Rate:       rates.NominalRate{Kind: rates.KindFlat, Period: rates.PeriodMonthly, Percent: 1},
		TermMonths: 24,
		Principal:  30000,
		Method:     amortization.MethodPrice,
	}

	first, err := Run(nil, params)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	second, err := Run(nil, params)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if first.Summary != second.Summary {
		t.Errorf("repeated runs diverge: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestWarnings(t *testing.T) {
	warnings := Warnings(Parameters{
		Name:       "sem-taxa",
		Kind:       KindLoan,
		TermMonths: 12,
		Principal:  1000,
	})
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning for zero rate, got %d", len(warnings))
	}
}
