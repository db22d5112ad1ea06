// Package simulation orchestrates a full projection run: parameter
// validation, rate normalization, engine dispatch, terminal tax withholding
// and aggregation. Run is a pure function of its inputs plus the optional
// injected index series; every call is independent and reentrant.
package simulation

import (
	"fmt"

	"github.com/brfinance/finsim/pkg/accumulation"
	"github.com/brfinance/finsim/pkg/amortization"
	"github.com/brfinance/finsim/pkg/mathutil"
	"github.com/brfinance/finsim/pkg/rates"
	"github.com/brfinance/finsim/pkg/schedule"
	"github.com/brfinance/finsim/pkg/tax"
	"github.com/brfinance/finsim/pkg/validation"
	"go.uber.org/zap"
)

// Kind selects which engine a simulation runs.
type Kind string

const (
	// KindLoan simulates amortized debt paydown.
	KindLoan Kind = "loan"

	// KindInvestment simulates compounding accumulation.
	KindInvestment Kind = "investment"
)

// IOFCurveKind names the configurable first-period friction curves.
type IOFCurveKind string

const (
	// IOFCurveFixed applies a single scalar penalty factor.
	IOFCurveFixed IOFCurveKind = "fixed"

	// IOFCurveLinearDecay applies the 30-day linear decay table.
	IOFCurveLinearDecay IOFCurveKind = "linear-decay"
)

// ExtraordinaryPayment is a one-off extra amortization (loan) or deposit
// (investment) at a 1-based period index. Period indexes are derived from
// calendar dates at the configuration boundary; period 1 is the start month.
type ExtraordinaryPayment struct {
	Period int     `json:"period"`
	Amount float64 `json:"amount"`
}

// Parameters is the immutable input for one simulation run. Monetary amounts
// are in base currency units; the nominal rate is quoted in percent and
// normalized internally.
type Parameters struct {
	Name       string            `json:"name"`
	Kind       Kind              `json:"kind"`
	Rate       rates.NominalRate `json:"rate"`
	TermMonths int               `json:"termMonths"`
	StartDate  string            `json:"startDate,omitempty"` // YYYY-MM

	Extras []ExtraordinaryPayment `json:"extras,omitempty"`

	// Loan fields.
	Principal    float64              `json:"principal,omitempty"`
	Method       amortization.Method  `json:"method,omitempty"`
	PeriodicFee  float64              `json:"periodicFee,omitempty"`
	MonthlyExtra float64              `json:"monthlyExtra,omitempty"`
	Correction   schedule.IndexSeries `json:"-"`

	// Investment fields.
	InitialContribution float64                         `json:"initialContribution,omitempty"`
	MonthlyContribution float64                         `json:"monthlyContribution,omitempty"`
	ContributionTiming  accumulation.ContributionTiming `json:"contributionTiming,omitempty"`
	ProductType         tax.ProductType                 `json:"productType,omitempty"`
	IOFEnabled          bool                            `json:"iofEnabled,omitempty"`
	IOFCurve            IOFCurveKind                    `json:"iofCurve,omitempty"`
	IOFFactor           float64                         `json:"iofFactor,omitempty"`
	FirstPeriodDays     int                             `json:"firstPeriodDays,omitempty"`
}

// Result is the full outcome of one run. Rows and summary are fully computed
// before return; nothing mutates afterwards.
type Result struct {
	Name        string                `json:"name"`
	Kind        Kind                  `json:"kind"`
	MonthlyRate float64               `json:"monthlyRate"`
	Rows        []schedule.PeriodRow  `json:"rows"`
	Summary     schedule.Summary      `json:"summary"`
	YearBuckets []schedule.YearBucket `json:"yearBuckets,omitempty"`
}

// Run executes one simulation. The optional correction series must already
// be resolved by the caller; a nil series simply disables correction (an
// index-fetch failure upstream must degrade to nil, never into this
// function).
func Run(logger *zap.Logger, p Parameters) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validation.ValidateTerm(p.TermMonths); err != nil {
		return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
	}
	for _, extra := range p.Extras {
		if err := validation.ValidateExtraPeriod(extra.Period); err != nil {
			return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
		}
	}

	monthlyRate := p.Rate.Monthly()
	logger.Debug(fmt.Sprintf("simulation %s: effective monthly rate %.6f", p.Name, monthlyRate),
		zap.String("op", "simulation.Run"),
	)

	switch p.Kind {
	case KindLoan:
		return runLoan(logger, p, monthlyRate)
	case KindInvestment:
		return runInvestment(logger, p, monthlyRate)
	default:
		return nil, fmt.Errorf("simulation %q: unknown kind %q", p.Name, p.Kind)
	}
}

func runLoan(logger *zap.Logger, p Parameters, monthlyRate float64) (*Result, error) {
	if err := validation.ValidatePrincipal(p.Principal); err != nil {
		return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
	}

	extras := make([]amortization.ExtraPayment, 0, len(p.Extras))
	for _, extra := range p.Extras {
		extras = append(extras, amortization.ExtraPayment{Period: extra.Period, Amount: extra.Amount})
	}

	method := p.Method
	if method == "" {
		method = amortization.MethodPrice
	}

	generator := amortization.NewGenerator(logger)
	rows, err := generator.Generate(amortization.Params{
		Principal:    p.Principal,
		MonthlyRate:  monthlyRate,
		TermMonths:   p.TermMonths,
		Method:       method,
		Extras:       extras,
		MonthlyExtra: p.MonthlyExtra,
		PeriodicFee:  p.PeriodicFee,
		StartDate:    p.StartDate,
		Correction:   p.Correction,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
	}

	summary := schedule.Summarize(rows)
	summary.NetFinalBalance = summary.FinalBalance

	return &Result{
		Name:        p.Name,
		Kind:        KindLoan,
		MonthlyRate: monthlyRate,
		Rows:        rows,
		Summary:     summary,
		YearBuckets: schedule.BucketByYear(rows),
	}, nil
}

func runInvestment(logger *zap.Logger, p Parameters, monthlyRate float64) (*Result, error) {
	if err := validation.ValidatePrincipal(p.InitialContribution); err != nil {
		return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
	}

	extras := make([]accumulation.ExtraContribution, 0, len(p.Extras))
	for _, extra := range p.Extras {
		extras = append(extras, accumulation.ExtraContribution{Period: extra.Period, Amount: extra.Amount})
	}

	var curve tax.IOFCurve
	if p.IOFEnabled {
		switch p.IOFCurve {
		case IOFCurveLinearDecay:
			curve = tax.LinearDecayIOFCurve()
		default:
			curve = tax.FixedIOFCurve(p.IOFFactor)
		}
	}

	processor := accumulation.NewProcessor(logger)
	rows, err := processor.Generate(accumulation.Params{
		InitialContribution: p.InitialContribution,
		MonthlyRate:         monthlyRate,
		TermMonths:          p.TermMonths,
		MonthlyContribution: p.MonthlyContribution,
		Timing:              p.ContributionTiming,
		Extras:              extras,
		IOF:                 curve,
		FirstPeriodDays:     p.FirstPeriodDays,
		StartDate:           p.StartDate,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation %q: %w", p.Name, err)
	}

	summary := schedule.Summarize(rows)
	summary.TotalContributed = mathutil.Round(p.InitialContribution + summary.TotalPaid)
	summary.GrossYield = accumulation.GrossYield(rows)

	elapsedDays := accumulation.ElapsedDaysForTerm(p.StartDate, summary.PeriodsExecuted)
	summary.TaxExempt = tax.IsExempt(p.ProductType)
	summary.WithheldTax = tax.Withheld(p.ProductType, summary.GrossYield, elapsedDays)
	summary.NetFinalBalance = mathutil.Round(summary.FinalBalance - summary.WithheldTax)

	return &Result{
		Name:        p.Name,
		Kind:        KindInvestment,
		MonthlyRate: monthlyRate,
		Rows:        rows,
		Summary:     summary,
		YearBuckets: schedule.BucketByYear(rows),
	}, nil
}

// Warnings returns non-fatal configuration observations for a parameter set,
// in the order found.
func Warnings(p Parameters) []string {
	var warnings []string
	if w := validation.WarnZeroRate(p.Name, p.Rate.Monthly()); w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}
