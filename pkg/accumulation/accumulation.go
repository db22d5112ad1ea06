// Package accumulation simulates investment growth with periodic
// contributions, compounding interest and optional early-redemption friction
// on the first period's yield.
package accumulation

import (
	"fmt"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/datetime"
	"github.com/brfinance/finsim/pkg/mathutil"
	"github.com/brfinance/finsim/pkg/schedule"
	"github.com/brfinance/finsim/pkg/tax"
	"go.uber.org/zap"
)

// ContributionTiming selects whether the periodic contribution is credited
// before or after the period's interest. The whole run uses one timing; the
// two are never mixed.
type ContributionTiming string

const (
	// TimingStart credits the contribution at the start of the period, so it
	// earns that period's interest. This is the default.
	TimingStart ContributionTiming = "start"

	// TimingEnd credits the contribution after interest, so it starts
	// earning only in the following period.
	TimingEnd ContributionTiming = "end"
)

// ExtraContribution is a one-off extra deposit scheduled for a specific
// 1-based period index.
type ExtraContribution struct {
	Period int
	Amount float64
}

// Params carries everything the processor needs for one accumulation run.
// MonthlyRate is a decimal fraction. IOF, when non-nil, is applied to the
// first period's interest only; FirstPeriodDays is the elapsed-day argument
// handed to day-sensitive curves and is ignored by fixed-factor curves.
// Zero or negative FirstPeriodDays means a full 30-day first period.
type Params struct {
	InitialContribution float64
	MonthlyRate         float64
	TermMonths          int
	MonthlyContribution float64
	Timing              ContributionTiming
	Extras              []ExtraContribution
	IOF                 tax.IOFCurve
	FirstPeriodDays     int
	StartDate           string
}

// Processor produces accumulation schedules.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a processor instance.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// Generate simulates the investment period by period. Unlike a loan there is
// no early termination: exactly TermMonths rows are produced and there is no
// balance cap. Interest on each row is net of any first-period friction.
func (p *Processor) Generate(params Params) ([]schedule.PeriodRow, error) {
	if params.TermMonths <= 0 {
		return nil, fmt.Errorf("term must be positive, got %d", params.TermMonths)
	}
	if params.InitialContribution < 0 {
		return nil, fmt.Errorf("initial contribution must be non-negative, got %.2f", params.InitialContribution)
	}

	timing := params.Timing
	if timing == "" {
		timing = TimingStart
	}
	if timing != TimingStart && timing != TimingEnd {
		return nil, fmt.Errorf("unknown contribution timing %q", timing)
	}

	monthlyRate := mathutil.Sanitize(params.MonthlyRate)
	contribution := mathutil.Sanitize(params.MonthlyContribution)

	oneOffs := make(map[int]float64, len(params.Extras))
	for _, extra := range params.Extras {
		oneOffs[extra.Period] += mathutil.Sanitize(extra.Amount)
	}

	rows := make([]schedule.PeriodRow, 0, params.TermMonths)
	balance := mathutil.Round(params.InitialContribution)

	for period := 1; period <= params.TermMonths; period++ {
		var date string
		if params.StartDate != "" {
			var err error
			date, err = datetime.OffsetDate(params.StartDate, datetime.DateTimeLayout, period-1)
			if err != nil {
				return nil, fmt.Errorf("invalid start date %q: %w", params.StartDate, err)
			}
		}

		deposit := contribution + oneOffs[period]
		if timing == TimingStart {
			balance = mathutil.Round(balance + deposit)
		}

		interest := mathutil.Round(balance * monthlyRate)
		balance = mathutil.Round(balance + interest)

		if params.IOF != nil && period == 1 {
			firstPeriodDays := params.FirstPeriodDays
			if firstPeriodDays <= 0 {
				firstPeriodDays = constants.DaysPerPeriod
			}
			factor := params.IOF(firstPeriodDays)
			penalty := mathutil.Round(interest * factor)
			if penalty > 0 {
				interest = mathutil.Round(interest - penalty)
				balance = mathutil.Round(balance - penalty)
				p.logger.Debug(fmt.Sprintf("period 1: IOF friction %.2f at factor %.2f", penalty, factor),
					zap.String("op", "accumulation.Generate"),
				)
			}
		}

		if timing == TimingEnd {
			balance = mathutil.Round(balance + deposit)
		}

		// Principal carries the period's contributed amount (the initial
		// contribution counts toward period 1) so that per-year aggregation
		// sees contributions the way it sees amortized principal on loans.
		principal := contribution
		if period == 1 {
			principal += params.InitialContribution
		}

		rows = append(rows, schedule.PeriodRow{
			Period:    period,
			Date:      date,
			Payment:   mathutil.Round(contribution),
			Principal: mathutil.Round(principal),
			Interest:  interest,
			Extra:     mathutil.Round(oneOffs[period]),
			Balance:   balance,
		})
	}

	return rows, nil
}

// GrossYield sums the post-friction interest across rows, rounded once.
func GrossYield(rows []schedule.PeriodRow) float64 {
	var yield float64
	for _, row := range rows {
		yield += row.Interest
	}
	return mathutil.Round(yield)
}

// ElapsedDaysForTerm resolves the holding period in days: exact calendar
// days when a start date is available, the 30-day approximation otherwise.
func ElapsedDaysForTerm(startDate string, periods int) int {
	if startDate != "" {
		endDate, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, periods)
		if err == nil {
			if days, err := datetime.DaysBetween(startDate, endDate); err == nil {
				return days
			}
		}
	}
	return periods * constants.DaysPerPeriod
}
