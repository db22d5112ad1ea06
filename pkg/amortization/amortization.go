// Package amortization simulates loan paydown schedules under the Price
// (fixed installment) and SAC (fixed principal) methods, including recurring
// and one-off extra payments and optional monetary correction of the
// outstanding balance.
package amortization

import (
	"fmt"
	"math"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/datetime"
	"github.com/brfinance/finsim/pkg/mathutil"
	"github.com/brfinance/finsim/pkg/schedule"
	"go.uber.org/zap"
)

// Method selects the amortization system.
type Method string

const (
	// MethodPrice is fixed-installment amortization: constant total payment,
	// varying interest/principal mix.
	MethodPrice Method = "price"

	// MethodSAC is fixed-principal amortization: constant principal portion,
	// declining total payment.
	MethodSAC Method = "sac"
)

// ExtraPayment is a one-off extra amortization scheduled for a specific
// 1-based period index.
type ExtraPayment struct {
	Period int
	Amount float64
}

// Params carries everything the generator needs for one loan schedule.
// MonthlyRate is a decimal fraction. StartDate (YYYY-MM) is optional; without
// it rows carry no dates and the correction series is ignored.
type Params struct {
	Principal    float64
	MonthlyRate  float64
	TermMonths   int
	Method       Method
	Extras       []ExtraPayment
	MonthlyExtra float64
	PeriodicFee  float64
	StartDate    string
	Correction   schedule.IndexSeries
}

// PriceInstallment calculates the fixed monthly installment for a loan using
// the standard annuity formula. A zero rate degenerates to principal divided
// by term.
func PriceInstallment(principal, monthlyRate float64, termMonths int) float64 {
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}
	power := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * power / (power - 1)
}

// Generator produces amortization schedules.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a generator instance.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate simulates the loan period by period and returns one row per
// executed period. The loop stops at the configured term or as soon as the
// balance amortizes to zero, whichever comes first, so early payoff via
// extras yields fewer rows than the term. Every monetary step is rounded to
// cents.
func (g *Generator) Generate(p Params) ([]schedule.PeriodRow, error) {
	if p.TermMonths <= 0 {
		return nil, fmt.Errorf("term must be positive, got %d", p.TermMonths)
	}
	if p.Principal < 0 {
		return nil, fmt.Errorf("principal must be non-negative, got %.2f", p.Principal)
	}
	switch p.Method {
	case MethodPrice, MethodSAC:
	default:
		return nil, fmt.Errorf("unknown amortization method %q", p.Method)
	}

	monthlyRate := mathutil.Sanitize(p.MonthlyRate)
	fee := mathutil.Sanitize(p.PeriodicFee)
	monthlyExtra := mathutil.Sanitize(p.MonthlyExtra)

	var installment, fixedPrincipal float64
	if p.Method == MethodPrice {
		installment = PriceInstallment(p.Principal, monthlyRate, p.TermMonths)
	} else {
		fixedPrincipal = p.Principal / float64(p.TermMonths)
	}

	oneOffs := make(map[int]float64, len(p.Extras))
	for _, extra := range p.Extras {
		oneOffs[extra.Period] += mathutil.Sanitize(extra.Amount)
	}

	rows := make([]schedule.PeriodRow, 0, p.TermMonths)
	balance := mathutil.Round(p.Principal)

	for period := 1; period <= p.TermMonths && balance > constants.PayoffTolerance; period++ {
		var date string
		if p.StartDate != "" {
			var err error
			date, err = datetime.OffsetDate(p.StartDate, datetime.DateTimeLayout, period-1)
			if err != nil {
				return nil, fmt.Errorf("invalid start date %q: %w", p.StartDate, err)
			}
		}

		// Monetary correction applies to the outstanding balance before the
		// period's interest accrues. A month missing from the series is a
		// no-op.
		if date != "" {
			if fraction, ok := p.Correction.Fraction(date); ok && fraction != 0 {
				balance = mathutil.Round(balance * (1 + fraction))
				g.logger.Debug(fmt.Sprintf("%s: corrected balance by %.4f%% to %.2f", date, fraction*100, balance),
					zap.String("op", "amortization.Generate"),
				)
			}
		}

		interest := mathutil.Round(balance * monthlyRate)

		var principalComponent, payment float64
		if p.Method == MethodPrice {
			payment = mathutil.Round(installment + fee)
			principalComponent = mathutil.Round(mathutil.Min(installment-interest, balance))
		} else {
			principalComponent = mathutil.Round(mathutil.Min(fixedPrincipal, balance))
			payment = mathutil.Round(principalComponent + interest + fee)
		}

		// Extras never drive the balance below zero.
		extraTarget := oneOffs[period] + monthlyExtra
		extra := mathutil.Round(mathutil.Min(extraTarget, mathutil.Max(0, balance-principalComponent)))
		if extra > 0 && oneOffs[period] > 0 {
			g.logger.Debug(fmt.Sprintf("period %d: applying extra payment %.2f", period, extra),
				zap.String("op", "amortization.Generate"),
			)
		}

		balance = mathutil.Round(mathutil.Max(0, balance-principalComponent-extra))

		rows = append(rows, schedule.PeriodRow{
			Period:    period,
			Date:      date,
			Payment:   payment,
			Principal: principalComponent,
			Interest:  interest,
			Fee:       fee,
			Extra:     extra,
			Balance:   balance,
		})
	}

	if len(rows) > 0 && rows[len(rows)-1].Period < p.TermMonths {
		g.logger.Debug(fmt.Sprintf("loan paid off early at period %d of %d", rows[len(rows)-1].Period, p.TermMonths),
			zap.String("op", "amortization.Generate"),
		)
	}

	return rows, nil
}
