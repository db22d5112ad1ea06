// Package schedule defines the period-row and summary types shared by the
// simulation engines, plus aggregation over generated rows.
package schedule

import (
	"sort"
	"strconv"

	"github.com/brfinance/finsim/pkg/datetime"
	"github.com/brfinance/finsim/pkg/mathutil"
)

// NoDateBucket is the year-bucket key used for rows without a derived date.
const NoDateBucket = "no-date"

// PeriodRow holds the values for a single simulated period. For loans,
// Payment is the installment (including fees), Principal the amortized
// portion and Balance the outstanding debt. For investments, Payment is the
// periodic contribution, Principal the period's deposited amount (the
// initial contribution lands in period 1), Interest the credited yield and
// Balance the accumulated value.
type PeriodRow struct {
	Period    int     `json:"period"`
	Date      string  `json:"date,omitempty"` // YYYY-MM, empty without a start date
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Fee       float64 `json:"fee"`
	Extra     float64 `json:"extra"`
	Balance   float64 `json:"balance"`
}

// Summary aggregates a generated schedule. The row-derived fields are filled
// by Summarize; the tax-related fields are filled by the simulation layer
// after the terminal withholding step.
type Summary struct {
	TotalPaid        float64 `json:"totalPaid"`
	TotalInterest    float64 `json:"totalInterest"`
	TotalFees        float64 `json:"totalFees"`
	TotalExtra       float64 `json:"totalExtra"`
	PeriodsExecuted  int     `json:"periodsExecuted"`
	FinalBalance     float64 `json:"finalBalance"`
	TotalContributed float64 `json:"totalContributed,omitempty"`
	GrossYield       float64 `json:"grossYield,omitempty"`
	WithheldTax      float64 `json:"withheldTax"`
	TaxExempt        bool    `json:"taxExempt,omitempty"`
	NetFinalBalance  float64 `json:"netFinalBalance"`
}

// IndexSeries maps a calendar year-month (YYYY-MM) to a monetary-correction
// fraction for that month, e.g. 0.0012 for 0.12%.
type IndexSeries map[string]float64

// Fraction returns the correction fraction for a year-month. A nil series or
// a missing month yields (0, false), which callers treat as no correction.
func (s IndexSeries) Fraction(yearMonth string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	f, ok := s[yearMonth]
	return f, ok
}

// Summarize rolls rows into totals. Values are accumulated raw and each
// total is rounded to cents once at the end.
func Summarize(rows []PeriodRow) Summary {
	var summary Summary
	var paid, interest, fees, extra float64
	for _, row := range rows {
		paid += row.Payment + row.Extra
		interest += row.Interest
		fees += row.Fee
		extra += row.Extra
	}
	summary.TotalPaid = mathutil.Round(paid)
	summary.TotalInterest = mathutil.Round(interest)
	summary.TotalFees = mathutil.Round(fees)
	summary.TotalExtra = mathutil.Round(extra)
	summary.PeriodsExecuted = len(rows)
	if len(rows) > 0 {
		summary.FinalBalance = rows[len(rows)-1].Balance
	}
	return summary
}

// YearBucket holds per-calendar-year sums for reporting: interest paid or
// earned, and principal amortized plus extras (for loans) or contributions
// (for investments).
type YearBucket struct {
	Year      string  `json:"year"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
}

// BucketByYear groups rows by the calendar year of their derived date. Rows
// without dates fall into the NoDateBucket sentinel. Buckets are returned in
// ascending year order with the sentinel, if present, last.
func BucketByYear(rows []PeriodRow) []YearBucket {
	sums := make(map[string]*YearBucket)
	for _, row := range rows {
		key := NoDateBucket
		if row.Date != "" {
			if year, err := datetime.YearOf(row.Date); err == nil {
				key = strconv.Itoa(year)
			}
		}
		bucket, ok := sums[key]
		if !ok {
			bucket = &YearBucket{Year: key}
			sums[key] = bucket
		}
		bucket.Interest += row.Interest
		bucket.Principal += row.Principal + row.Extra
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		if key == NoDateBucket {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if _, ok := sums[NoDateBucket]; ok {
		keys = append(keys, NoDateBucket)
	}

	buckets := make([]YearBucket, 0, len(keys))
	for _, key := range keys {
		bucket := sums[key]
		bucket.Interest = mathutil.Round(bucket.Interest)
		bucket.Principal = mathutil.Round(bucket.Principal)
		buckets = append(buckets, *bucket)
	}
	return buckets
}
