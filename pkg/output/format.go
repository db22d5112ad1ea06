// Package output provides utilities for formatting and displaying
// simulation results.
package output

import (
	"fmt"

	"github.com/brfinance/finsim/internal/simulation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []*simulation.Result) {
	p := message.NewPrinter(language.BrazilianPortuguese)
	for i, result := range results {
		fmt.Printf("--- Results for simulation %s (%s) ---\n", result.Name, result.Kind)
		fmt.Printf("Period | Date    | Payment      | Principal    | Interest     | Fee        | Extra        | Balance\n")
		fmt.Printf("______ | ____    | _______      | _________    | ________     | ___        | _____        | _______\n")
		for _, row := range result.Rows {
			date := row.Date
			if date == "" {
				date = "-"
			}
			_, _ = p.Printf("%6d | %-7s | R$ %9.2f | R$ %9.2f | R$ %9.2f | R$ %7.2f | R$ %9.2f | R$ %11.2f\n",
				row.Period, date, row.Payment, row.Principal, row.Interest, row.Fee, row.Extra, row.Balance)
		}

		summary := result.Summary
		fmt.Printf("\n")
		_, _ = p.Printf("Total paid:        R$ %.2f\n", summary.TotalPaid)
		_, _ = p.Printf("Total interest:    R$ %.2f\n", summary.TotalInterest)
		_, _ = p.Printf("Periods executed:  %d\n", summary.PeriodsExecuted)
		if result.Kind == simulation.KindInvestment {
			_, _ = p.Printf("Total contributed: R$ %.2f\n", summary.TotalContributed)
			_, _ = p.Printf("Gross yield:       R$ %.2f\n", summary.GrossYield)
			if summary.TaxExempt {
				fmt.Printf("Withheld tax:      exempt\n")
			} else {
				_, _ = p.Printf("Withheld tax:      R$ %.2f\n", summary.WithheldTax)
			}
		}
		_, _ = p.Printf("Net final balance: R$ %.2f\n", summary.NetFinalBalance)

		if len(result.YearBuckets) > 0 {
			fmt.Printf("\nPer-year totals:\n")
			for _, bucket := range result.YearBuckets {
				_, _ = p.Printf("  %s: interest R$ %.2f, principal R$ %.2f\n",
					bucket.Year, bucket.Interest, bucket.Principal)
			}
		}

		if i < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format, one block per
// simulation.
func CsvFormat(results []*simulation.Result) {
	for _, result := range results {
		fmt.Printf(`"simulation","period","date","payment","principal","interest","fee","extra","balance"`)
		fmt.Printf("\n")
		for _, row := range result.Rows {
			fmt.Printf(`"%s","%d","%s","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
				result.Name, row.Period, row.Date, row.Payment, row.Principal,
				row.Interest, row.Fee, row.Extra, row.Balance)
			fmt.Printf("\n")
		}
	}
}
