// Package validation provides precondition checks for simulation input.
// Structural problems (non-positive term, negative principal) are rejected
// with errors before the engines run; softer issues come back as warning
// strings for the caller to surface.
package validation

import (
	"fmt"

	"github.com/brfinance/finsim/pkg/constants"
)

// ValidateTerm rejects non-positive period counts.
func ValidateTerm(termMonths int) error {
	if termMonths <= 0 {
		return fmt.Errorf("termMonths must be positive, got %d", termMonths)
	}
	return nil
}

// ValidatePrincipal rejects negative monetary principal.
func ValidatePrincipal(principal float64) error {
	if principal < 0 {
		return fmt.Errorf("principal must be non-negative, got %.2f", principal)
	}
	return nil
}

// ValidateExtraPeriod rejects extra payments scheduled before period 1,
// i.e. dated before the schedule's start month.
func ValidateExtraPeriod(period int) error {
	if period < 1 {
		return fmt.Errorf("extra payment period must be >= 1, got %d", period)
	}
	return nil
}

// ValidateOutputFormat checks a requested output format name.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	}
	return fmt.Errorf("invalid output format %q (expected %q or %q)",
		format, constants.OutputFormatPretty, constants.OutputFormatCSV)
}

// WarnZeroRate returns a warning when a simulation is configured with a zero
// rate, which is valid but frequently a data-entry mistake.
func WarnZeroRate(name string, monthlyRate float64) string {
	if monthlyRate == 0 {
		return fmt.Sprintf("simulation %q has a zero effective rate", name)
	}
	return ""
}

// WarnCorrectionWithoutStartDate returns a warning when a correction index
// is configured but no start date is set; without calendar dates the series
// cannot be consulted and the correction is skipped.
func WarnCorrectionWithoutStartDate(name, startDate, correctionIndex string) string {
	if correctionIndex != "" && startDate == "" {
		return fmt.Sprintf("simulation %q configures correction index %q but no startDate; correction will be skipped",
			name, correctionIndex)
	}
	return ""
}
