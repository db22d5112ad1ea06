// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/brfinance/finsim/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthIndex returns the 1-based period index of a date relative to a start
// date, where the start date's own year-month is period 1. Dates before the
// start yield indexes below 1.
func MonthIndex(startDate, date string) (int, error) {
	startT, err := time.Parse(DateTimeLayout, startDate)
	if err != nil {
		return 0, err
	}
	dateT, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return 0, err
	}
	return (dateT.Year()-startT.Year())*constants.MonthsPerYear +
		int(dateT.Month()) - int(startT.Month()) + 1, nil
}

// YearOf extracts the calendar year from a year-month date string.
func YearOf(date string) (int, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// DaysBetween returns the number of calendar days between two year-month
// dates, counted from the first day of each month.
func DaysBetween(firstDate, secondDate string) (int, error) {
	firstT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return 0, err
	}
	secondT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return 0, err
	}
	return int(secondT.Sub(firstT).Hours() / 24), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
