package schedule

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	rows := []PeriodRow{
		{Period: 1, Payment: 1000.00, Principal: 900.00, Interest: 100.00, Fee: 10.00, Extra: 500.00, Balance: 8600.00},
		{Period: 2, Payment: 1000.00, Principal: 910.00, Interest: 90.00, Fee: 10.00, Extra: 0, Balance: 7690.00},
		{Period: 3, Payment: 1000.00, Principal: 920.00, Interest: 80.00, Fee: 10.00, Extra: 0, Balance: 6770.00},
	}

	summary := Summarize(rows)

	if math.Abs(summary.TotalPaid-3500.00) > 0.001 {
		t.Errorf("TotalPaid = %.2f, expected 3500.00", summary.TotalPaid)
	}
	if math.Abs(summary.TotalInterest-270.00) > 0.001 {
		t.Errorf("TotalInterest = %.2f, expected 270.00", summary.TotalInterest)
	}
	if math.Abs(summary.TotalFees-30.00) > 0.001 {
		t.Errorf("TotalFees = %.2f, expected 30.00", summary.TotalFees)
	}
	if math.Abs(summary.TotalExtra-500.00) > 0.001 {
		t.Errorf("TotalExtra = %.2f, expected 500.00", summary.TotalExtra)
	}
	if summary.PeriodsExecuted != 3 {
		t.Errorf("PeriodsExecuted = %d, expected 3", summary.PeriodsExecuted)
	}
	if math.Abs(summary.FinalBalance-6770.00) > 0.001 {
		t.Errorf("FinalBalance = %.2f, expected 6770.00", summary.FinalBalance)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.PeriodsExecuted != 0 || summary.TotalPaid != 0 || summary.FinalBalance != 0 {
		t.Errorf("Summarize(nil) = %+v, expected zero values", summary)
	}
}

func TestSummarizeRoundsTotalsOnce(t *testing.T) {
	// Three thirds of a cent only round away when accumulated raw first.
	rows := []PeriodRow{
		{Period: 1, Interest: 0.333},
		{Period: 2, Interest: 0.333},
		{Period: 3, Interest: 0.334},
	}

	summary := Summarize(rows)
	if math.Abs(summary.TotalInterest-1.00) > 0.0001 {
		t.Errorf("TotalInterest = %.4f, expected 1.00", summary.TotalInterest)
	}
}

func TestBucketByYear(t *testing.T) {
	rows := []PeriodRow{
		{Period: 1, Date: "2026-11", Interest: 100, Principal: 900},
		{Period: 2, Date: "2026-12", Interest: 90, Principal: 910},
		{Period: 3, Date: "2027-01", Interest: 80, Principal: 920, Extra: 500},
	}

	buckets := BucketByYear(rows)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	if buckets[0].Year != "2026" {
		t.Errorf("first bucket year %q, expected 2026", buckets[0].Year)
	}
	if math.Abs(buckets[0].Interest-190.00) > 0.001 {
		t.Errorf("2026 interest %.2f, expected 190.00", buckets[0].Interest)
	}
	if math.Abs(buckets[0].Principal-1810.00) > 0.001 {
		t.Errorf("2026 principal %.2f, expected 1810.00", buckets[0].Principal)
	}

	// Extras count toward the principal bucket.
	if math.Abs(buckets[1].Principal-1420.00) > 0.001 {
		t.Errorf("2027 principal %.2f, expected 1420.00", buckets[1].Principal)
	}
}

func TestBucketByYearWithoutDates(t *testing.T) {
	rows := []PeriodRow{
		{Period: 1, Interest: 10, Principal: 100},
		{Period: 2, Interest: 9, Principal: 101},
	}

	buckets := BucketByYear(rows)
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Year != NoDateBucket {
		t.Errorf("bucket year %q, expected %q", buckets[0].Year, NoDateBucket)
	}
	if math.Abs(buckets[0].Interest-19.00) > 0.001 {
		t.Errorf("interest %.2f, expected 19.00", buckets[0].Interest)
	}
}

func TestBucketByYearSentinelLast(t *testing.T) {
	rows := []PeriodRow{
		{Period: 1, Interest: 1},
		{Period: 2, Date: "2026-01", Interest: 2},
	}

	buckets := BucketByYear(rows)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[len(buckets)-1].Year != NoDateBucket {
		t.Errorf("sentinel bucket should sort last, got order %q, %q", buckets[0].Year, buckets[1].Year)
	}
}

func TestIndexSeriesFraction(t *testing.T) {
	series := IndexSeries{"2026-01": 0.002}

	if fraction, ok := series.Fraction("2026-01"); !ok || fraction != 0.002 {
		t.Errorf("Fraction(2026-01) = %.4f, %v; expected 0.002, true", fraction, ok)
	}
	if _, ok := series.Fraction("2026-02"); ok {
		t.Errorf("Fraction(2026-02) should miss")
	}

	var nilSeries IndexSeries
	if _, ok := nilSeries.Fraction("2026-01"); ok {
		t.Errorf("nil series should never hit")
	}
}
