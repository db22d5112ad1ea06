package tax

import (
	"math"
	"testing"
)

func TestRegressiveRate(t *testing.T) {
	tests := []struct {
		name        string
		elapsedDays int
		expected    float64
	}{
		{name: "First day", elapsedDays: 1, expected: 0.225},
		{name: "Bracket boundary at 180 days", elapsedDays: 180, expected: 0.225},
		{name: "Just past 180 days", elapsedDays: 181, expected: 0.20},
		{name: "Bracket boundary at 360 days", elapsedDays: 360, expected: 0.20},
		{name: "Just past 360 days", elapsedDays: 361, expected: 0.175},
		{name: "Bracket boundary at 720 days", elapsedDays: 720, expected: 0.175},
		{name: "Just past 720 days", elapsedDays: 721, expected: 0.15},
		{name: "Long hold", elapsedDays: 3650, expected: 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := RegressiveRate(tt.elapsedDays); result != tt.expected {
				t.Errorf("RegressiveRate(%d) = %.3f, expected %.3f", tt.elapsedDays, result, tt.expected)
			}
		})
	}
}

func TestIsExempt(t *testing.T) {
	tests := []struct {
		product  ProductType
		expected bool
	}{
		{ProductLCI, true},
		{ProductLCA, true},
		{ProductCDB, false},
		{ProductTesouro, false},
		{ProductPoupanca, false},
	}

	for _, tt := range tests {
		if result := IsExempt(tt.product); result != tt.expected {
			t.Errorf("IsExempt(%s) = %v, expected %v", tt.product, result, tt.expected)
		}
	}
}

func TestWithheld(t *testing.T) {
	tests := []struct {
		name        string
		product     ProductType
		grossYield  float64
		elapsedDays int
		expected    float64
	}{
		{
			name:        "CDB short hold",
			product:     ProductCDB,
			grossYield:  1000,
			elapsedDays: 90,
			expected:    225.00,
		},
		{
			name:        "CDB long hold",
			product:     ProductCDB,
			grossYield:  1000,
			elapsedDays: 900,
			expected:    150.00,
		},
		{
			name:        "Exempt product withholds nothing regardless of yield",
			product:     ProductLCI,
			grossYield:  1000000,
			elapsedDays: 30,
			expected:    0,
		},
		{
			name:        "Negative yield clamps to zero",
			product:     ProductCDB,
			grossYield:  -500,
			elapsedDays: 90,
			expected:    0,
		},
		{
			name:        "Zero yield",
			product:     ProductCDB,
			grossYield:  0,
			elapsedDays: 90,
			expected:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Withheld(tt.product, tt.grossYield, tt.elapsedDays)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Withheld() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestElapsedDays(t *testing.T) {
	if days := ElapsedDays(6); days != 180 {
		t.Errorf("ElapsedDays(6) = %d, expected 180", days)
	}
	if days := ElapsedDays(24); days != 720 {
		t.Errorf("ElapsedDays(24) = %d, expected 720", days)
	}
}

func TestFixedIOFCurve(t *testing.T) {
	curve := FixedIOFCurve(0.5)
	for _, days := range []int{0, 15, 30, 365} {
		if factor := curve(days); factor != 0.5 {
			t.Errorf("FixedIOFCurve(0.5)(%d) = %.2f, expected 0.50", days, factor)
		}
	}

	// Non-positive factor falls back to the default.
	fallback := FixedIOFCurve(0)
	if factor := fallback(0); factor != 0.30 {
		t.Errorf("FixedIOFCurve(0)(0) = %.2f, expected default 0.30", factor)
	}
}

func TestLinearDecayIOFCurve(t *testing.T) {
	curve := LinearDecayIOFCurve()
	tests := []struct {
		days     int
		expected float64
	}{
		{0, 1.0},
		{15, 0.5},
		{30, 0},
		{45, 0},
		{-3, 1.0},
	}

	for _, tt := range tests {
		if factor := curve(tt.days); math.Abs(factor-tt.expected) > 1e-9 {
			t.Errorf("LinearDecayIOFCurve()(%d) = %.3f, expected %.3f", tt.days, factor, tt.expected)
		}
	}
}
