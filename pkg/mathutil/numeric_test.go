package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.2345, 1.235},
		{"Round down below midpoint", 1.2344, 1.234},
		{"No rounding needed", 1.234, 1.234},
		{"Large number", 12345.6789, 12345.679},
		{"Negative number", -1.2346, -1.235},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.0001, 0.0},
		{"Very small negative", -0.0001, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Below tolerance", 1e-9, true},
		{"Negative below tolerance", -1e-9, true},
		{"Exactly tolerance", 1e-6, true},
		{"Above tolerance", 1e-5, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsZero(tt.input)
			if result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 1.0, 1.0, 0.1, true},
		{"Within tolerance", 1.0, 1.05, 0.1, true},
		{"Outside tolerance", 1.0, 1.15, 0.1, false},
		{"Zero tolerance exact match", 1.0, 1.0, 0.0, true},
		{"Zero tolerance no match", 1.0, 1.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		expected float64
	}{
		{"Below range", -1, 0},
		{"Inside range", 2.5, 2.5},
		{"Above range", 7, 5},
		{"At lower edge", 0, 0},
		{"At upper edge", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.val, 0, 5); got != tt.expected {
				t.Errorf("Clamp(%v, 0, 5) = %v, expected %v", tt.val, got, tt.expected)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Errorf("IsFinite(1.5) = false, expected true")
	}
	if IsFinite(math.NaN()) {
		t.Errorf("IsFinite(NaN) = true, expected false")
	}
	if IsFinite(math.Inf(-1)) {
		t.Errorf("IsFinite(-Inf) = true, expected false")
	}
}

