package core

import (
	"math"
	"testing"
)

func TestMagAnglesRadialField(t *testing.T) {
	alpha, phi := MagAngles([]float64{1}, []float64{1}, []float64{0}, []float64{0})
	if math.Abs(alpha[0]) > 1e-12 {
		t.Fatalf("alpha = %v, want 0", alpha[0])
	}
	if math.Abs(phi[0]) > 1e-12 {
		t.Fatalf("phi = %v, want 0", phi[0])
	}
}

func TestMagAnglesNormalField(t *testing.T) {
	// Field along +N: theta = 0, so alpha = +90.
	alpha, _ := MagAngles([]float64{1}, []float64{0}, []float64{0}, []float64{1})
	if math.Abs(alpha[0]-90) > 1e-12 {
		t.Fatalf("alpha = %v, want 90", alpha[0])
	}
}

func TestMagAnglesZeroField(t *testing.T) {
	// Br = Bt = Bn = B = 0: alpha is NaN (0/0 inside the arccos) while the
	// zero-field override still forces phi to 0.
	alpha, phi := MagAngles([]float64{0}, []float64{0}, []float64{0}, []float64{0})
	if !math.IsNaN(alpha[0]) {
		t.Fatalf("alpha = %v, want NaN", alpha[0])
	}
	if phi[0] != 0 {
		t.Fatalf("phi = %v, want 0", phi[0])
	}
}

func TestMagAnglesNegativeBtBranch(t *testing.T) {
	// The Bt < 0 branch subtracts the degree-valued phi from 2π radians.
	// The mixed units are inherited behaviour; this pins the exact number
	// so nobody "fixes" it to a 360-degree wrap without noticing.
	alpha, phi := MagAngles([]float64{1}, []float64{0}, []float64{-1}, []float64{0})
	if math.Abs(alpha[0]) > 1e-12 {
		t.Fatalf("alpha = %v, want 0", alpha[0])
	}
	want := 2*math.Pi - 90 // ≈ -83.7168
	if math.Abs(phi[0]-want) > 1e-12 {
		t.Fatalf("phi = %v, want %v", phi[0], want)
	}
}

func TestMagAnglesOutputAlignment(t *testing.T) {
	b := []float64{1, 2, 3}
	alpha, phi := MagAngles(b, b, b, b)
	if len(alpha) != len(b) || len(phi) != len(b) {
		t.Fatalf("output lengths = %d, %d, want %d", len(alpha), len(phi), len(b))
	}

	alpha2, phi2 := MagAngles(b, b, b, b)
	for i := range alpha {
		if math.Float64bits(alpha[i]) != math.Float64bits(alpha2[i]) ||
			math.Float64bits(phi[i]) != math.Float64bits(phi2[i]) {
			t.Fatalf("sample %d differs between identical calls", i)
		}
	}
}
