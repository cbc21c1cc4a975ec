package cheby

import (
	"math"
	"testing"
)

func TestEval_Constant(t *testing.T) {
	got := Eval([]float64{5.0}, 0.3)
	if got != 5.0 {
		t.Errorf("constant series: got %f, want 5.0", got)
	}
}

func TestEval_Linear(t *testing.T) {
	// T0(s)=1, T1(s)=s, so coeffs {a,b} evaluate to a + b*s.
	got := Eval([]float64{2.0, 3.0}, 0.5)
	want := 2.0 + 3.0*0.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("linear series at s=0.5: got %f, want %f", got, want)
	}
}

func TestEval_Quadratic(t *testing.T) {
	// T2(s) = 2s^2 - 1, so {a,b,c} evaluates to a + b*s + c*(2s^2-1).
	s := 0.7
	got := Eval([]float64{1.0, 0.0, 4.0}, s)
	want := 1.0 + 4.0*(2*s*s-1)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("quadratic series at s=%.2f: got %f, want %f", s, got, want)
	}
}

func TestEval_BoundaryPoints(t *testing.T) {
	coeffs := []float64{1.0, 2.0, 3.0, 4.0}
	// At s=1, every Chebyshev polynomial T_n(1) = 1, so the sum is just
	// the sum of coefficients.
	got := Eval(coeffs, 1.0)
	want := 1.0 + 2.0 + 3.0 + 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("s=1: got %f, want %f", got, want)
	}
}

func TestEval_EmptyCoeffs(t *testing.T) {
	got := Eval(nil, 0.5)
	if got != 0 {
		t.Errorf("empty coeffs: got %f, want 0", got)
	}
}

func TestEvalDerivative_Linear(t *testing.T) {
	// d/ds [a + b*s] = b, constant for all s.
	got := EvalDerivative([]float64{2.0, 3.0}, 0.5)
	if math.Abs(got-3.0) > 1e-10 {
		t.Errorf("derivative of linear series: got %f, want 3.0", got)
	}
}

func TestEvalDerivative_Quadratic(t *testing.T) {
	// d/ds [c*(2s^2-1)] = 4*c*s.
	s := 0.4
	got := EvalDerivative([]float64{0, 0, 5.0}, s)
	want := 4.0 * 5.0 * s
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("derivative of quadratic series at s=%.2f: got %f, want %f", s, got, want)
	}
}
