// Package cheby evaluates Chebyshev polynomial series using Clenshaw's
// recurrence. It has no state and performs no allocation; callers in daf
// and spk hand it coefficient slices sliced directly out of a decoded
// SPK record.
package cheby

// Eval evaluates a Chebyshev series at normalized time s in [-1, 1] using
// Clenshaw's recurrence. coeffs[0] is the T0 coefficient.
func Eval(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return coeffs[0]
	}

	s2 := 2.0 * s
	w0 := coeffs[n-1]
	w1 := 0.0
	for i := n - 2; i >= 1; i-- {
		w0, w1 = coeffs[i]+s2*w0-w1, w0
	}
	return coeffs[0] + s*w0 - w1
}

// EvalDerivative evaluates d/ds of the Chebyshev series at s in [-1, 1].
// It first converts coeffs into the coefficients of the derivative series
// (itself a Chebyshev series of degree n-2) via the standard recurrence,
// then evaluates that series with Eval.
func EvalDerivative(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n < 2 {
		return 0
	}

	// dc[j] such that f'(x) = sum dc[j] T_j(x):
	//   dc[n-1] = dc[n] = 0 (conceptually)
	//   dc[j] = dc[j+2] + 2*(j+1)*c[j+1]   for j = n-2 .. 1
	//   dc[0] = (dc[2] + 2*c[1]) / 2
	m := n - 1
	dc := make([]float64, m)

	for j := m - 1; j >= 1; j-- {
		var djp2 float64
		if j+2 < m {
			djp2 = dc[j+2]
		}
		dc[j] = djp2 + 2.0*float64(j+1)*coeffs[j+1]
	}
	var d2 float64
	if m > 2 {
		d2 = dc[2]
	}
	dc[0] = (d2 + 2.0*coeffs[1]) / 2.0

	return Eval(dc, s)
}
