// Package wiener implements frequency-domain restoration of fixed-size
// grayscale patches degraded by a known blur and additive Gaussian noise.
// It learns an averaged Wiener-style transfer function from clean/degraded
// patch pairs and applies it multiplicatively in the spectral domain.
package wiener

import (
	"math/cmplx"
)

const (
	// NormalizationConstant keeps spectral magnitudes in a numerically
	// stable range for 8-bit-derived intensities (256*256).
	NormalizationConstant = 65536.0

	// spectralEpsilon is the magnitude below which a spectral divisor is
	// treated as degenerate. Dividing by such a coefficient would plant a
	// NaN/Inf in the averaged filter and poison every later restoration,
	// so degenerate coefficients contribute zero instead.
	spectralEpsilon = 1e-12

	// DefaultPeakThreshold is the filter peak magnitude above which the
	// learned transfer function is considered implausible and the training
	// noise draws are re-rolled.
	DefaultPeakThreshold = 100.0

	// DefaultMaxRetries bounds the number of re-rolls after the initial
	// estimation attempt.
	DefaultMaxRetries = 1
)

// TransferFunction is the single learned artifact of the estimator: the
// complex-valued frequency response averaged over the training corpus.
// It is written once during estimation and read-only thereafter, so any
// number of restorations may share it concurrently.
type TransferFunction struct {
	// Coeffs holds one complex coefficient per spectral bin, in row-major
	// order matching fft2D output.
	Coeffs []complex128

	// Size is the width/height of the square patch the filter applies to.
	Size int
}

// PeakMagnitude returns the largest coefficient magnitude of the filter.
// It is the sanity statistic used to detect a degenerate estimation run.
func (h *TransferFunction) PeakMagnitude() float64 {
	peak := 0.0
	for _, c := range h.Coeffs {
		if m := cmplx.Abs(c); m > peak {
			peak = m
		}
	}
	return peak
}
