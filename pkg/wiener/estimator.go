package wiener

import (
	"fmt"
	"math/cmplx"
)

// NoiseSource supplies additive Gaussian noise samples for the estimator.
// Sample returns n zero-mean values already scaled to the normalized [0,1]
// intensity range of the patches (raw 8-bit-unit Gaussian divided by 255).
// Implementations draw a fresh variance per call; a seedable source makes
// training runs reproducible.
type NoiseSource interface {
	Sample(n int) []float64
}

// Estimator learns an averaged Wiener restoration filter from paired
// clean/degraded patches. The accumulation is an explicit left-to-right
// fold over the input order: mathematically order-independent, but the
// floating-point result is only reproducible for a given input order.
type Estimator struct {
	size  int
	noise NoiseSource

	// PeakThreshold is the plausibility bound on the peak magnitude of the
	// learned filter checked by EstimateWithRetry.
	PeakThreshold float64

	// MaxRetries bounds the number of fresh-noise re-rolls after the first
	// estimation attempt.
	MaxRetries int
}

// NewEstimator creates an estimator for patches of the given square size.
func NewEstimator(size int, noise NoiseSource) *Estimator {
	return &Estimator{
		size:          size,
		noise:         noise,
		PeakThreshold: DefaultPeakThreshold,
		MaxRetries:    DefaultMaxRetries,
	}
}

// Estimate learns the averaged transfer function from equal-length
// sequences of clean patches and their blurred counterparts.
//
// For each pair a fresh noise sample n is drawn and, with D = FFT(clean),
// N = FFT(n) and X = FFT(degraded + n), a per-pair blur estimate
// H_i = (X - N) / D feeds the regularized Wiener estimate
//
//	G_i = conj(H_i)*D*conj(D)/K / (conj(H_i)*H_i*D*conj(D)/K + N*conj(N)/K)
//
// with K = NormalizationConstant. The result is the coefficient-wise mean
// of the G_i. Coefficients whose divisor (D or the Wiener denominator) is
// numerically zero contribute nothing for that pair.
//
// Inputs are not mutated.
func (e *Estimator) Estimate(clean, degraded [][]float64) (*TransferFunction, error) {
	if len(clean) == 0 {
		return nil, fmt.Errorf("wiener: empty training corpus")
	}
	if len(clean) != len(degraded) {
		return nil, fmt.Errorf("wiener: corpus length mismatch: %d clean vs %d degraded",
			len(clean), len(degraded))
	}

	n := e.size * e.size
	sum := make([]complex128, n)
	noisy := make([]float64, n)

	k := complex(NormalizationConstant, 0)

	for i := range clean {
		if len(clean[i]) != n {
			return nil, fmt.Errorf("wiener: clean patch %d has %d samples, expected %dx%d",
				i, len(clean[i]), e.size, e.size)
		}
		if len(degraded[i]) != n {
			return nil, fmt.Errorf("wiener: degraded patch %d has %d samples, expected %dx%d",
				i, len(degraded[i]), e.size, e.size)
		}

		// Fresh noise realization for this pair
		noise := e.noise.Sample(n)
		for j := 0; j < n; j++ {
			noisy[j] = degraded[i][j] + noise[j]
		}

		d := fft2D(clean[i], e.size)
		nn := fft2D(noise, e.size)
		x := fft2D(noisy, e.size)

		for j := 0; j < n; j++ {
			if cmplx.Abs(d[j]) < spectralEpsilon {
				continue
			}

			h := (x[j] - nn[j]) / d[j]

			dd := d[j] * cmplx.Conj(d[j])
			g1 := cmplx.Conj(h) * dd / k
			g2 := cmplx.Conj(h)*h*dd/k + nn[j]*cmplx.Conj(nn[j])/k

			if cmplx.Abs(g2) < spectralEpsilon {
				continue
			}

			sum[j] += g1 / g2
		}
	}

	// Average over the corpus
	l := complex(float64(len(clean)), 0)
	for j := range sum {
		sum[j] /= l
	}

	return &TransferFunction{Coeffs: sum, Size: e.size}, nil
}

// EstimateWithRetry runs Estimate and, when the resulting filter's peak
// magnitude exceeds PeakThreshold, re-runs it with freshly drawn noise at
// most MaxRetries times. The re-roll is a heuristic safeguard against a
// degenerate division, not a deterministic fix: the final attempt is
// returned whether or not it passed the check. The number of attempts made
// is reported alongside the filter.
func (e *Estimator) EstimateWithRetry(clean, degraded [][]float64) (*TransferFunction, int, error) {
	attempts := 0
	var h *TransferFunction
	for {
		var err error
		h, err = e.Estimate(clean, degraded)
		if err != nil {
			return nil, attempts, err
		}
		attempts++

		if h.PeakMagnitude() <= e.PeakThreshold || attempts > e.MaxRetries {
			return h, attempts, nil
		}
	}
}
