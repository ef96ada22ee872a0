// Package metrics provides the scalar image-quality metrics used to score
// restorations against ground truth: peak signal-to-noise ratio and the
// structural similarity index. Inputs are same-shape images as float64
// values in the 8-bit intensity range; callers coerce other numeric types
// before comparison.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PSNRExactMatch is the sentinel returned when the mean squared error is
// exactly zero. It marks an exact match, not a true infinite-dB cap.
const PSNRExactMatch = 100.0

// MSE computes the mean squared error between two same-length images.
// Mismatched or empty inputs report NaN; a zero result is reserved for a
// true exact match so that PSNR's sentinel cannot fire on misuse.
func MSE(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n == 0 {
		return math.NaN()
	}

	mse := 0.0
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		mse += diff * diff
	}
	return mse / float64(n)
}

// PSNR computes the peak signal-to-noise ratio in dB for 8-bit-range
// images. An exact match returns PSNRExactMatch; malformed input
// propagates NaN.
func PSNR(a, b []float64) float64 {
	mse := MSE(a, b)
	if mse == 0 {
		return PSNRExactMatch
	}
	return 20 * math.Log10(255/math.Sqrt(mse))
}

// SSIM computes the Structural Similarity Index between two images.
// Values range from -1 to 1, with 1 indicating perfect similarity.
func SSIM(a, b []float64) float64 {
	// Constants for SSIM calculation
	const L = 255.0 // Dynamic range
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	n := len(a)
	if n != len(b) || n == 0 {
		return 0
	}

	// Means, variances and covariance using Gonum
	muX := stat.Mean(a, nil)
	muY := stat.Mean(b, nil)
	sigmaX := stat.Variance(a, nil)
	sigmaY := stat.Variance(b, nil)
	sigmaXY := stat.Covariance(a, b, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den
	}
	return 0
}
