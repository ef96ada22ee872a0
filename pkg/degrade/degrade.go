// Package degrade implements the degradation model used for training and
// evaluation: a normalized Gaussian blur kernel and zero-mean additive
// Gaussian noise with per-call randomized variance. The model is seedable
// so degradation sequences are reproducible for testing.
package degrade

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model generates blur kernels and noise samples. It is not safe for
// concurrent use: the underlying random source is shared between calls.
type Model struct {
	// KernelSize is the width/height of the blur kernel. Must be odd.
	KernelSize int

	// KernelSigma is the standard deviation of the Gaussian kernel in
	// pixels.
	KernelSigma float64

	// MaxNoiseSigma is the upper bound, in 8-bit intensity units, of the
	// noise standard deviation drawn uniformly per Sample call. Zero
	// disables noise entirely.
	MaxNoiseSigma float64

	src rand.Source
	rng *rand.Rand
}

// NewModel creates a degradation model seeded for reproducible draws.
func NewModel(kernelSize int, kernelSigma, maxNoiseSigma float64, seed uint64) *Model {
	if kernelSize%2 == 0 {
		kernelSize++
	}
	src := rand.NewSource(seed)
	return &Model{
		KernelSize:    kernelSize,
		KernelSigma:   kernelSigma,
		MaxNoiseSigma: maxNoiseSigma,
		src:           src,
		rng:           rand.New(src),
	}
}

// Kernel returns the odd-sized Gaussian blur kernel normalized to unit
// integral, built as the outer product of the 1D Gaussian with itself.
func (m *Model) Kernel() *mat.Dense {
	k1 := gaussianKernel1D(m.KernelSize, m.KernelSigma)

	kernel := mat.NewDense(m.KernelSize, m.KernelSize, nil)
	kernel.Outer(1, mat.NewVecDense(m.KernelSize, k1), mat.NewVecDense(m.KernelSize, k1))
	return kernel
}

// gaussianKernel1D returns a normalized 1D Gaussian kernel of the given
// odd size.
func gaussianKernel1D(size int, sigma float64) []float64 {
	half := size / 2
	kern := make([]float64, size)

	sum := 0.0
	for i := 0; i < size; i++ {
		x := float64(i-half) / sigma
		kv := math.Exp(-0.5 * x * x)
		kern[i] = kv
		sum += kv
	}
	for i := 0; i < size; i++ {
		kern[i] /= sum
	}
	return kern
}

// Blur convolves a square patch with the model's Gaussian kernel. Border
// pixels are handled by clamping sample coordinates to the patch, so a
// constant patch blurs to itself. The input is not mutated.
func (m *Model) Blur(patch []float64, size int) []float64 {
	kernel := m.Kernel()
	half := m.KernelSize / 2

	result := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			acc := 0.0
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					sy := clamp(y+ky, 0, size-1)
					sx := clamp(x+kx, 0, size-1)
					acc += patch[sy*size+sx] * kernel.At(ky+half, kx+half)
				}
			}
			result[y*size+x] = acc
		}
	}
	return result
}

// Sample draws n zero-mean Gaussian noise values scaled to the normalized
// [0,1] intensity range. The standard deviation is drawn uniformly in
// [0, MaxNoiseSigma] 8-bit units for each call and the raw values are
// divided by 255, matching the intensity normalization of the patches.
// Samples are never cached: every call is an independent realization.
func (m *Model) Sample(n int) []float64 {
	noise := make([]float64, n)

	sigma := m.rng.Float64() * m.MaxNoiseSigma
	if sigma == 0 {
		return noise
	}

	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: m.src}
	for i := range noise {
		noise[i] = dist.Rand() / 255.0
	}
	return noise
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
