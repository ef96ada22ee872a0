package wiener

import (
	"fmt"
	"math/cmplx"
)

// Applicator restores degraded patches with a learned transfer function.
// The filter is read-only after construction, so a single Applicator may
// serve any number of goroutines restoring independent patches.
type Applicator struct {
	h *TransferFunction

	// globalScale, when positive, replaces the per-patch maximum as the
	// normalization reference for every restored patch. Zero keeps the
	// reference behavior of rescaling each patch to its own peak.
	globalScale float64
}

// NewApplicator creates an applicator for the given transfer function.
func NewApplicator(h *TransferFunction) *Applicator {
	return &Applicator{h: h}
}

// SetGlobalScale switches normalization from the per-patch maximum to a
// fixed global reference (for example the known value range of the full
// image). Per-patch rescaling trades absolute-brightness fidelity for
// contrast consistency and shows as blockiness at patch boundaries in the
// reassembled image; a global reference avoids that at the cost of
// per-patch contrast. Values <= 0 restore the per-patch default.
func (a *Applicator) SetGlobalScale(scale float64) {
	a.globalScale = scale
}

// Restore deconvolves a single degraded patch: it multiplies the patch
// spectrum with the transfer function, inverse-transforms, takes the
// magnitude (discarding residual imaginary rounding) and rescales to the
// normalization reference. A patch whose restored energy is uniformly zero
// is returned as the zero patch rather than dividing by zero.
func (a *Applicator) Restore(patch []float64) ([]float64, error) {
	size := a.h.Size
	n := size * size
	if len(patch) != n {
		return nil, fmt.Errorf("wiener: patch has %d samples, expected %dx%d", len(patch), size, size)
	}

	x := fft2D(patch, size)
	for j := 0; j < n; j++ {
		x[j] *= a.h.Coeffs[j]
	}

	out := ifft2D(x, size)

	restored := make([]float64, n)
	peak := 0.0
	for j := 0; j < n; j++ {
		restored[j] = cmplx.Abs(out[j])
		if restored[j] > peak {
			peak = restored[j]
		}
	}

	scale := peak
	if a.globalScale > 0 {
		scale = a.globalScale
	}
	if scale == 0 {
		// All-zero restored energy, nothing to normalize
		return restored, nil
	}

	for j := 0; j < n; j++ {
		restored[j] /= scale
		if restored[j] > 1 {
			restored[j] = 1
		}
	}

	return restored, nil
}
