package degrade

import (
	"math"
	"testing"
)

// TestKernelNormalized verifies that the blur kernel is odd-sized and sums
// to unit integral
func TestKernelNormalized(t *testing.T) {
	model := NewModel(5, 1.0, 0, 1)
	kernel := model.Kernel()

	rows, cols := kernel.Dims()
	if rows != 5 || cols != 5 {
		t.Fatalf("Expected 5x5 kernel, got %dx%d", rows, cols)
	}

	sum := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += kernel.At(i, j)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Expected kernel sum of 1.0, got %f", sum)
	}

	// The center must carry the peak weight
	if kernel.At(2, 2) <= kernel.At(0, 0) {
		t.Errorf("Expected peak at center: center=%f corner=%f", kernel.At(2, 2), kernel.At(0, 0))
	}
}

// TestKernelEvenSizePromoted verifies that an even requested size is
// promoted to the next odd size
func TestKernelEvenSizePromoted(t *testing.T) {
	model := NewModel(4, 1.0, 0, 1)
	if model.KernelSize != 5 {
		t.Errorf("Expected kernel size 5 for even request 4, got %d", model.KernelSize)
	}
}

// TestBlurConstantPatch verifies that border clamping keeps a constant
// patch constant under blurring
func TestBlurConstantPatch(t *testing.T) {
	size := 16
	model := NewModel(5, 1.0, 0, 1)

	patch := make([]float64, size*size)
	for i := range patch {
		patch[i] = 0.75
	}

	blurred := model.Blur(patch, size)
	for i, v := range blurred {
		if math.Abs(v-0.75) > 1e-9 {
			t.Errorf("Expected constant 0.75 at index %d, got %f", i, v)
		}
	}
}

// TestBlurSmoothsEdge verifies that blurring reduces the gradient across a
// sharp edge without mutating the input
func TestBlurSmoothsEdge(t *testing.T) {
	size := 16
	model := NewModel(5, 1.0, 0, 1)

	patch := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := size / 2; x < size; x++ {
			patch[y*size+x] = 1.0
		}
	}
	original := make([]float64, len(patch))
	copy(original, patch)

	blurred := model.Blur(patch, size)

	mid := size / 2
	sharp := patch[mid*size+mid] - patch[mid*size+mid-1]
	smooth := blurred[mid*size+mid] - blurred[mid*size+mid-1]
	if smooth >= sharp {
		t.Errorf("Expected blur to reduce edge gradient: sharp=%f blurred=%f", sharp, smooth)
	}

	for i := range patch {
		if patch[i] != original[i] {
			t.Fatalf("Blur mutated its input at index %d", i)
		}
	}
}

// TestSampleZeroSigma verifies that a zero noise bound produces exact zero
// noise for deterministic training
func TestSampleZeroSigma(t *testing.T) {
	model := NewModel(5, 1.0, 0, 1)

	noise := model.Sample(256)
	for i, v := range noise {
		if v != 0 {
			t.Errorf("Expected zero noise at index %d, got %f", i, v)
		}
	}
}

// TestSampleReproducible verifies that two models with the same seed draw
// identical noise sequences
func TestSampleReproducible(t *testing.T) {
	a := NewModel(5, 1.0, 10.0, 7)
	b := NewModel(5, 1.0, 10.0, 7)

	na := a.Sample(128)
	nb := b.Sample(128)
	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("Seeded draws diverge at index %d: %f vs %f", i, na[i], nb[i])
		}
	}
}

// TestSampleFreshPerCall verifies that consecutive calls draw independent
// realizations and that the samples are roughly zero-centered in the
// normalized intensity range
func TestSampleFreshPerCall(t *testing.T) {
	model := NewModel(5, 1.0, 10.0, 3)

	first := model.Sample(4096)
	second := model.Sample(4096)

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("Expected consecutive calls to draw fresh noise")
	}

	mean := 0.0
	for _, v := range first {
		mean += v
	}
	mean /= float64(len(first))

	// Sigma is at most 10/255, so the sample mean stays well inside this
	if math.Abs(mean) > 0.01 {
		t.Errorf("Expected near-zero mean noise, got %f", mean)
	}
}
