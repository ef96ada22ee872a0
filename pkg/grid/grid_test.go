package grid

import (
	"testing"
)

// TestPadDimensions verifies that padding rounds dimensions up to the next
// multiple of the patch size
func TestPadDimensions(t *testing.T) {
	data := make([]float64, 10*7)
	padded, width, height := Pad(data, 10, 7, 4)

	if width != 12 || height != 8 {
		t.Errorf("Expected padded dimensions 12x8, got %dx%d", width, height)
	}
	if len(padded) != 12*8 {
		t.Errorf("Expected %d padded samples, got %d", 12*8, len(padded))
	}

	// Aligned images keep their dimensions
	_, width, height = Pad(make([]float64, 8*8), 8, 8, 4)
	if width != 8 || height != 8 {
		t.Errorf("Expected aligned image to keep 8x8, got %dx%d", width, height)
	}
}

// TestSplitPatchCount verifies the patch grid geometry
func TestSplitPatchCount(t *testing.T) {
	data := make([]float64, 10*7)
	g, err := Split(data, 10, 7, 4)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if g.Rows != 2 || g.Cols != 3 {
		t.Errorf("Expected 2x3 patch grid, got %dx%d", g.Rows, g.Cols)
	}
	if len(g.Patches) != 6 {
		t.Errorf("Expected 6 patches, got %d", len(g.Patches))
	}
	for i, patch := range g.Patches {
		if len(patch) != 16 {
			t.Errorf("Patch %d: expected 16 samples, got %d", i, len(patch))
		}
	}
}

// TestSplitReassembleRoundTrip verifies that reassembling the patches of a
// non-aligned image reproduces it exactly
func TestSplitReassembleRoundTrip(t *testing.T) {
	width, height := 10, 7
	data := make([]float64, width*height)
	for i := range data {
		data[i] = float64(i) * 0.013
	}

	g, err := Split(data, width, height, 4)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	back := g.Reassemble()
	if len(back) != len(data) {
		t.Fatalf("Expected %d samples after reassembly, got %d", len(data), len(back))
	}
	for i := range data {
		if back[i] != data[i] {
			t.Errorf("Mismatch at index %d: expected %f, got %f", i, data[i], back[i])
		}
	}
}

// TestSplitBadInput verifies the precondition checks
func TestSplitBadInput(t *testing.T) {
	if _, err := Split(make([]float64, 9), 4, 4, 2); err == nil {
		t.Errorf("Expected error for sample count mismatch")
	}
	if _, err := Split(make([]float64, 16), 4, 4, 0); err == nil {
		t.Errorf("Expected error for invalid patch size")
	}
}
