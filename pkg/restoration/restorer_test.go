package restoration

import (
	"os"
	"path/filepath"
	"testing"

	"patchwiener/pkg/config"
	"patchwiener/pkg/wiener"
)

// testConfig returns a small deterministic configuration for pipeline tests
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Processing.NumCores = 2
	cfg.Processing.PatchSize = 16
	cfg.Processing.Seed = 11
	cfg.Degradation.KernelSize = 5
	cfg.Degradation.KernelSigma = 1.0
	cfg.Degradation.MaxNoiseSigma = 0
	cfg.Output.Verbose = false
	return cfg
}

// stripeImage builds a vertical stripe pattern whose period matches the
// patch size, so every patch spans the full intensity range
func stripeImage(width, height, period int) []float64 {
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x%period >= period/2 {
				data[y*width+x] = 1.0
			}
		}
	}
	return data
}

// TestExtractNumber verifies the numeric filename ordering helper
func TestExtractNumber(t *testing.T) {
	cases := []struct {
		filename string
		expected int
	}{
		{"slice_001.jpg", 1},
		{"slice_042.jpg", 42},
		{"10.jpeg", 10},
		{"nonumber.jpg", 0},
	}

	for _, tc := range cases {
		if got := extractNumber(tc.filename); got != tc.expected {
			t.Errorf("extractNumber(%q): expected %d, got %d", tc.filename, tc.expected, got)
		}
	}
}

// TestProcessEndToEnd runs the full pipeline on a synthetic training image
// and verifies that the degraded evaluation image is restored to a usable
// quality with the learned filter persisted alongside
func TestProcessEndToEnd(t *testing.T) {
	dir := t.TempDir()
	trainDir := filepath.Join(dir, "train")
	if err := os.MkdirAll(trainDir, 0755); err != nil {
		t.Fatalf("Failed to create training directory: %v", err)
	}

	width, height := 48, 32
	clean := stripeImage(width, height, 16)
	if err := SaveImage(filepath.Join(trainDir, "train_001.jpg"), clean, width, height); err != nil {
		t.Fatalf("Failed to save training image: %v", err)
	}

	params := &Params{
		TrainDir:   trainDir,
		OutputFile: filepath.Join(dir, "restored.jpg"),
		FilterFile: filepath.Join(dir, "filter.bin"),
	}

	restorer := NewRestorer(params, testConfig())
	if err := restorer.Process(); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// The zero-noise degradation is exactly invertible at the non-degenerate
	// coefficients, so restoration quality should be comfortably high
	m := restorer.GetMetrics()
	if m.PSNR <= 15 {
		t.Errorf("Expected PSNR > 15 dB, got %.2f", m.PSNR)
	}
	if m.SSIM <= 0.5 {
		t.Errorf("Expected SSIM > 0.5, got %.3f", m.SSIM)
	}

	restored, w, h := restorer.RestoredImage()
	if w != width || h != height {
		t.Errorf("Expected restored dimensions %dx%d, got %dx%d", width, height, w, h)
	}
	if len(restored) != width*height {
		t.Errorf("Expected %d restored samples, got %d", width*height, len(restored))
	}

	// The output image and the persisted filter must both exist
	if _, err := os.Stat(params.OutputFile); err != nil {
		t.Errorf("Restored image not written: %v", err)
	}

	h2, err := wiener.LoadTransferFunction(params.FilterFile)
	if err != nil {
		t.Fatalf("Failed to load persisted filter: %v", err)
	}
	if h2.Size != 16 {
		t.Errorf("Expected persisted filter size 16, got %d", h2.Size)
	}
}

// TestProcessMissingTrainingDir verifies the error path for an unreadable
// training directory
func TestProcessMissingTrainingDir(t *testing.T) {
	params := &Params{TrainDir: filepath.Join(t.TempDir(), "does-not-exist")}

	restorer := NewRestorer(params, testConfig())
	if err := restorer.Process(); err == nil {
		t.Errorf("Expected error for missing training directory")
	}
}

// TestProcessNoImages verifies the error path for a directory without JPEGs
func TestProcessNoImages(t *testing.T) {
	params := &Params{TrainDir: t.TempDir()}

	restorer := NewRestorer(params, testConfig())
	if err := restorer.Process(); err == nil {
		t.Errorf("Expected error for a training directory without images")
	}
}
