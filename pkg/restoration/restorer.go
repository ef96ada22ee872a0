package restoration

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"patchwiener/pkg/config"
	"patchwiener/pkg/degrade"
	"patchwiener/pkg/grid"
	"patchwiener/pkg/metrics"
	"patchwiener/pkg/wiener"
)

// ValidationMetrics holds the quality metrics reported after restoring the
// evaluation image, computed against its clean ground truth.
type ValidationMetrics struct {
	// PSNR is the peak signal-to-noise ratio in dB. Exact matches report
	// the sentinel value 100 rather than a true infinite-dB cap.
	PSNR float64

	// SSIM is the Structural Similarity Index in [-1, 1], with 1
	// indicating perfect similarity.
	SSIM float64
}

// Params holds the restoration pipeline parameters.
type Params struct {
	// TrainDir is the directory containing clean grayscale training images
	// in JPEG format.
	TrainDir string

	// TestImage is the image degraded and restored for evaluation. When
	// empty, the first training image is used.
	TestImage string

	// OutputFile is the path where the restored image will be saved.
	OutputFile string

	// FilterFile, when set, is where the learned transfer function is
	// persisted so restoration can be decoupled from training.
	FilterFile string

	// SaveIntermediaryResults determines whether to save intermediary processing results.
	SaveIntermediaryResults bool

	// IntermediaryDir is the directory where intermediary results will be saved.
	IntermediaryDir string
}

// Restorer runs the full train-then-restore pipeline:
//
// 1. Loading the clean training images
// 2. Slicing them into fixed-size patches and blurring each patch
// 3. Estimating the averaged Wiener transfer function (bounded retry)
// 4. Degrading the evaluation image with blur and fresh noise
// 5. Restoring its patches in parallel with the learned filter
// 6. Reassembling the image and calculating quality metrics
type Restorer struct {
	// params stores the pipeline configuration
	params *Params

	// cfg carries processing, degradation and filter settings
	cfg *config.Config

	// model draws blur kernels and noise realizations
	model *degrade.Model

	// transfer is the learned filter, written once in Process
	transfer *wiener.TransferFunction

	// restored holds the reassembled output image
	restored      []float64
	width, height int

	// metrics stores the quality assessment after restoration
	metrics ValidationMetrics
}

// NewRestorer creates a new restorer instance with the provided parameters.
func NewRestorer(params *Params, cfg *config.Config) *Restorer {
	return &Restorer{
		params: params,
		cfg:    cfg,
		model: degrade.NewModel(
			cfg.Degradation.KernelSize,
			cfg.Degradation.KernelSigma,
			cfg.Degradation.MaxNoiseSigma,
			cfg.Processing.Seed,
		),
	}
}

// Process runs the complete restoration pipeline
func (r *Restorer) Process() error {
	// Create intermediary directory if needed
	if r.params.SaveIntermediaryResults {
		if err := os.MkdirAll(r.params.IntermediaryDir, 0755); err != nil {
			return fmt.Errorf("failed to create intermediary directory: %v", err)
		}
	}

	patchSize := r.cfg.Processing.PatchSize

	// Step 1: Load clean training images
	r.logf("Step 1: Loading training images...\n")
	images, err := r.loadImages()
	if err != nil {
		return fmt.Errorf("failed to load training images: %v", err)
	}

	// Step 2: Build the paired training corpus
	r.logf("Step 2: Building clean/degraded patch pairs...\n")
	var clean, degraded [][]float64
	for i, img := range images {
		data, width, height := imageToFloat(img)
		g, err := grid.Split(data, width, height, patchSize)
		if err != nil {
			return fmt.Errorf("failed to split training image %d: %v", i, err)
		}

		for _, patch := range g.Patches {
			clean = append(clean, patch)
			degraded = append(degraded, r.model.Blur(patch, patchSize))
		}
	}
	r.logf("Collected %d training pairs of %dx%d patches\n", len(clean), patchSize, patchSize)

	if r.params.SaveIntermediaryResults {
		for i := 0; i < len(clean) && i < 8; i++ {
			if err := r.saveIntermediaryResult("01_training_pairs/clean", clean[i], patchSize, patchSize, i); err != nil {
				fmt.Printf("Warning: Failed to save clean training patch %d: %v\n", i, err)
			}
			if err := r.saveIntermediaryResult("01_training_pairs/degraded", degraded[i], patchSize, patchSize, i); err != nil {
				fmt.Printf("Warning: Failed to save degraded training patch %d: %v\n", i, err)
			}
		}
	}

	// Step 3: Estimate the averaged Wiener filter
	r.logf("Step 3: Estimating transfer function...\n")
	estimator := wiener.NewEstimator(patchSize, r.model)
	estimator.PeakThreshold = r.cfg.Filter.PeakThreshold
	estimator.MaxRetries = r.cfg.Filter.MaxRetries

	transfer, attempts, err := estimator.EstimateWithRetry(clean, degraded)
	if err != nil {
		return fmt.Errorf("filter estimation failed: %v", err)
	}
	if attempts > 1 {
		r.logf("Warning: filter peak magnitude exceeded %.1f, re-rolled noise %d time(s)\n",
			estimator.PeakThreshold, attempts-1)
	}
	r.transfer = transfer
	r.logf("Learned filter with peak magnitude %.3f\n", transfer.PeakMagnitude())

	if r.params.FilterFile != "" {
		if err := wiener.SaveTransferFunction(r.params.FilterFile, transfer); err != nil {
			return fmt.Errorf("failed to save filter: %v", err)
		}
		r.logf("Saved transfer function to %s\n", r.params.FilterFile)
	}

	// Step 4: Degrade the evaluation image
	r.logf("Step 4: Degrading evaluation image...\n")
	truth, width, height, err := r.loadEvaluationImage(images)
	if err != nil {
		return err
	}
	r.width, r.height = width, height

	truthGrid, err := grid.Split(truth, width, height, patchSize)
	if err != nil {
		return fmt.Errorf("failed to split evaluation image: %v", err)
	}

	degradedGrid := &grid.Grid{
		Patches:   make([][]float64, len(truthGrid.Patches)),
		Rows:      truthGrid.Rows,
		Cols:      truthGrid.Cols,
		PatchSize: patchSize,
		Width:     width,
		Height:    height,
	}
	for i, patch := range truthGrid.Patches {
		blurred := r.model.Blur(patch, patchSize)
		noise := r.model.Sample(patchSize * patchSize)
		for j := range blurred {
			blurred[j] += noise[j]
		}
		degradedGrid.Patches[i] = blurred
	}

	if r.params.SaveIntermediaryResults {
		degradedImg := degradedGrid.Reassemble()
		if err := r.saveIntermediaryResult("02_degraded", degradedImg, width, height, 0); err != nil {
			fmt.Printf("Warning: Failed to save degraded image: %v\n", err)
		}
	}

	// Step 5: Restore the degraded patches in parallel
	r.logf("Step 5: Restoring %d patches...\n", len(degradedGrid.Patches))
	restoredGrid, err := r.restorePatches(degradedGrid)
	if err != nil {
		return fmt.Errorf("failed to restore patches: %v", err)
	}

	// Step 6: Reassemble and calculate quality metrics
	r.logf("Step 6: Reassembling and calculating quality metrics...\n")
	r.restored = restoredGrid.Reassemble()

	if r.params.SaveIntermediaryResults {
		if err := r.saveIntermediaryResult("03_restored", r.restored, width, height, 0); err != nil {
			fmt.Printf("Warning: Failed to save restored image: %v\n", err)
		}
	}

	if r.params.OutputFile != "" {
		if err := SaveImage(r.params.OutputFile, r.restored, width, height); err != nil {
			return fmt.Errorf("failed to save restored image: %v", err)
		}
	}

	// Scores are computed in the 8-bit intensity range
	r.metrics = ValidationMetrics{
		PSNR: metrics.PSNR(to8Bit(truth), to8Bit(r.restored)),
		SSIM: metrics.SSIM(to8Bit(truth), to8Bit(r.restored)),
	}

	return nil
}

// restorePatches fans the degraded patches out across NumCores workers.
// The transfer function is read-only by then, so the workers share it
// without locks; each worker writes only its own output indexes.
func (r *Restorer) restorePatches(degraded *grid.Grid) (*grid.Grid, error) {
	applicator := wiener.NewApplicator(r.transfer)
	if r.cfg.Filter.Normalization == "global" {
		applicator.SetGlobalScale(r.cfg.Filter.GlobalRange)
	}

	numPatches := len(degraded.Patches)
	restored := make([][]float64, numPatches)

	numCores := r.cfg.Processing.NumCores
	if numCores < 1 {
		numCores = 1
	}
	patchesPerCore := (numPatches + numCores - 1) / numCores

	var wg sync.WaitGroup
	errs := make(chan error, numCores)

	for c := 0; c < numCores; c++ {
		wg.Add(1)

		go func(coreID int) {
			defer wg.Done()

			start := coreID * patchesPerCore
			end := (coreID + 1) * patchesPerCore
			if end > numPatches {
				end = numPatches
			}
			if start >= numPatches {
				return
			}

			for i := start; i < end; i++ {
				out, err := applicator.Restore(degraded.Patches[i])
				if err != nil {
					errs <- fmt.Errorf("patch %d: %v", i, err)
					return
				}
				restored[i] = out
			}
		}(c)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	return &grid.Grid{
		Patches:   restored,
		Rows:      degraded.Rows,
		Cols:      degraded.Cols,
		PatchSize: degraded.PatchSize,
		Width:     degraded.Width,
		Height:    degraded.Height,
	}, nil
}

// GetMetrics returns the current validation metrics
func (r *Restorer) GetMetrics() ValidationMetrics {
	return r.metrics
}

// TransferFunction returns the learned filter, or nil before Process ran.
func (r *Restorer) TransferFunction() *wiener.TransferFunction {
	return r.transfer
}

// RestoredImage returns the reassembled restored image and its dimensions.
func (r *Restorer) RestoredImage() ([]float64, int, int) {
	return r.restored, r.width, r.height
}

// loadImages loads and sorts the training images from the input directory.
// Files are ordered by the numeric part of their filenames, the same
// convention used for slice sequences.
func (r *Restorer) loadImages() ([]image.Image, error) {
	files, err := os.ReadDir(r.params.TrainDir)
	if err != nil {
		return nil, err
	}

	// Filter and sort JPG files
	var imageFiles []string
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			imageFiles = append(imageFiles, file.Name())
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no JPG images found in input directory")
	}

	sort.Slice(imageFiles, func(i, j int) bool {
		return extractNumber(imageFiles[i]) < extractNumber(imageFiles[j])
	})

	var images []image.Image
	for _, filename := range imageFiles {
		img, err := loadImage(filepath.Join(r.params.TrainDir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %v", filename, err)
		}
		images = append(images, img)
	}

	r.logf("Loaded %d training images\n", len(images))
	return images, nil
}

// loadEvaluationImage returns the ground-truth evaluation image as float
// data. It falls back to the first training image when no test image was
// configured.
func (r *Restorer) loadEvaluationImage(training []image.Image) ([]float64, int, int, error) {
	if r.params.TestImage == "" {
		data, width, height := imageToFloat(training[0])
		return data, width, height, nil
	}

	img, err := loadImage(r.params.TestImage)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load test image: %v", err)
	}
	data, width, height := imageToFloat(img)
	return data, width, height, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

func (r *Restorer) logf(format string, args ...interface{}) {
	if r.cfg.Output.Verbose {
		fmt.Printf(format, args...)
	}
}

// Helper functions

// loadImage loads an image from a file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := jpeg.Decode(file)
	if err != nil {
		return nil, err
	}

	return img, nil
}

// imageToFloat converts a grayscale image to a float array in [0,1]
func imageToFloat(img image.Image) ([]float64, int, int) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert 16-bit color to float64 (0-1 range)
			result[y*width+x] = float64(r) / 65535.0
		}
	}

	return result, width, height
}

// floatToImage converts a float array in [0,1] back to an image
func floatToImage(data []float64, width, height int) image.Image {
	img := image.NewGray16(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if idx < len(data) {
				v := data[idx]
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				img.Set(x, y, color.Gray16{Y: uint16(v * 65535.0)})
			}
		}
	}

	return img
}

// to8Bit rescales normalized [0,1] intensities to the 8-bit range the
// quality metrics are defined over.
func to8Bit(data []float64) []float64 {
	result := make([]float64, len(data))
	for i, v := range data {
		result[i] = v * 255.0
	}
	return result
}

// SaveImage writes normalized float image data as a JPEG file.
func SaveImage(path string, data []float64, width, height int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %v", err)
	}
	defer file.Close()

	img := floatToImage(data, width, height)
	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode image: %v", err)
	}

	return nil
}

// saveIntermediaryResult saves an intermediary result during the restoration
// process. This helps visualize the steps of the algorithm.
func (r *Restorer) saveIntermediaryResult(stage string, data []float64, width, height, index int) error {
	if !r.params.SaveIntermediaryResults {
		return nil
	}

	stageDir := filepath.Join(r.params.IntermediaryDir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %v", err)
	}

	filename := filepath.Join(stageDir, fmt.Sprintf("%03d.jpg", index))
	return SaveImage(filename, data, width, height)
}
