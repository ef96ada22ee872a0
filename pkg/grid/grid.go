// Package grid implements the patch geometry used around the restoration
// core: padding an image to a multiple of the patch size, slicing it into
// a grid of non-overlapping square patches, and reassembling restored
// patches into a full image. All operations are pure transforms on
// row-major float data.
package grid

import (
	"fmt"
)

// Grid holds an image sliced into non-overlapping square patches along
// with the geometry needed to reassemble it.
type Grid struct {
	// Patches are the row-major patch buffers, ordered left-to-right,
	// top-to-bottom across the padded image.
	Patches [][]float64

	// Rows and Cols are the patch-grid dimensions.
	Rows, Cols int

	// PatchSize is the width/height of each square patch.
	PatchSize int

	// Width and Height are the original image dimensions before padding.
	Width, Height int
}

// Pad zero-pads an image up to the next multiple of patchSize in both
// dimensions and returns the padded data with its new dimensions. Images
// already aligned are copied unchanged.
func Pad(data []float64, width, height, patchSize int) ([]float64, int, int) {
	paddedWidth := ((width + patchSize - 1) / patchSize) * patchSize
	paddedHeight := ((height + patchSize - 1) / patchSize) * patchSize

	padded := make([]float64, paddedWidth*paddedHeight)
	for y := 0; y < height; y++ {
		copy(padded[y*paddedWidth:y*paddedWidth+width], data[y*width:(y+1)*width])
	}

	return padded, paddedWidth, paddedHeight
}

// Split pads the image and slices it into patchSize x patchSize patches.
func Split(data []float64, width, height, patchSize int) (*Grid, error) {
	if patchSize <= 0 {
		return nil, fmt.Errorf("grid: invalid patch size %d", patchSize)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("grid: image has %d samples, expected %dx%d", len(data), width, height)
	}

	padded, paddedWidth, paddedHeight := Pad(data, width, height, patchSize)

	cols := paddedWidth / patchSize
	rows := paddedHeight / patchSize

	patches := make([][]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			patch := make([]float64, patchSize*patchSize)
			for y := 0; y < patchSize; y++ {
				srcY := r*patchSize + y
				srcX := c * patchSize
				copy(patch[y*patchSize:(y+1)*patchSize],
					padded[srcY*paddedWidth+srcX:srcY*paddedWidth+srcX+patchSize])
			}
			patches = append(patches, patch)
		}
	}

	return &Grid{
		Patches:   patches,
		Rows:      rows,
		Cols:      cols,
		PatchSize: patchSize,
		Width:     width,
		Height:    height,
	}, nil
}

// Reassemble inverts Split: patches are written back into the padded
// canvas in grid order and the result is cropped to the original image
// dimensions.
func (g *Grid) Reassemble() []float64 {
	paddedWidth := g.Cols * g.PatchSize
	padded := make([]float64, paddedWidth*g.Rows*g.PatchSize)

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			patch := g.Patches[r*g.Cols+c]
			for y := 0; y < g.PatchSize; y++ {
				dstY := r*g.PatchSize + y
				dstX := c * g.PatchSize
				copy(padded[dstY*paddedWidth+dstX:dstY*paddedWidth+dstX+g.PatchSize],
					patch[y*g.PatchSize:(y+1)*g.PatchSize])
			}
		}
	}

	// Crop back to the original dimensions
	result := make([]float64, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		copy(result[y*g.Width:(y+1)*g.Width], padded[y*paddedWidth:y*paddedWidth+g.Width])
	}
	return result
}
