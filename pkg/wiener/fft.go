package wiener

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs a 2D Fast Fourier Transform on the input data.
// The core works entirely in the frequency domain, so this and ifft2D
// are the only places the spatial and spectral representations meet.
//
// Parameters:
//   - data: Input patch data as a 1D array (row-major order)
//   - size: Width/height of the square patch
//
// Returns:
//   - The 2D FFT of the input data as a 1D array of complex numbers
//
// Transform plans are created per call, so concurrent callers on
// independent patches need no synchronization.
func fft2D(data []float64, size int) []complex128 {
	// Real-input FFT for the row pass
	fft := fourier.NewFFT(size)

	// Allocate memory for the result
	result := make([]complex128, size*size)

	// Temporary storage for row FFTs
	rowInput := make([]float64, size)
	rowOutput := make([]complex128, size/2+1) // Gonum FFT output size for real input

	// Perform row-wise FFT
	for i := 0; i < size; i++ {
		// Extract row
		for j := 0; j < size; j++ {
			rowInput[j] = data[i*size+j]
		}

		// Compute FFT of the row
		fft.Coefficients(rowOutput, rowInput)

		// Expand to the full spectrum using conjugate symmetry: F(n-k) = F*(k)
		for j := 0; j < len(rowOutput); j++ {
			result[i*size+j] = rowOutput[j]
		}
		for j := len(rowOutput); j < size; j++ {
			k := size - j
			if k < len(rowOutput) {
				result[i*size+j] = complex(real(rowOutput[k]), -imag(rowOutput[k]))
			}
		}
	}

	// Column pass operates on complex data
	cfft := fourier.NewCmplxFFT(size)
	colInput := make([]complex128, size)
	colOutput := make([]complex128, size)

	for j := 0; j < size; j++ {
		// Extract column from row FFT results
		for i := 0; i < size; i++ {
			colInput[i] = result[i*size+j]
		}

		cfft.Coefficients(colOutput, colInput)

		// Store column FFT results
		for i := 0; i < size; i++ {
			result[i*size+j] = colOutput[i]
		}
	}

	return result
}

// ifft2D performs the inverse 2D FFT, returning the normalized complex
// spatial-domain patch. Gonum's Sequence is unnormalized, so each pass
// divides by the transform length; the two passes together apply the
// 1/(size*size) factor of the full 2D inverse.
func ifft2D(coeffs []complex128, size int) []complex128 {
	cfft := fourier.NewCmplxFFT(size)

	result := make([]complex128, size*size)
	copy(result, coeffs)

	scale := complex(1/float64(size), 0)

	// Inverse transform of each row
	rowInput := make([]complex128, size)
	rowOutput := make([]complex128, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			rowInput[j] = result[i*size+j]
		}

		cfft.Sequence(rowOutput, rowInput)

		for j := 0; j < size; j++ {
			result[i*size+j] = rowOutput[j] * scale
		}
	}

	// Inverse transform of each column
	colInput := make([]complex128, size)
	colOutput := make([]complex128, size)
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			colInput[i] = result[i*size+j]
		}

		cfft.Sequence(colOutput, colInput)

		for i := 0; i < size; i++ {
			result[i*size+j] = colOutput[i] * scale
		}
	}

	return result
}
