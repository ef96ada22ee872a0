package wiener

import (
	"encoding/binary"
	"fmt"
	"os"
)

// The transfer function is persisted as two real matrices (real parts then
// imaginary parts) after a size header, all little-endian. Splitting the
// complex coefficients this way keeps the format trivially readable from
// other tooling and decouples restoration from training in a deployment.

// SaveTransferFunction writes the learned filter to path.
func SaveTransferFunction(path string, h *TransferFunction) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create filter file: %v", err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, int32(h.Size)); err != nil {
		return fmt.Errorf("failed to write filter header: %v", err)
	}

	for _, c := range h.Coeffs {
		if err := binary.Write(file, binary.LittleEndian, real(c)); err != nil {
			return fmt.Errorf("failed to write filter data: %v", err)
		}
	}
	for _, c := range h.Coeffs {
		if err := binary.Write(file, binary.LittleEndian, imag(c)); err != nil {
			return fmt.Errorf("failed to write filter data: %v", err)
		}
	}

	return nil
}

// LoadTransferFunction reads a filter previously written by
// SaveTransferFunction.
func LoadTransferFunction(path string) (*TransferFunction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open filter file: %v", err)
	}
	defer file.Close()

	var size int32
	if err := binary.Read(file, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("failed to read filter header: %v", err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid filter size %d", size)
	}

	n := int(size) * int(size)
	re := make([]float64, n)
	im := make([]float64, n)
	if err := binary.Read(file, binary.LittleEndian, re); err != nil {
		return nil, fmt.Errorf("failed to read filter data: %v", err)
	}
	if err := binary.Read(file, binary.LittleEndian, im); err != nil {
		return nil, fmt.Errorf("failed to read filter data: %v", err)
	}

	coeffs := make([]complex128, n)
	for i := range coeffs {
		coeffs[i] = complex(re[i], im[i])
	}

	return &TransferFunction{Coeffs: coeffs, Size: int(size)}, nil
}
