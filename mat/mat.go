// Package mat builds gonum dense matrices from plain float slices.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch = errors.New("column size mismatch")
	ErrRowMismatch = errors.New("row size mismatch")
)

// NewDenseFromColumns stacks equal length feature columns side by side into an m x len(cols)
// design matrix.
func NewDenseFromColumns(cols ...[]float64) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns, %w", ErrColMismatch)
	}
	m := len(cols[0])
	for i, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows, expected %d, %w", i, len(col), m, ErrRowMismatch)
		}
	}

	n := len(cols)
	data := make([]float64, m*n)
	for j, col := range cols {
		for i, val := range col {
			data[i*n+j] = val
		}
	}
	return mat.NewDense(m, n, data), nil
}
