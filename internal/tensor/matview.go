package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gonum views over tensor memory. Each view aliases the tensor's backing
// array, so writes through the view are visible in the tensor and vice
// versa. Views are cheap to construct and are not cached.

// Matrix returns sample i of a 3-D tensor as a gonum matrix view.
// For a tensor shaped (batch, rows, cols) the view is rows×cols.
// Panics if the tensor is not 3-D or i is out of range.
func (t *Tensor) Matrix(i int) *mat.Dense {
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("Matrix() requires a 3-D tensor, got shape %v", t.shape))
	}
	if i < 0 || i >= t.shape[0] {
		panic(fmt.Sprintf("sample index %d out of bounds for batch of %d", i, t.shape[0]))
	}
	rows, cols := t.shape[1], t.shape[2]
	return mat.NewDense(rows, cols, t.data[i*t.strides[0]:i*t.strides[0]+rows*cols])
}

// Row returns row i of a 2-D tensor as a gonum vector view.
// Panics if the tensor is not 2-D or i is out of range.
func (t *Tensor) Row(i int) *mat.VecDense {
	return mat.NewVecDense(t.shape[1], t.RowSlice(i))
}

// RowSlice returns row i of a 2-D tensor as a raw slice view.
// Panics if the tensor is not 2-D or i is out of range.
func (t *Tensor) RowSlice(i int) []float64 {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("RowSlice() requires a 2-D tensor, got shape %v", t.shape))
	}
	if i < 0 || i >= t.shape[0] {
		panic(fmt.Sprintf("row index %d out of bounds for %d rows", i, t.shape[0]))
	}
	return t.data[i*t.strides[0] : i*t.strides[0]+t.shape[1]]
}

// Vector returns a 1-D tensor as a gonum vector view.
// Panics if the tensor is not 1-D.
func (t *Tensor) Vector() *mat.VecDense {
	if len(t.shape) != 1 {
		panic(fmt.Sprintf("Vector() requires a 1-D tensor, got shape %v", t.shape))
	}
	return mat.NewVecDense(t.shape[0], t.data)
}
