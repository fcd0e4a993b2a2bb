package imaging

import (
	"fmt"
	"slices"
)

const (
	Width    = 224
	Height   = 224
	Channels = 3
)

// InputShape is the NHWC shape every classifier consumes.
func InputShape() []int {
	return []int{1, Height, Width, Channels}
}

// Tensor is a dense float32 array in row-major (NHWC) order.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor allocates a zero-filled tensor.
func NewTensor(shape ...int) Tensor {
	return Tensor{Shape: slices.Clone(shape), Data: make([]float32, elements(shape))}
}

// Validate checks that t has exactly the given shape and a matching backing
// slice.
func (t Tensor) Validate(shape []int) error {
	if !slices.Equal(t.Shape, shape) {
		return fmt.Errorf("tensor shape %v, want %v", t.Shape, shape)
	}
	if len(t.Data) != elements(shape) {
		return fmt.Errorf("tensor has %d values, shape %v needs %d", len(t.Data), shape, elements(shape))
	}
	return nil
}

// At returns the value at (y, x, c) of the first batch item.
func (t Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Shape[2]+x)*t.Shape[3]+c]
}

func elements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
