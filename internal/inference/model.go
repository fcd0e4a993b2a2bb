// Package inference provides the score-vector backends the ensemble runs:
// a local linear model read from a JSON artifact, and a remote scorer reached
// over gRPC. Loader resolves artifact URIs to either.
package inference

import (
	"context"

	"github.com/vedant281104/AgriShield/internal/imaging"
)

// Model maps a normalized image tensor to one score per pest label. Models
// are immutable once loaded and safe for concurrent use.
type Model interface {
	Predict(ctx context.Context, input imaging.Tensor) ([]float32, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, input imaging.Tensor) ([]float32, error)

func (f ModelFunc) Predict(ctx context.Context, input imaging.Tensor) ([]float32, error) {
	return f(ctx, input)
}
