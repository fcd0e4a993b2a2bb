package ensemble

import (
	"errors"
	"fmt"
)

// ShapeMismatchError means a model's score vector does not line up with the
// label set. It is a deployment fault, not a property of the input image.
type ShapeMismatchError struct {
	Model    string
	Observed int
	Expected int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("model output shape mismatch: %s returned %d scores, expected %d classes", e.Model, e.Observed, e.Expected)
}

// InputShapeError reports a tensor that is not 1x224x224x3.
type InputShapeError struct {
	Observed []int
	Expected []int
	Err      error
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("input tensor shape %v, expected %v: %v", e.Observed, e.Expected, e.Err)
}

func (e *InputShapeError) Unwrap() error { return e.Err }

// ErrInvalidScores is returned when a model emits a score that is not a
// finite probability.
var ErrInvalidScores = errors.New("model produced a score outside [0, 1]")
