// Package ensemble fuses two pest classifiers into a single verdict.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vedant281104/AgriShield/internal/imaging"
	"github.com/vedant281104/AgriShield/internal/inference"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/pest"
)

// Result is the fused verdict for one image. Confidence is the fused score of
// Label and lies in [0, 1].
type Result struct {
	Label      pest.Label
	Confidence float32
}

// ConfidencePercent is Confidence scaled to 0-100.
func (r Result) ConfidencePercent() float64 {
	return float64(r.Confidence) * 100
}

// Classifier runs a primary and a secondary model on the same input and
// averages their score vectors. No confidence threshold is applied: the
// argmax label is always returned.
type Classifier struct {
	primary    inference.Model
	secondary  inference.Model
	labels     []pest.Label
	normalizer *imaging.Normalizer
	logger     logging.Logger
}

type Option func(*Classifier)

// WithLabels overrides the label space. Index i of every score vector maps
// to labels[i].
func WithLabels(labels []pest.Label) Option {
	return func(c *Classifier) { c.labels = slices.Clone(labels) }
}

func WithNormalizer(n *imaging.Normalizer) Option {
	return func(c *Classifier) { c.normalizer = n }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

func New(primary, secondary inference.Model, opts ...Option) *Classifier {
	c := &Classifier{
		primary:    primary,
		secondary:  secondary,
		labels:     pest.Labels(),
		normalizer: imaging.NewNormalizer(),
		logger:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Labels returns the label space in score order.
func (c *Classifier) Labels() []pest.Label {
	return slices.Clone(c.labels)
}

// Classify normalizes raw image bytes and classifies them. Undecodable input
// fails with an error matching imaging.ErrDecode.
func (c *Classifier) Classify(ctx context.Context, image []byte) (*Result, error) {
	t, err := c.normalizer.Normalize(image)
	if err != nil {
		return nil, err
	}
	return c.ClassifyTensor(ctx, t)
}

// ClassifyTensor runs both models on t and resolves the fused scores to a
// label.
func (c *Classifier) ClassifyTensor(ctx context.Context, t imaging.Tensor) (*Result, error) {
	if err := t.Validate(imaging.InputShape()); err != nil {
		return nil, &InputShapeError{Observed: slices.Clone(t.Shape), Expected: imaging.InputShape(), Err: err}
	}

	var primary, secondary []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = c.primary.Predict(gctx, t)
		if err != nil {
			return fmt.Errorf("primary model: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		secondary, err = c.secondary.Predict(gctx, t)
		if err != nil {
			return fmt.Errorf("secondary model: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := c.checkShape(ctx, "primary", primary); err != nil {
		return nil, err
	}
	if err := c.checkShape(ctx, "secondary", secondary); err != nil {
		return nil, err
	}

	fused := Fuse(primary, secondary)

	best := 0
	for i, s := range fused {
		if math.IsNaN(float64(s)) || s < 0 || s > 1 {
			return nil, fmt.Errorf("%w: index %d is %v", ErrInvalidScores, i, s)
		}
		if s > fused[best] {
			best = i
		}
	}

	return &Result{Label: c.labels[best], Confidence: fused[best]}, nil
}

// Probe runs both models once on a blank tensor. Deployments call it at
// startup so a model/label mismatch stops the process instead of failing
// every request.
func (c *Classifier) Probe(ctx context.Context) error {
	_, err := c.ClassifyTensor(ctx, imaging.NewTensor(imaging.InputShape()...))
	return err
}

func (c *Classifier) checkShape(ctx context.Context, model string, scores []float32) error {
	if len(scores) == len(c.labels) {
		return nil
	}
	err := &ShapeMismatchError{Model: model, Observed: len(scores), Expected: len(c.labels)}
	c.logger.Error(ctx, "configuration fault", "error", err)
	return err
}

// Fuse returns the element-wise arithmetic mean of a and b, which must have
// equal length. The result is not renormalized.
func Fuse(a, b []float32) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}

// IsConfigurationFault reports whether err comes from a model/label mismatch
// rather than from the request.
func IsConfigurationFault(err error) bool {
	var sm *ShapeMismatchError
	return errors.As(err, &sm)
}
