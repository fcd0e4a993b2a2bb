package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/vedant281104/AgriShield/internal/imaging"
)

// LinearFormat identifies the JSON artifact layout read by ParseLinearModel.
const LinearFormat = "agrishield-linear/v1"

// LinearModel average-pools the input into a Grid x Grid x 3 feature vector
// and applies a softmax-linear layer to it.
type LinearModel struct {
	name    string
	grid    int
	weights [][]float32
	bias    []float32
}

type linearArtifact struct {
	Format  string      `json:"format"`
	Name    string      `json:"name"`
	Grid    int         `json:"grid"`
	Weights [][]float32 `json:"weights"`
	Bias    []float32   `json:"bias"`
}

// ParseLinearModel decodes and validates a linear model artifact.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var a linearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse linear model: %w", err)
	}

	if a.Format != LinearFormat {
		return nil, fmt.Errorf("linear model: format %q, want %q", a.Format, LinearFormat)
	}
	if a.Grid < 1 || a.Grid > imaging.Width || a.Grid > imaging.Height {
		return nil, fmt.Errorf("linear model %q: grid %d out of range", a.Name, a.Grid)
	}
	if len(a.Weights) == 0 {
		return nil, fmt.Errorf("linear model %q: no output rows", a.Name)
	}
	if len(a.Bias) != len(a.Weights) {
		return nil, fmt.Errorf("linear model %q: %d bias values for %d outputs", a.Name, len(a.Bias), len(a.Weights))
	}

	features := a.Grid * a.Grid * imaging.Channels
	for i, row := range a.Weights {
		if len(row) != features {
			return nil, fmt.Errorf("linear model %q: row %d has %d weights, want %d", a.Name, i, len(row), features)
		}
	}

	return &LinearModel{name: a.Name, grid: a.Grid, weights: a.Weights, bias: a.Bias}, nil
}

func (m *LinearModel) Name() string { return m.name }

// Outputs is the length of every score vector this model returns.
func (m *LinearModel) Outputs() int { return len(m.weights) }

func (m *LinearModel) Predict(_ context.Context, input imaging.Tensor) ([]float32, error) {
	if err := input.Validate(imaging.InputShape()); err != nil {
		return nil, fmt.Errorf("linear model %q: %w", m.name, err)
	}

	features := m.pool(input)

	logits := make([]float64, len(m.weights))
	maxLogit := math.Inf(-1)
	for i, row := range m.weights {
		z := float64(m.bias[i])
		for j, w := range row {
			z += float64(w) * features[j]
		}
		logits[i] = z
		maxLogit = math.Max(maxLogit, z)
	}

	var sum float64
	for i, z := range logits {
		logits[i] = math.Exp(z - maxLogit)
		sum += logits[i]
	}

	out := make([]float32, len(logits))
	for i, e := range logits {
		out[i] = float32(e / sum)
	}
	return out, nil
}

func (m *LinearModel) pool(t imaging.Tensor) []float64 {
	g := m.grid
	features := make([]float64, g*g*imaging.Channels)

	for cy := 0; cy < g; cy++ {
		y0, y1 := cy*imaging.Height/g, (cy+1)*imaging.Height/g
		for cx := 0; cx < g; cx++ {
			x0, x1 := cx*imaging.Width/g, (cx+1)*imaging.Width/g
			base := (cy*g + cx) * imaging.Channels

			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					for c := 0; c < imaging.Channels; c++ {
						features[base+c] += float64(t.At(y, x, c))
					}
				}
			}

			n := float64((y1 - y0) * (x1 - x0))
			for c := 0; c < imaging.Channels; c++ {
				features[base+c] /= n
			}
		}
	}

	return features
}
