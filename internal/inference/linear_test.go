package inference

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedant281104/AgriShield/internal/imaging"
)

// linearJSON builds a grid-1 artifact whose row `favour` weights the red
// channel, so red images score highest there.
func linearJSON(t *testing.T, name string, outputs, favour int) []byte {
	t.Helper()
	weights := make([][]float32, outputs)
	for i := range weights {
		weights[i] = []float32{0, 0, 0}
	}
	weights[favour][0] = 10

	b, err := json.Marshal(linearArtifact{
		Format:  LinearFormat,
		Name:    name,
		Grid:    1,
		Weights: weights,
		Bias:    make([]float32, outputs),
	})
	require.NoError(t, err)
	return b
}

func redTensor() imaging.Tensor {
	t := imaging.NewTensor(imaging.InputShape()...)
	for i := 0; i < len(t.Data); i += 3 {
		t.Data[i] = 1
	}
	return t
}

func TestLinearModel_Predict(t *testing.T) {
	m, err := ParseLinearModel(linearJSON(t, "m2", 14, 5))
	require.NoError(t, err)
	assert.Equal(t, "m2", m.Name())
	assert.Equal(t, 14, m.Outputs())

	scores, err := m.Predict(context.Background(), redTensor())
	require.NoError(t, err)
	require.Len(t, scores, 14)

	var sum float32
	best := 0
	for i, s := range scores {
		sum += s
		if s > scores[best] {
			best = i
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, 5, best)

	// a black image activates nothing, so every class is equally likely
	scores, err = m.Predict(context.Background(), imaging.NewTensor(imaging.InputShape()...))
	require.NoError(t, err)
	for _, s := range scores {
		assert.InDelta(t, 1.0/14, s, 1e-6)
	}
}

func TestLinearModel_PoolsPerCell(t *testing.T) {
	weights := make([][]float32, 2)
	// grid 2: features are 4 cells x 3 channels; row 1 looks at the green
	// channel of the bottom-right cell only
	weights[0] = make([]float32, 12)
	weights[1] = make([]float32, 12)
	weights[1][3*3+1] = 20

	b, err := json.Marshal(linearArtifact{Format: LinearFormat, Name: "cells", Grid: 2, Weights: weights, Bias: []float32{0, 0}})
	require.NoError(t, err)
	m, err := ParseLinearModel(b)
	require.NoError(t, err)

	in := imaging.NewTensor(imaging.InputShape()...)
	for y := 112; y < 224; y++ {
		for x := 112; x < 224; x++ {
			in.Data[(y*224+x)*3+1] = 1
		}
	}

	scores, err := m.Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Greater(t, scores[1], scores[0])
}

func TestLinearModel_RejectsWrongInput(t *testing.T) {
	m, err := ParseLinearModel(linearJSON(t, "m", 3, 0))
	require.NoError(t, err)

	_, err = m.Predict(context.Background(), imaging.NewTensor(224, 224, 3))
	assert.Error(t, err)
}

func TestParseLinearModel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		art  linearArtifact
	}{
		{"wrong format", linearArtifact{Format: "keras-h5", Grid: 1, Weights: [][]float32{{0, 0, 0}}, Bias: []float32{0}}},
		{"grid zero", linearArtifact{Format: LinearFormat, Grid: 0, Weights: [][]float32{{}}, Bias: []float32{0}}},
		{"grid too big", linearArtifact{Format: LinearFormat, Grid: 225, Weights: [][]float32{{0}}, Bias: []float32{0}}},
		{"no outputs", linearArtifact{Format: LinearFormat, Grid: 1}},
		{"bias mismatch", linearArtifact{Format: LinearFormat, Grid: 1, Weights: [][]float32{{0, 0, 0}}, Bias: []float32{0, 0}}},
		{"row too short", linearArtifact{Format: LinearFormat, Grid: 1, Weights: [][]float32{{0, 0}}, Bias: []float32{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.art)
			require.NoError(t, err)
			_, err = ParseLinearModel(b)
			assert.Error(t, err)
		})
	}

	_, err := ParseLinearModel([]byte("{not json"))
	assert.Error(t, err)
}
