package classifier

import (
	"context"
	"embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

//go:embed data/model.yaml
var modelFS embed.FS

// LinearModel is a logistic-regression classifier loaded from an embedded
// parameter file. It is the process-local implementation of the Model
// contract; a remote model service would satisfy the same interface.
type LinearModel struct {
	version  string
	features []string
	weights  []float64
	bias     float64
}

type modelFile struct {
	Version  string    `yaml:"version"`
	Features []string  `yaml:"features"`
	Weights  []float64 `yaml:"weights"`
	Bias     float64   `yaml:"bias"`
	Means    []float64 `yaml:"means"`
	Scales   []float64 `yaml:"scales"`
}

// LoadLinearModel reads the embedded model parameters. The returned scaler
// carries the normalization fitted when the model was trained and must be
// passed to the adapter alongside the model.
func LoadLinearModel() (*LinearModel, *Scaler, error) {
	raw, err := modelFS.ReadFile("data/model.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("classifier: read model file: %w", err)
	}
	var f modelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("classifier: parse model file: %w", err)
	}
	if len(f.Features) == 0 {
		return nil, nil, fmt.Errorf("classifier: model file declares no features")
	}
	if len(f.Weights) != len(f.Features) {
		return nil, nil, fmt.Errorf("classifier: %d weights for %d features", len(f.Weights), len(f.Features))
	}
	if len(f.Means) != len(f.Features) || len(f.Scales) != len(f.Features) {
		return nil, nil, fmt.Errorf("classifier: scaler parameters do not cover all features")
	}

	m := &LinearModel{
		version:  f.Version,
		features: f.Features,
		weights:  f.Weights,
		bias:     f.Bias,
	}
	return m, &Scaler{Means: f.Means, Scales: f.Scales}, nil
}

func (m *LinearModel) Version() string { return m.version }

func (m *LinearModel) FeatureNames() []string {
	out := make([]string, len(m.features))
	copy(out, m.features)
	return out
}

// Predict computes the logistic score over the scaled input. It respects ctx
// cancellation for contract parity with remote models, though the local
// computation never blocks.
func (m *LinearModel) Predict(ctx context.Context, scaled []float64) (int, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if len(scaled) != len(m.weights) {
		return 0, 0, fmt.Errorf("classifier: input has %d features, model expects %d", len(scaled), len(m.weights))
	}
	z := m.bias
	for i, x := range scaled {
		z += m.weights[i] * x
	}
	prob := 1 / (1 + math.Exp(-z))
	label := 0
	if prob >= 0.5 {
		label = 1
	}
	return label, prob, nil
}
