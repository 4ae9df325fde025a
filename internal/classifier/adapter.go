package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
)

// ErrModelUnavailable marks the external classifier as unreachable. The
// fusion engine checks for it with errors.Is and degrades to a
// reduced-signal verdict instead of failing the call.
var ErrModelUnavailable = errors.New("classifier: model unavailable")

// SchemaMismatchError reports a disagreement between the model's expected
// feature schema and the extractor's output names. It is fatal at startup;
// a service must not serve traffic with a mismatched schema.
type SchemaMismatchError struct {
	ModelVersion string
	Missing      []string // model features absent from the extractor schema
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("classifier: model %s expects features missing from extractor schema: %v",
		e.ModelVersion, e.Missing)
}

// Model is the contract with the external classifier: a vector in the
// model's own feature order and scale goes in, a label and probability come
// out. Implementations may be remote; calls are wrapped with a timeout.
type Model interface {
	// Version identifies the model artifact.
	Version() string

	// FeatureNames returns the feature names in the exact order the model
	// expects its input vector.
	FeatureNames() []string

	// Predict classifies a scaled feature vector. label is 0 (legitimate)
	// or 1 (phishing); probability is the model's confidence in the
	// phishing class.
	Predict(ctx context.Context, scaled []float64) (label int, probability float64, err error)
}

// Config carries the adapter's call policy.
type Config struct {
	// PredictTimeout bounds a single model call. Classifier calls are
	// expected to be fast; a slow model counts as unavailable.
	PredictTimeout time.Duration
}

// DefaultConfig returns the adapter defaults.
func DefaultConfig() *Config {
	return &Config{PredictTimeout: 2 * time.Second}
}

// Adapter maps a FeatureVector onto the model's expected input order and
// scale and interprets the model's raw output. It owns no detection logic.
type Adapter struct {
	cfg    *Config
	mdl    Model
	scaler *Scaler
	logger logging.Logger
}

// NewAdapter validates the model schema against the extractor's feature
// names once, at startup. Every feature the model expects must exist in the
// extractor schema; a mismatch returns *SchemaMismatchError and must prevent
// the service from starting.
func NewAdapter(cfg *Config, mdl Model, scaler *Scaler, extractorNames []string, logger logging.Logger) (*Adapter, error) {
	if mdl == nil {
		return nil, errors.New("classifier: nil model")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	known := make(map[string]struct{}, len(extractorNames))
	for _, n := range extractorNames {
		known[n] = struct{}{}
	}
	var missing []string
	for _, n := range mdl.FeatureNames() {
		if _, ok := known[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{ModelVersion: mdl.Version(), Missing: missing}
	}
	if scaler != nil {
		if err := scaler.validate(len(mdl.FeatureNames())); err != nil {
			return nil, err
		}
	}

	l := logger.With(logging.Field{Key: "component", Value: "classifier-adapter"})
	l.Info("classifier schema validated",
		logging.Field{Key: "model_version", Value: mdl.Version()},
		logging.Field{Key: "features", Value: len(mdl.FeatureNames())})

	return &Adapter{cfg: cfg, mdl: mdl, scaler: scaler, logger: l}, nil
}

// Predict reorders and zero-fills the vector to the model schema, applies
// the training-time scaling, invokes the model and clamps its probability.
// An unreachable or timed-out model yields ErrModelUnavailable rather than a
// default verdict; degrading is the fusion engine's decision.
func (a *Adapter) Predict(ctx context.Context, v *model.FeatureVector) (*model.ClassifierVerdict, error) {
	names := a.mdl.FeatureNames()
	in := make([]float64, len(names))
	for i, n := range names {
		in[i] = v.Get(n) // unset features default to 0
	}
	if a.scaler != nil {
		in = a.scaler.Transform(in)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.PredictTimeout)
	defer cancel()

	label, prob, err := a.mdl.Predict(ctx, in)
	if err != nil {
		a.logger.Warn("model call failed",
			logging.Field{Key: "model_version", Value: a.mdl.Version()},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if label != 0 && label != 1 {
		label = 0
	}
	return &model.ClassifierVerdict{
		Label:       label,
		Probability: model.Clamp01(prob),
	}, nil
}

// Scaler applies the z-score normalization fitted at training time.
type Scaler struct {
	Means  []float64
	Scales []float64
}

func (s *Scaler) validate(n int) error {
	if len(s.Means) != n || len(s.Scales) != n {
		return fmt.Errorf("classifier: scaler has %d/%d parameters for %d features",
			len(s.Means), len(s.Scales), n)
	}
	return nil
}

// Transform returns (x - mean) / scale per feature. A zero scale passes the
// centered value through unscaled.
func (s *Scaler) Transform(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		centered := x - s.Means[i]
		if s.Scales[i] != 0 {
			centered /= s.Scales[i]
		}
		out[i] = centered
	}
	return out
}
