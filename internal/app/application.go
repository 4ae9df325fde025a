// Package app wires the detection components into a runnable application
// shared by the CLI and the API server.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/phishguard/phishguard/internal/aitext"
	"github.com/phishguard/phishguard/internal/classifier"
	"github.com/phishguard/phishguard/internal/connectivity"
	"github.com/phishguard/phishguard/internal/features"
	"github.com/phishguard/phishguard/internal/fetcher"
	"github.com/phishguard/phishguard/internal/fusion"
	"github.com/phishguard/phishguard/internal/history"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/registry"
	"github.com/phishguard/phishguard/internal/toolkit"
	"github.com/phishguard/phishguard/internal/typosquat"
	"github.com/phishguard/phishguard/internal/urlnorm"
	"github.com/phishguard/phishguard/internal/webclient"
)

// ScanResult pairs a verdict with its history record ID. The ID is empty
// when history is disabled.
type ScanResult struct {
	ID      string                  `json:"id,omitempty"`
	Verdict *model.DetectionVerdict `json:"verdict"`
}

// Application holds the wired detection pipeline.
type Application struct {
	cfg     *Config
	engine  *fusion.Engine
	store   *history.Store
	fetcher *fetcher.Fetcher
	logger  logging.Logger
}

// New constructs the full pipeline. A classifier model that fails schema
// validation aborts startup; a model that is merely absent degrades the
// engine instead.
func New(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("phishguard")
	}

	reg, err := registry.Load(logger)
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	extractor, err := features.NewExtractor(nil, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating feature extractor: %w", err)
	}
	analyzer, err := typosquat.NewAnalyzer(nil, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating typosquat analyzer: %w", err)
	}
	matcher, err := toolkit.NewMatcher(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("creating toolkit matcher: %w", err)
	}

	engineCfg := &fusion.Config{
		Registry:     reg,
		Extractor:    extractor,
		Typosquat:    analyzer,
		Matcher:      matcher,
		TextAssessor: aitext.NewAssessor(nil, logger),
		Logger:       logger,
	}

	clf, err := buildClassifier(logger)
	if err != nil {
		return nil, err
	}
	if clf != nil {
		engineCfg.Classifier = clf
	}

	a := &Application{cfg: cfg, logger: logger}

	if !cfg.ForceOffline {
		wc, err := webclient.New(&webclient.Config{
			Backend:   cfg.FetchBackend,
			Timeout:   cfg.FetchTimeout,
			UserAgent: cfg.UserAgent,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating web client: %w", err)
		}
		f, err := fetcher.New(&fetcher.Config{Timeout: cfg.FetchTimeout}, wc, logger)
		if err != nil {
			return nil, fmt.Errorf("creating fetcher: %w", err)
		}
		a.fetcher = f
		engineCfg.Fetcher = f
		engineCfg.Connectivity = connectivity.NewMonitor(nil, logger)
	}

	engine, err := fusion.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("creating fusion engine: %w", err)
	}
	a.engine = engine

	if !cfg.DisableHistory {
		store, err := history.NewStore(&history.Config{StoragePath: cfg.StoragePath}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating history store: %w", err)
		}
		a.store = store
	}

	return a, nil
}

func buildClassifier(logger logging.Logger) (*classifier.Adapter, error) {
	mdl, scaler, err := classifier.LoadLinearModel()
	if err != nil {
		logger.Warn("classifier model unavailable, running reduced-signal",
			logging.Field{Key: "error", Value: err.Error()})
		return nil, nil
	}
	adapter, err := classifier.NewAdapter(nil, mdl, scaler, features.FeatureNames, logger)
	if err != nil {
		var mismatch *classifier.SchemaMismatchError
		if errors.As(err, &mismatch) {
			// A model trained on a different schema would silently
			// misclassify; refuse to start.
			return nil, fmt.Errorf("classifier schema validation: %w", err)
		}
		return nil, fmt.Errorf("creating classifier adapter: %w", err)
	}
	return adapter, nil
}

// Scan analyzes one URL and records the verdict. Input is canonicalized
// first so equivalent spellings share history records; un-normalizable input
// is analyzed as-is and the engine reports it as unparsable.
func (a *Application) Scan(ctx context.Context, rawURL string) (*ScanResult, error) {
	if norm, err := urlnorm.Normalize(rawURL, urlnorm.DefaultOptions()); err == nil {
		rawURL = norm
	}
	v := a.engine.Analyze(ctx, rawURL)
	res := &ScanResult{Verdict: v}
	if a.store != nil {
		id, err := a.store.Save(ctx, v)
		if err != nil {
			// The verdict is still valid; persistence is best-effort.
			a.logger.Warn("failed to persist verdict",
				logging.Field{Key: "url", Value: rawURL},
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			res.ID = id
		}
	}
	return res, nil
}

// ScanBatch analyzes urls in order, stopping early if ctx is cancelled.
func (a *Application) ScanBatch(ctx context.Context, urls []string) ([]*ScanResult, error) {
	out := make([]*ScanResult, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := a.Scan(ctx, u)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// History returns the verdict store, or nil when history is disabled.
func (a *Application) History() *history.Store { return a.store }

// Close releases the fetcher and the history store.
func (a *Application) Close() error {
	var first error
	if a.fetcher != nil {
		if err := a.fetcher.Close(); err != nil {
			first = err
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
