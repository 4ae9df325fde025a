package fusion

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/fetcher"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/registry"
)

const offlinePrefix = "[OFFLINE MODE] "

// Config carries the engine's collaborators. Extractor, Typosquat and
// Registry are required; everything else degrades gracefully when nil.
type Config struct {
	Registry  *registry.Registry
	Extractor FeatureExtractor
	Typosquat TyposquatAnalyzer

	Matcher      KitMatcher          // optional, online only
	Classifier   Classifier          // optional
	Fetcher      ContentFetcher      // optional, forces offline when nil
	Connectivity ConnectivityMonitor // optional, assumed online when nil
	TextAssessor TextAssessor        // optional, online only

	Weights *Weights // nil means DefaultWeights
	Logger  logging.Logger
}

// Engine fuses the individual detection signals into a single verdict. It is
// a three-state machine per call: whitelist short-circuit, online analysis
// with live content, or offline URL-only analysis.
type Engine struct {
	reg       *registry.Registry
	extractor FeatureExtractor
	typosquat TyposquatAnalyzer
	matcher   KitMatcher
	clf       Classifier
	fetcher   ContentFetcher
	monitor   ConnectivityMonitor
	text      TextAssessor
	weights   *Weights
	logger    logging.Logger
	now       func() time.Time
}

func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Registry == nil {
		return nil, errors.New("registry is nil")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("feature extractor is nil")
	}
	if cfg.Typosquat == nil {
		return nil, errors.New("typosquat analyzer is nil")
	}

	w := cfg.Weights
	if w == nil {
		w = DefaultWeights()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Engine{
		reg:       cfg.Registry,
		extractor: cfg.Extractor,
		typosquat: cfg.Typosquat,
		matcher:   cfg.Matcher,
		clf:       cfg.Classifier,
		fetcher:   cfg.Fetcher,
		monitor:   cfg.Connectivity,
		text:      cfg.TextAssessor,
		weights:   w,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Analyze produces a verdict for rawURL. It never returns an error: every
// collaborator failure is absorbed into a degraded verdict instead, because
// the caller always needs an answer.
func (e *Engine) Analyze(ctx context.Context, rawURL string) *model.DetectionVerdict {
	host := hostOf(rawURL)

	if host != "" {
		parts := e.reg.Split(host)
		if e.reg.Whitelisted(parts.Registrable()) {
			e.logger.Debug("whitelist hit", logging.Field{Key: "host", Value: host})
			return e.finish(&model.DetectionVerdict{
				URL:            rawURL,
				Classification: model.ClassLegitimate,
				Confidence:     1.0,
				RiskScore:      0,
				Explanation:    fmt.Sprintf("%s is a whitelisted domain", parts.Registrable()),
				AnalysisMode:   model.ModeWhitelist,
			})
		}
	}

	if e.fetcher != nil && e.isOnline(ctx) {
		return e.analyzeOnline(ctx, rawURL)
	}
	return e.analyzeOffline(ctx, rawURL, nil, "")
}

func (e *Engine) isOnline(ctx context.Context) bool {
	if e.monitor == nil {
		return true
	}
	return e.monitor.IsOnline(ctx)
}

func (e *Engine) analyzeOnline(ctx context.Context, rawURL string) *model.DetectionVerdict {
	ts := e.typosquat.Analyze(rawURL)

	// A broken public suffix cannot resolve; fetching it would only burn
	// the timeout before we fall back anyway.
	if ts.IsTyposquat && ts.Method.Unambiguous() {
		return e.finish(&model.DetectionVerdict{
			URL:            rawURL,
			Classification: model.ClassPhishing,
			Confidence:     0.95,
			RiskScore:      90,
			Explanation:    describeTyposquat(ts),
			AnalysisMode:   model.ModeOnline,
			Signals:        model.Signals{Typosquat: ts},
		})
	}

	obs, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if fetcher.IsFetchError(err) {
			e.logger.Warn("fetch failed, degrading to offline analysis",
				logging.Field{Key: "url", Value: rawURL},
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			e.logger.Error("fetcher returned unexpected error",
				logging.Field{Key: "url", Value: rawURL},
				logging.Field{Key: "error", Value: err.Error()})
		}
		return e.analyzeOffline(ctx, rawURL, ts, "site unreachable; ")
	}

	vec := e.extractor.Extract(rawURL)
	cv := e.predict(ctx, vec, rawURL)

	var tk *model.ToolkitMatchResult
	if e.matcher != nil {
		tk = e.matcher.Match(obs)
	}

	var ai *model.AITextSignal
	if e.text != nil && obs.BodyText != "" {
		ai = e.text.Assess(obs.BodyText, obs)
	}

	risk, factors := e.onlineRisk(obs, ts, cv)

	v := &model.DetectionVerdict{
		URL:          rawURL,
		AnalysisMode: model.ModeOnline,
		Signals: model.Signals{
			Typosquat:  ts,
			Toolkit:    tk,
			Classifier: cv,
			Content:    obs,
			AIText:     ai,
		},
	}

	// Precedence: a kit fingerprint beats everything, the AI-text signal
	// beats typosquatting, typosquatting beats the bare score.
	switch {
	case tk != nil && tk.Detected:
		v.Classification = model.ClassToolkit
		v.Confidence = maxFloat(tk.Confidence, 0.85)
		if risk < 75 {
			risk = 75
		}
		factors = append(factors, fmt.Sprintf("page matches the %s phishing kit", tk.ToolkitName))
	case ai != nil && ai.IsAIGenerated:
		v.Classification = model.ClassAIPhishing
		v.Confidence = maxFloat(ai.Confidence, 0.7)
		if risk < e.weights.WarnThreshold {
			risk = e.weights.WarnThreshold
		}
		factors = append(factors, "page text shows AI-generation markers")
	case ts.IsTyposquat && ts.Method != model.MethodSubdomainAttack:
		v.Classification = model.ClassPhishing
		v.Confidence = 0.85
	case risk >= e.weights.PhishingThreshold:
		v.Classification = model.ClassPhishing
		v.Confidence = 0.9
	case risk >= e.weights.WarnThreshold:
		v.Classification = model.ClassPhishing
		v.Confidence = 0.7
	default:
		v.Classification = model.ClassLegitimate
		v.Confidence = 0.85
		if len(factors) == 0 {
			factors = append(factors, "no phishing indicators found")
		}
	}

	v.RiskScore = model.ClampRisk(risk)
	v.Explanation = strings.Join(factors, "; ")
	if cv == nil {
		e.capReducedSignal(v)
	}
	return e.finish(v)
}

// analyzeOffline runs URL-only analysis. ts may carry a result already
// computed by the online path before its fetch failed; prefix is prepended
// to the explanation in that degraded case.
func (e *Engine) analyzeOffline(ctx context.Context, rawURL string, ts *model.TyposquatResult, prefix string) *model.DetectionVerdict {
	if ts == nil {
		ts = e.typosquat.Analyze(rawURL)
	}

	if ts.IsTyposquat && ts.Method.Unambiguous() {
		return e.finish(&model.DetectionVerdict{
			URL:            rawURL,
			Classification: model.ClassPhishing,
			Confidence:     model.Clamp01(0.95 * e.weights.OfflineConfidenceScale),
			RiskScore:      90,
			Explanation:    offlinePrefix + prefix + describeTyposquat(ts),
			AnalysisMode:   model.ModeOffline,
			Signals:        model.Signals{Typosquat: ts},
		})
	}

	vec := e.extractor.Extract(rawURL)
	cv := e.predict(ctx, vec, rawURL)

	risk, factors := e.offlineRisk(vec, ts, cv)

	v := &model.DetectionVerdict{
		URL:          rawURL,
		RiskScore:    risk,
		AnalysisMode: model.ModeOffline,
		Signals: model.Signals{
			Typosquat:  ts,
			Classifier: cv,
		},
	}

	// Kit and AI verdicts need live content; offline the outcome space is
	// binary.
	switch {
	case ts.IsTyposquat:
		v.Classification = model.ClassPhishing
		v.Confidence = 0.85
	case risk >= e.weights.PhishingThreshold:
		v.Classification = model.ClassPhishing
		v.Confidence = 0.9
	case cv != nil && cv.Label == 1:
		v.Classification = model.ClassPhishing
		v.Confidence = model.Clamp01(cv.Probability)
	default:
		v.Classification = model.ClassLegitimate
		v.Confidence = 0.8
		if len(factors) == 0 {
			factors = append(factors, "no phishing indicators found")
		}
	}

	v.Confidence = model.Clamp01(v.Confidence * e.weights.OfflineConfidenceScale)
	v.Explanation = offlinePrefix + prefix + strings.Join(factors, "; ")
	if cv == nil {
		e.capReducedSignal(v)
	}
	return e.finish(v)
}

// predict wraps the classifier call; a missing or failing model yields nil
// and the verdict is later capped as reduced-signal.
func (e *Engine) predict(ctx context.Context, vec *model.FeatureVector, rawURL string) *model.ClassifierVerdict {
	if e.clf == nil {
		return nil
	}
	cv, err := e.clf.Predict(ctx, vec)
	if err != nil {
		e.logger.Warn("classifier unavailable",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}
	return cv
}

// capReducedSignal lowers confidence when the classifier signal was missing.
// Kit and AI-text verdicts rest on direct evidence and keep their confidence.
func (e *Engine) capReducedSignal(v *model.DetectionVerdict) {
	if v.Classification == model.ClassToolkit || v.Classification == model.ClassAIPhishing {
		return
	}
	if v.Confidence > e.weights.ReducedSignalCap {
		v.Confidence = e.weights.ReducedSignalCap
	}
	v.Explanation += " (classifier unavailable, reduced-signal analysis)"
}

func (e *Engine) finish(v *model.DetectionVerdict) *model.DetectionVerdict {
	v.Confidence = model.Clamp01(v.Confidence)
	v.RiskScore = model.ClampRisk(v.RiskScore)
	v.AnalyzedAt = e.now().UTC()
	e.logger.Info("verdict",
		logging.Field{Key: "url", Value: v.URL},
		logging.Field{Key: "classification", Value: string(v.Classification)},
		logging.Field{Key: "risk", Value: v.RiskScore},
		logging.Field{Key: "mode", Value: string(v.AnalysisMode)})
	return v
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Host == "" {
		// Tolerate bare hosts like "paypal.com/login".
		u, err = url.Parse("http://" + rawURL)
		if err != nil {
			return ""
		}
	}
	return strings.ToLower(u.Hostname())
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
