package fusion

import (
	"context"

	"github.com/phishguard/phishguard/internal/model"
)

// The engine depends on small consumer-defined contracts so tests and
// alternative implementations can stand in for any collaborator.

// FeatureExtractor derives the lexical/host feature vector from a URL.
type FeatureExtractor interface {
	Extract(url string) *model.FeatureVector
}

// TyposquatAnalyzer checks a URL's host for brand impersonation.
type TyposquatAnalyzer interface {
	Analyze(url string) *model.TyposquatResult
}

// KitMatcher scores an observation against known phishing-kit fingerprints.
type KitMatcher interface {
	Match(obs *model.ContentObservation) *model.ToolkitMatchResult
}

// Classifier is the adapter in front of the external model.
type Classifier interface {
	Predict(ctx context.Context, v *model.FeatureVector) (*model.ClassifierVerdict, error)
}

// ContentFetcher obtains a live page snapshot. A single failed fetch
// triggers offline fallback for that call; the engine never retries.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*model.ContentObservation, error)
}

// ConnectivityMonitor reports a point-in-time online/offline signal.
type ConnectivityMonitor interface {
	IsOnline(ctx context.Context) bool
}

// TextAssessor is the optional AI-generated-text signal, consulted only
// when live content text is available.
type TextAssessor interface {
	Assess(text string, obs *model.ContentObservation) *model.AITextSignal
}
