package aitext

import (
	"strings"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
)

// Assessor estimates whether page text was machine-generated. AI-written
// phishing copy tends toward overly formal stock phrases, urgency language
// and generic greetings, wrapped in a minimal page that still carries a
// login form. This is a heuristic stand-in for a heavier language model; it
// satisfies the same assess-text contract.
type Assessor struct {
	cfg    *Config
	logger logging.Logger
}

// Config carries the detection threshold.
type Config struct {
	// Threshold is the score at or above which text is reported as
	// AI-generated.
	Threshold float64
}

// DefaultConfig returns the tuned threshold.
func DefaultConfig() *Config {
	return &Config{Threshold: 0.5}
}

var aiPhrases = []string{
	"we have detected unusual activity",
	"for your security",
	"please take a moment",
	"we appreciate your prompt attention",
	"failure to comply",
	"your account has been temporarily",
	"kindly verify",
	"as part of our ongoing commitment",
}

var urgencyWords = []string{
	"immediately", "urgent", "expires", "suspended", "locked", "verify now", "act now",
}

var genericGreetings = []string{
	"dear customer", "dear user", "dear valued", "dear member", "dear account holder",
}

// NewAssessor constructs an Assessor. cfg and logger may be nil.
func NewAssessor(cfg *Config, logger logging.Logger) *Assessor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Assessor{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "aitext-assessor"}),
	}
}

// Assess scores the page text and DOM shape for AI-generation cues. obs may
// be nil when only raw text is available.
func (a *Assessor) Assess(text string, obs *model.ContentObservation) *model.AITextSignal {
	if strings.TrimSpace(text) == "" {
		return &model.AITextSignal{}
	}

	lower := strings.ToLower(text)
	score := 0.0
	var indicators []string

	for _, phrase := range aiPhrases {
		if strings.Contains(lower, phrase) {
			score += 0.1
			indicators = append(indicators, "phrase: "+phrase)
		}
	}

	urgency := 0
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			urgency++
		}
	}
	if urgency >= 2 {
		score += 0.2
		indicators = append(indicators, "multiple urgency words")
	}

	for _, g := range genericGreetings {
		if strings.Contains(lower, g) {
			score += 0.15
			indicators = append(indicators, "generic greeting: "+g)
			break
		}
	}

	// Minimal but well-structured page with a credential form is the
	// typical shape of generated phishing landing pages.
	if obs != nil && obs.HasPasswordInput && obs.LinkCount < 5 && obs.FormCount <= 2 {
		score += 0.2
		indicators = append(indicators, "minimal page with credential form")
	}

	score = model.Clamp01(score)
	return &model.AITextSignal{
		IsAIGenerated: score >= a.cfg.Threshold,
		Confidence:    score,
		Indicators:    indicators,
	}
}
