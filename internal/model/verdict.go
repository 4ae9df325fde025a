package model

import "time"

// Classification is the final 4-way verdict for a URL.
type Classification string

const (
	ClassLegitimate Classification = "legitimate"
	ClassPhishing   Classification = "phishing"
	ClassAIPhishing Classification = "ai_generated_phishing"
	ClassToolkit    Classification = "phishing_kit"
)

// AnalysisMode records which state of the fusion engine produced a verdict.
type AnalysisMode string

const (
	ModeOnline    AnalysisMode = "online"
	ModeOffline   AnalysisMode = "offline"
	ModeWhitelist AnalysisMode = "whitelist"
)

// Signals bundles the per-component evidence that fed a verdict. Pointers
// are nil when the corresponding component did not run for this call.
type Signals struct {
	Typosquat  *TyposquatResult    `json:"typosquat,omitempty"`
	Toolkit    *ToolkitMatchResult `json:"toolkit,omitempty"`
	Classifier *ClassifierVerdict  `json:"classifier,omitempty"`
	Content    *ContentObservation `json:"content,omitempty"`
	AIText     *AITextSignal       `json:"ai_text,omitempty"`
}

// DetectionVerdict is the fusion engine's final output for one analysis call.
// It is constructed once, never mutated, and has no identity beyond the call
// (the history store assigns its own IDs when persisting).
type DetectionVerdict struct {
	URL            string         `json:"url"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"` // 0.0 - 1.0
	RiskScore      int            `json:"risk_score"` // 0 - 100
	Explanation    string         `json:"explanation"`
	AnalysisMode   AnalysisMode   `json:"analysis_mode"`
	Signals        Signals        `json:"signals"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
}

// Clamp01 clamps v to [0, 1]. Every confidence, probability and similarity
// placed in a result object goes through this so intermediate arithmetic can
// never leak out of range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampRisk clamps a risk score to [0, 100].
func ClampRisk(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
