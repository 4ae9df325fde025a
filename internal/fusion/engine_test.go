package fusion_test

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/phishguard/phishguard/internal/features"
	"github.com/phishguard/phishguard/internal/fetcher"
	"github.com/phishguard/phishguard/internal/fusion"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/registry"
	"github.com/phishguard/phishguard/internal/typosquat"
)

type stubFetcher struct {
	obs *model.ContentObservation
	err error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*model.ContentObservation, error) {
	return s.obs, s.err
}

type stubClassifier struct {
	verdict *model.ClassifierVerdict
	err     error
}

func (s *stubClassifier) Predict(ctx context.Context, v *model.FeatureVector) (*model.ClassifierVerdict, error) {
	return s.verdict, s.err
}

type stubMatcher struct {
	result *model.ToolkitMatchResult
}

func (s *stubMatcher) Match(obs *model.ContentObservation) *model.ToolkitMatchResult {
	return s.result
}

type stubMonitor struct{ online bool }

func (s *stubMonitor) IsOnline(ctx context.Context) bool { return s.online }

type stubAssessor struct{ signal *model.AITextSignal }

func (s *stubAssessor) Assess(text string, obs *model.ContentObservation) *model.AITextSignal {
	return s.signal
}

func newTestEngine(t *testing.T, cfg *fusion.Config) *fusion.Engine {
	t.Helper()
	reg, err := registry.Load(nil)
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	ext, err := features.NewExtractor(nil, reg, nil)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	ts, err := typosquat.NewAnalyzer(nil, reg, nil)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	if cfg == nil {
		cfg = &fusion.Config{}
	}
	cfg.Registry = reg
	cfg.Extractor = ext
	cfg.Typosquat = ts
	eng, err := fusion.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	if _, err := fusion.NewEngine(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := fusion.NewEngine(&fusion.Config{}); err == nil {
		t.Fatal("expected error for missing registry")
	}
}

// A whitelisted domain short-circuits everything: no other signal, however
// alarming the URL looks lexically, may contribute.
func TestAnalyzeWhitelistShortCircuit(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Classifier: &stubClassifier{verdict: &model.ClassifierVerdict{Label: 1, Probability: 0.99}},
		Fetcher:    &stubFetcher{err: errors.New("must not be called")},
	})

	// Long, keyword-stuffed, hyphenated path on a whitelisted registrable
	// domain: still legitimate with full confidence.
	v := eng.Analyze(context.Background(), "https://login-verify.accounts.google.com/secure-banking-update-confirm/login/verify?account=1&update=1")

	if v.Classification != model.ClassLegitimate {
		t.Fatalf("classification = %s, want legitimate", v.Classification)
	}
	if v.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", v.Confidence)
	}
	if v.RiskScore != 0 {
		t.Errorf("risk = %d, want 0", v.RiskScore)
	}
	if v.AnalysisMode != model.ModeWhitelist {
		t.Errorf("mode = %s, want whitelist", v.AnalysisMode)
	}
}

// A fetch failure degrades to offline analysis instead of propagating.
func TestAnalyzeFetchFailureFallsBackOffline(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Fetcher:      &stubFetcher{err: &fetcher.FetchError{URL: "http://paypa1-login.xyz", Err: errors.New("connection refused")}},
		Connectivity: &stubMonitor{online: true},
	})

	v := eng.Analyze(context.Background(), "http://paypa1-login.xyz/verify")

	if v.AnalysisMode != model.ModeOffline {
		t.Fatalf("mode = %s, want offline", v.AnalysisMode)
	}
	if !strings.HasPrefix(v.Explanation, "[OFFLINE MODE] ") {
		t.Errorf("explanation %q missing offline prefix", v.Explanation)
	}
	if !strings.Contains(v.Explanation, "unreachable") {
		t.Errorf("explanation %q should mention the site was unreachable", v.Explanation)
	}
}

// Offline the engine is a pure function of the URL: two calls agree exactly
// except for the timestamp.
func TestAnalyzeOfflineIdempotent(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: false},
		Fetcher:      &stubFetcher{err: errors.New("must not be called")},
	})

	urls := []string{
		"http://secure-paypal-login.xyz/verify",
		"https://github.com/some/repo",
		"http://xjqzkvw.top",
		"not a url at all",
	}
	for _, u := range urls {
		a := eng.Analyze(context.Background(), u)
		b := eng.Analyze(context.Background(), u)
		b.AnalyzedAt = a.AnalyzedAt
		if !reflect.DeepEqual(a, b) {
			t.Errorf("verdicts for %q differ between calls:\n%+v\n%+v", u, a, b)
		}
	}
}

func TestAnalyzeOfflineTyposquatIsPhishing(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: false},
	})

	v := eng.Analyze(context.Background(), "http://paypa1.com/login")

	if v.Classification != model.ClassPhishing {
		t.Fatalf("classification = %s, want phishing", v.Classification)
	}
	if v.AnalysisMode != model.ModeOffline {
		t.Errorf("mode = %s, want offline", v.AnalysisMode)
	}
	if v.Signals.Typosquat == nil || v.Signals.Typosquat.ImpersonatedBrand != "paypal" {
		t.Errorf("typosquat signal = %+v, want paypal impersonation", v.Signals.Typosquat)
	}
}

// A kit fingerprint outranks both the typosquat and classifier signals.
func TestAnalyzeToolkitOverridesClassification(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: true},
		Fetcher: &stubFetcher{obs: &model.ContentObservation{
			HTMLTitle:   "Sign in",
			QueryParams: []string{"rid"},
		}},
		Matcher: &stubMatcher{result: &model.ToolkitMatchResult{
			Detected:        true,
			ToolkitName:     "Gophish",
			Confidence:      0.9,
			SignaturesFound: []string{"url_param:rid"},
		}},
	})

	v := eng.Analyze(context.Background(), "http://paypa1.com/track?rid=abc123")

	if v.Classification != model.ClassToolkit {
		t.Fatalf("classification = %s, want phishing_kit", v.Classification)
	}
	if v.Confidence < 0.85 {
		t.Errorf("confidence = %v, want >= 0.85", v.Confidence)
	}
	if v.RiskScore < 75 {
		t.Errorf("risk = %d, want >= 75 for a kit match", v.RiskScore)
	}
	if !strings.Contains(v.Explanation, "Gophish") {
		t.Errorf("explanation %q should name the kit", v.Explanation)
	}
}

func TestAnalyzeAITextSignal(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: true},
		Fetcher: &stubFetcher{obs: &model.ContentObservation{
			HTMLTitle: "Account Notice",
			BodyText:  "Dear valued customer, we are writing to inform you that your account requires immediate verification.",
			LinkCount: 1,
		}},
		TextAssessor: &stubAssessor{signal: &model.AITextSignal{
			IsAIGenerated: true,
			Confidence:    0.8,
			Indicators:    []string{"generic greeting", "urgency language"},
		}},
	})

	v := eng.Analyze(context.Background(), "http://account-notice.xyz/")

	if v.Classification != model.ClassAIPhishing {
		t.Fatalf("classification = %s, want ai_generated_phishing", v.Classification)
	}
	if v.Confidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", v.Confidence)
	}
	if v.Signals.AIText == nil {
		t.Error("AI text signal missing from verdict")
	}
}

// The credibility override applies a bounded reduction; it cannot push a
// score below zero and it never fires on sparse pages.
// A suspected impersonation domain serving a substantial, navigable site
// gets exactly the credibility bonus subtracted, and ends up well below what
// the same URL scores without content evidence.
func TestAnalyzeCredibilityOverride(t *testing.T) {
	t.Parallel()

	rich := &model.ContentObservation{
		HTMLTitle:  "Official Bank",
		LinkCount:  50,
		ImageCount: 10,
	}
	// Same page one link short of the override threshold: the only scoring
	// difference between the two fetches is the override itself.
	nearRich := &model.ContentObservation{
		HTMLTitle:  "Official Bank",
		LinkCount:  9,
		ImageCount: 10,
	}

	// Below the online classifier floor, so the classifier contributes
	// offline but not online.
	clf := &stubClassifier{verdict: &model.ClassifierVerdict{Label: 1, Probability: 0.8}}

	// paypa1.com folds to paypal: homoglyph detection, risk_increase 60.
	u := "https://paypa1.com/"

	engRich := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: true},
		Fetcher:      &stubFetcher{obs: rich},
		Classifier:   clf,
	})
	engNear := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: true},
		Fetcher:      &stubFetcher{obs: nearRich},
		Classifier:   clf,
	})
	engOffline := newTestEngine(t, &fusion.Config{Classifier: clf})

	vRich := engRich.Analyze(context.Background(), u)
	vNear := engNear.Analyze(context.Background(), u)
	vOffline := engOffline.Analyze(context.Background(), u)

	if ts := vRich.Signals.Typosquat; ts == nil || ts.RiskIncrease != 60 {
		t.Fatalf("typosquat signal = %+v, want risk_increase 60", vRich.Signals.Typosquat)
	}

	bonus := fusion.DefaultWeights().CredibilityBonus
	if diff := vNear.RiskScore - vRich.RiskScore; diff != bonus {
		t.Errorf("override reduced risk by %d, want exactly %d", diff, bonus)
	}
	if diff := vOffline.RiskScore - vRich.RiskScore; diff < bonus {
		t.Errorf("rich-content risk %d is not at least %d below the offline score %d",
			vRich.RiskScore, bonus, vOffline.RiskScore)
	}
}

// A missing classifier caps confidence and says so in the explanation.
func TestAnalyzeReducedSignalCap(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: false},
		Classifier:   &stubClassifier{err: errors.New("model gone")},
	})

	v := eng.Analyze(context.Background(), "https://example.org/")

	if v.Confidence > 0.6 {
		t.Errorf("confidence = %v, want <= 0.6 without a classifier", v.Confidence)
	}
	if !strings.Contains(v.Explanation, "reduced-signal") {
		t.Errorf("explanation %q should note reduced-signal analysis", v.Explanation)
	}
}

// Every verdict respects the output ranges, whatever garbage goes in.
func TestAnalyzeOutputRanges(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	letters := "abcdefghijklmnopqrstuvwxyz0123456789-._~!$&'()*+,;=:@/?#[]%"
	randURL := func() string {
		n := 1 + rng.Intn(120)
		var sb strings.Builder
		if rng.Intn(2) == 0 {
			sb.WriteString("http://")
		}
		for i := 0; i < n; i++ {
			sb.WriteByte(letters[rng.Intn(len(letters))])
		}
		return sb.String()
	}

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: false},
		Classifier: &stubClassifier{
			verdict: &model.ClassifierVerdict{Label: 1, Probability: 0.999},
		},
	})

	for i := 0; i < 1000; i++ {
		u := randURL()
		v := eng.Analyze(context.Background(), u)
		if v.RiskScore < 0 || v.RiskScore > 100 {
			t.Fatalf("risk %d out of range for %q", v.RiskScore, u)
		}
		if v.Confidence < 0 || v.Confidence > 1 {
			t.Fatalf("confidence %v out of range for %q", v.Confidence, u)
		}
		if v.Classification == "" {
			t.Fatalf("empty classification for %q", u)
		}
	}
}

// Without a fetcher the engine must stay offline even when the monitor says
// the network is up.
func TestAnalyzeNoFetcherForcesOffline(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, &fusion.Config{
		Connectivity: &stubMonitor{online: true},
	})

	v := eng.Analyze(context.Background(), "https://example.org/")
	if v.AnalysisMode != model.ModeOffline {
		t.Fatalf("mode = %s, want offline", v.AnalysisMode)
	}
}
