package toolkit

import (
	"strings"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
)

// Config carries the matcher's reporting thresholds.
type Config struct {
	// MinHits is the number of corroborating signatures required before a
	// kit is reported, unless a single hit reaches HighWeight.
	MinHits int

	// HighWeight is the weight at which one signature alone suffices.
	HighWeight float64
}

// DefaultConfig returns the thresholds the signature table was tuned with.
func DefaultConfig() *Config {
	return &Config{MinHits: 2, HighWeight: 0.5}
}

// Matcher scores a content observation against the known phishing-kit
// fingerprints. Pure function over the observation; it never performs
// network or browser I/O. The compiled signature table is read-only after
// construction, so one Matcher serves concurrent calls.
type Matcher struct {
	cfg    *Config
	kits   []KitSignatures
	logger logging.Logger
}

// NewMatcher loads and compiles the embedded signature table.
func NewMatcher(cfg *Config, logger logging.Logger) (*Matcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	kits, err := loadSignatures()
	if err != nil {
		return nil, err
	}
	l := logger.With(logging.Field{Key: "component", Value: "toolkit-matcher"})
	l.Info("toolkit signature table loaded", logging.Field{Key: "kits", Value: len(kits)})
	return &Matcher{cfg: cfg, kits: kits, logger: l}, nil
}

// Match accumulates matched signature weights per toolkit and reports the
// strongest kit that clears the threshold: MinHits independent signatures,
// or one hit of weight >= HighWeight. Confidence is the capped weight sum,
// a relative strength score rather than a probability.
func (m *Matcher) Match(obs *model.ContentObservation) *model.ToolkitMatchResult {
	if obs == nil {
		return &model.ToolkitMatchResult{}
	}

	best := &model.ToolkitMatchResult{}
	bestWeight := 0.0

	for _, kit := range m.kits {
		weight := 0.0
		maxHit := 0.0
		var found []string

		for i := range kit.Signatures {
			sig := &kit.Signatures[i]
			if !m.matches(sig, obs) {
				continue
			}
			weight += sig.Weight
			if sig.Weight > maxHit {
				maxHit = sig.Weight
			}
			found = append(found, sig.ID)
		}

		if len(found) < m.cfg.MinHits && maxHit < m.cfg.HighWeight {
			continue
		}
		if weight > bestWeight {
			bestWeight = weight
			best = &model.ToolkitMatchResult{
				Detected:        true,
				ToolkitName:     kit.Name,
				Confidence:      model.Clamp01(weight),
				SignaturesFound: found,
			}
		}
	}

	if best.Detected {
		m.logger.Info("phishing kit detected",
			logging.Field{Key: "toolkit", Value: best.ToolkitName},
			logging.Field{Key: "confidence", Value: best.Confidence},
			logging.Field{Key: "signatures", Value: len(best.SignaturesFound)})
	}
	return best
}

func (m *Matcher) matches(sig *Signature, obs *model.ContentObservation) bool {
	switch sig.Kind {
	case KindURLParam:
		for _, p := range obs.QueryParams {
			if strings.ToLower(p) == sig.Pattern {
				return true
			}
		}
	case KindHeader:
		if obs.ResponseHeaders == nil {
			return false
		}
		return obs.ResponseHeaders.Get(sig.Pattern) != ""
	case KindCookie:
		for _, c := range obs.Cookies {
			if sig.re.MatchString(c.Name) {
				return true
			}
		}
	case KindFormFields:
		for _, form := range obs.Forms {
			if containsAll(form.InputNames, sig.fields) {
				return true
			}
		}
	case KindBody:
		return sig.re.MatchString(obs.BodyExcerpt)
	case KindTitle:
		return sig.re.MatchString(obs.HTMLTitle)
	case KindHost:
		return sig.re.MatchString(obs.FinalURL)
	}
	return false
}

// containsAll reports whether every wanted name appears among the form's
// input names.
func containsAll(names, wanted []string) bool {
	for _, w := range wanted {
		ok := false
		for _, n := range names {
			if strings.ToLower(n) == w {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
