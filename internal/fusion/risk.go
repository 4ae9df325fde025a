package fusion

import (
	"fmt"

	"github.com/phishguard/phishguard/internal/model"
)

// offlineRisk computes the risk score from URL-only evidence: the feature
// vector, the typosquat result and the classifier verdict. It is a pure,
// deterministic function of its inputs; calling it twice on the same URL
// with no state change yields identical output.
func (e *Engine) offlineRisk(vec *model.FeatureVector, ts *model.TyposquatResult, cv *model.ClassifierVerdict) (int, []string) {
	w := e.weights
	score := 0
	var factors []string

	if cv != nil && cv.Label == 1 {
		pts := int(cv.Probability * float64(w.ClassifierMax))
		score += pts
		factors = append(factors, fmt.Sprintf("classifier predicts phishing (%.0f%% probability)", cv.Probability*100))
	}

	if ts != nil && ts.IsTyposquat {
		score += ts.RiskIncrease
		factors = append(factors, describeTyposquat(ts))
	}

	if int(vec.Get("url_length")) > w.URLLengthThreshold {
		score += w.URLLengthPenalty
		factors = append(factors, "unusually long URL")
	}
	if int(vec.Get("path_length")) > w.PathLengthThreshold {
		score += w.PathLengthPenalty
	}
	if vec.Get("is_ip_address") > 0 {
		score += w.IPAddressPenalty
		factors = append(factors, "URL uses an IP address instead of a domain name")
	}
	if n := int(vec.Get("has_suspicious_words")); n > 0 {
		pts := n * w.SuspiciousWordUnit
		if pts > w.SuspiciousWordCap {
			pts = w.SuspiciousWordCap
		}
		score += pts
		factors = append(factors, "URL contains suspicious keywords like 'login' or 'verify'")
	}
	if vec.Get("is_https") == 0 {
		score += w.NoTLSPenalty
		factors = append(factors, "connection is not secure (no HTTPS)")
	}
	if vec.Get("entropy") > w.EntropyThreshold {
		score += w.EntropyPenalty
	}

	// With no content evidence available to contradict it, the
	// looks-generated flag carries a large penalty.
	if vec.Get("looks_generated") > 0 {
		score += w.GeneratedPenalty
		factors = append(factors, "high-entropy domain name with no recognizable pattern")
	}
	if vec.Get("domain_entropy") > w.DomainEntropyLimit {
		score += w.DomainEntropyPenalty
	}

	if int(vec.Get("num_hyphens")) > w.HyphenLimit {
		score += w.HyphenPenalty
	}
	if int(vec.Get("subdomain_count")) > w.SubdomainLimit {
		score += w.SubdomainPenalty
	}
	if vec.Get("num_at") > 0 {
		score += w.AtSignPenalty
		factors = append(factors, "URL contains an @ sign")
	}

	return model.ClampRisk(score), factors
}

// onlineRisk computes the risk score from content-derived signals. The
// offline lexical heuristics are deliberately absent here: a page we have
// actually rendered speaks for itself, and the looks-generated flag is
// suppressed entirely in this mode.
func (e *Engine) onlineRisk(obs *model.ContentObservation, ts *model.TyposquatResult, cv *model.ClassifierVerdict) (int, []string) {
	w := e.weights
	score := 0
	var factors []string

	impersonation := ts != nil && ts.IsTyposquat && !ts.Method.Unambiguous()
	if impersonation {
		score += w.ImpersonationRisk
		factors = append(factors, describeTyposquat(ts))
		if obs.HasPasswordInput {
			// Brand impersonation plus credential harvesting is a
			// near-certain signal.
			score += w.CredentialHarvestRisk
			factors = append(factors, "password input on a suspected impersonation site")
		}
	}

	if obs.LinkCount < 3 && obs.ImageCount < 2 && obs.HTMLTitle == "" {
		score += w.MinimalContentRisk
		factors = append(factors, "minimal page content (single-page phishing landing pattern)")
	}

	if obs.FormCount > 3 || obs.InputCount > 10 {
		score += w.ExcessiveInputsRisk
		factors = append(factors, "excessive form inputs (credential harvesting pattern)")
	}
	if obs.IframeCount > 2 {
		score += w.IframeRisk
		factors = append(factors, "multiple iframes")
	}

	if cv != nil && cv.Label == 1 && cv.Probability >= w.OnlineClassifierFloor {
		score += int(cv.Probability * float64(w.OnlineClassifierMax))
		factors = append(factors, fmt.Sprintf("classifier predicts phishing (%.0f%% probability)", cv.Probability*100))
	}

	// Credibility override: a real, navigable site is strong
	// counter-evidence against lexical suspicion.
	if obs.LinkCount >= w.CredibilityMinLinks && len(obs.HTMLTitle) > 3 {
		before := score
		score -= w.CredibilityBonus
		if score < 0 {
			score = 0
		}
		if before > score {
			factors = append(factors, fmt.Sprintf("substantial page content (credibility override, -%d)", before-score))
		}
	}

	return model.ClampRisk(score), factors
}

func describeTyposquat(ts *model.TyposquatResult) string {
	switch ts.Method {
	case model.MethodFaultyExtension, model.MethodInvalidExtension:
		return ts.Detail
	case model.MethodBrandInDomain, model.MethodEditDistance, model.MethodHomoglyph, model.MethodSubdomainAttack:
		return fmt.Sprintf("brand impersonation of %q (%s)", ts.ImpersonatedBrand, ts.Method)
	case model.MethodNone:
		return ""
	}
	return string(ts.Method)
}
