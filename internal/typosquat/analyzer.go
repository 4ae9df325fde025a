package typosquat

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/idna"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/registry"
)

// Config carries the analyzer's tunable thresholds.
type Config struct {
	// SimilarityThreshold is the normalized Levenshtein similarity above
	// which a non-exact match counts as typosquatting.
	SimilarityThreshold float64
}

// DefaultConfig returns the thresholds the analyzer was tuned with.
func DefaultConfig() *Config {
	return &Config{SimilarityThreshold: 0.85}
}

// Analyzer checks a domain against the brand registry, the confusable table
// and the public-suffix table. It holds only read-only registry references,
// so one Analyzer serves any number of concurrent calls.
type Analyzer struct {
	cfg      *Config
	reg      *registry.Registry
	brands   []string // sorted for deterministic first-match results
	suffixes []string // sorted, same reason
	logger   logging.Logger
}

// NewAnalyzer constructs an Analyzer. reg must be non-nil.
func NewAnalyzer(cfg *Config, reg *registry.Registry, logger logging.Logger) (*Analyzer, error) {
	if reg == nil {
		return nil, errors.New("typosquat: nil registry")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	brands := make([]string, 0, len(reg.Brands))
	for b := range reg.Brands {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	suffixes := make([]string, 0, len(reg.TLDs))
	for s := range reg.TLDs {
		suffixes = append(suffixes, s)
	}
	sort.Strings(suffixes)
	return &Analyzer{
		cfg:      cfg,
		reg:      reg,
		brands:   brands,
		suffixes: suffixes,
		logger:   logger.With(logging.Field{Key: "component", Value: "typosquat-analyzer"}),
	}, nil
}

// Analyze runs the ordered detection pipeline against the URL's host.
// The first matching check wins:
//
//  1. public-suffix validity (invalid_extension / faulty_extension)
//  2. exact brand name embedded in a non-canonical domain
//  3. edit distance against canonical brand labels
//  4. homoglyph fold followed by a second edit-distance pass
//  5. brand name hidden in a subdomain label
//
// Checks 2-5 never fire for a brand's own canonical domains.
func (a *Analyzer) Analyze(rawURL string) *model.TyposquatResult {
	host := hostOf(rawURL)
	if host == "" || net.ParseIP(host) != nil {
		return clean()
	}

	parts := a.reg.Split(host)

	if res := a.checkSuffix(parts); res != nil {
		return res
	}
	// A brand's own canonical domain is exempt from every impersonation
	// check, including lookalike checks against other brands (metamask.io
	// must not trip the "meta" brand).
	if a.anyCanonical(parts) {
		return clean()
	}
	if res := a.checkBrandInDomain(parts); res != nil {
		return res
	}
	if res := a.checkEditDistance(parts); res != nil {
		return res
	}
	if res := a.checkHomoglyphs(parts); res != nil {
		return res
	}
	if res := a.checkSubdomain(parts); res != nil {
		return res
	}
	return clean()
}

func clean() *model.TyposquatResult {
	return &model.TyposquatResult{Method: model.MethodNone}
}

// checkSuffix validates the registrable suffix against the public-suffix
// table. An unknown suffix one edit away from a known one is a near-certain
// typo (".pom" for ".com"); anything else unknown is simply invalid. Both
// are unambiguous and short-circuit the pipeline. The suffix table is
// walked in sorted order so a suffix with several one-edit neighbors
// always reports the same one.
func (a *Analyzer) checkSuffix(parts registry.DomainParts) *model.TyposquatResult {
	if parts.SuffixKnown || parts.Suffix == "" {
		return nil
	}
	for _, known := range a.suffixes {
		if fuzzy.LevenshteinDistance(parts.Suffix, known) == 1 {
			return &model.TyposquatResult{
				IsTyposquat:     true,
				Method:          model.MethodFaultyExtension,
				SimilarityScore: 0.95,
				RiskIncrease:    60,
				Detail:          fmt.Sprintf("suffix %q looks like a typo of %q", parts.Suffix, known),
			}
		}
	}
	return &model.TyposquatResult{
		IsTyposquat:     true,
		Method:          model.MethodInvalidExtension,
		SimilarityScore: 0.9,
		RiskIncrease:    55,
		Detail:          fmt.Sprintf("suffix %q is not a recognized public suffix", parts.Suffix),
	}
}

// checkBrandInDomain fires when a protected brand name is a substring of the
// domain label but the domain is not one of that brand's canonical domains.
func (a *Analyzer) checkBrandInDomain(parts registry.DomainParts) *model.TyposquatResult {
	for _, brand := range a.brands {
		canonical := a.reg.Brands[brand]
		if isCanonical(parts, canonical) {
			continue
		}
		if strings.Contains(parts.Domain, brand) {
			return &model.TyposquatResult{
				IsTyposquat:       true,
				ImpersonatedBrand: brand,
				Method:            model.MethodBrandInDomain,
				SimilarityScore:   0.9,
				RiskIncrease:      50,
				Detail:            fmt.Sprintf("domain contains %q but is not a legitimate %s domain", brand, brand),
			}
		}
	}
	return nil
}

// checkEditDistance compares the domain label to each canonical brand label
// by normalized Levenshtein similarity.
func (a *Analyzer) checkEditDistance(parts registry.DomainParts) *model.TyposquatResult {
	for _, brand := range a.brands {
		canonical := a.reg.Brands[brand]
		if isCanonical(parts, canonical) {
			continue
		}
		sim := a.bestSimilarity(parts.Domain, brand, canonical)
		if sim > a.cfg.SimilarityThreshold && sim < 1.0 {
			return &model.TyposquatResult{
				IsTyposquat:       true,
				ImpersonatedBrand: brand,
				Method:            model.MethodEditDistance,
				SimilarityScore:   model.Clamp01(sim),
				RiskIncrease:      model.ClampRisk(int(sim * 60)),
				Detail:            fmt.Sprintf("domain %q is %.0f%% similar to %q", parts.Domain, sim*100, brand),
			}
		}
	}
	return nil
}

// checkHomoglyphs decodes the IDN label, folds every confusable character to
// its Latin lookalike and re-runs the edit-distance comparison on the folded
// string. Runs after the plain edit-distance pass so ASCII-only near-misses
// are not counted twice.
func (a *Analyzer) checkHomoglyphs(parts registry.DomainParts) *model.TyposquatResult {
	decoded := parts.Domain
	if strings.HasPrefix(decoded, "xn--") {
		if uni, err := idna.Lookup.ToUnicode(decoded); err == nil {
			decoded = uni
		}
	}
	folded := a.reg.FoldConfusables(decoded)
	if folded == parts.Domain {
		return nil // nothing was substituted
	}

	for _, brand := range a.brands {
		canonical := a.reg.Brands[brand]
		if isCanonical(parts, canonical) {
			continue
		}
		sim := a.bestSimilarity(folded, brand, canonical)
		if folded == brand || strings.Contains(folded, brand) || sim > a.cfg.SimilarityThreshold {
			return &model.TyposquatResult{
				IsTyposquat:       true,
				ImpersonatedBrand: brand,
				Method:            model.MethodHomoglyph,
				SimilarityScore:   0.95,
				RiskIncrease:      60,
				Detail:            fmt.Sprintf("domain uses character substitution to mimic %q", brand),
			}
		}
	}
	return nil
}

// checkSubdomain fires when a brand name appears only in a subdomain label
// while the registrable domain itself is unrelated (paypal.attacker.com).
func (a *Analyzer) checkSubdomain(parts registry.DomainParts) *model.TyposquatResult {
	if parts.Subdomain == "" {
		return nil
	}
	for _, brand := range a.brands {
		canonical := a.reg.Brands[brand]
		if isCanonical(parts, canonical) {
			continue
		}
		for _, label := range parts.SubdomainLabels() {
			if strings.Contains(label, brand) {
				return &model.TyposquatResult{
					IsTyposquat:       true,
					ImpersonatedBrand: brand,
					Method:            model.MethodSubdomainAttack,
					SimilarityScore:   0.85,
					RiskIncrease:      45,
					Detail:            fmt.Sprintf("uses %q in a subdomain of unrelated domain %q", brand, parts.Registrable()),
				}
			}
		}
	}
	return nil
}

// bestSimilarity returns the highest normalized Levenshtein similarity of
// label against the brand name and each canonical domain's registrable label.
func (a *Analyzer) bestSimilarity(label, brand string, canonical []string) float64 {
	best := similarity(label, brand)
	for _, dom := range canonical {
		canonLabel, _, _ := strings.Cut(dom, ".")
		if s := similarity(label, canonLabel); s > best {
			best = s
		}
	}
	return best
}

// similarity is 1 - dist/maxLen, so 1.0 means identical strings.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	max := len([]rune(a))
	if l := len([]rune(b)); l > max {
		max = l
	}
	if max == 0 {
		return 1
	}
	d := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(d)/float64(max)
}

// anyCanonical reports whether the host belongs to any protected brand.
func (a *Analyzer) anyCanonical(parts registry.DomainParts) bool {
	for _, canonical := range a.reg.Brands {
		if isCanonical(parts, canonical) {
			return true
		}
	}
	return false
}

// isCanonical reports whether the host is one of the brand's own domains,
// including legitimate subdomains of them.
func isCanonical(parts registry.DomainParts, canonical []string) bool {
	registrable := parts.Registrable()
	full := parts.FullHost()
	for _, dom := range canonical {
		if registrable == dom || full == dom || strings.HasSuffix(full, "."+dom) {
			return true
		}
	}
	return false
}

// hostOf extracts the lowercase hostname from a raw URL, tolerating inputs
// without a scheme.
func hostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
