package features

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/registry"
)

// SchemaVersion identifies the feature name list below. The classifier
// adapter validates its model against this exact list at startup.
const SchemaVersion = "url-features/v1"

// FeatureNames is the fixed, ordered feature schema produced by Extract.
// Appending is fine; reordering or renaming requires a new SchemaVersion.
var FeatureNames = []string{
	"url_length",
	"domain_length",
	"path_length",
	"path_depth",
	"num_dots",
	"num_hyphens",
	"num_underscores",
	"num_slashes",
	"num_question_marks",
	"num_equals",
	"num_at",
	"num_ampersand",
	"num_digits",
	"num_query_params",
	"is_https",
	"has_port",
	"is_ip_address",
	"subdomain_count",
	"has_suspicious_words",
	"entropy",
	"domain_entropy",
	"vowel_ratio",
	"looks_generated",
	"is_punycode",
	"mixed_script",
	"has_confusables",
	"idn_risk",
	"parse_failed",
}

// suspiciousWords are keywords frequently planted in phishing URLs to borrow
// legitimacy.
var suspiciousWords = []string{
	"login", "signin", "account", "update", "verify", "secure",
	"banking", "paypal", "ebay", "amazon", "confirm",
}

// Config carries the tunable constants of the looks-generated heuristic.
type Config struct {
	// ConsonantRunLimit flags a domain containing a consonant run of at
	// least this length.
	ConsonantRunLimit int

	// VowelRunLimit flags a domain containing a vowel run of at least this
	// length.
	VowelRunLimit int

	// MinVowelRatio flags a domain whose vowel ratio falls below this.
	MinVowelRatio float64
}

// DefaultConfig returns the constants the heuristic was tuned with.
func DefaultConfig() *Config {
	return &Config{
		ConsonantRunLimit: 5,
		VowelRunLimit:     3,
		MinVowelRatio:     0.15,
	}
}

// Extractor derives the lexical/host feature vector from a URL string alone.
// It performs no network I/O and never fails: a malformed URL yields a zero
// vector tagged with parse_failed so downstream fusion always has a vector.
type Extractor struct {
	cfg    *Config
	reg    *registry.Registry
	logger logging.Logger
}

// NewExtractor constructs an Extractor. reg must be non-nil; cfg and logger
// may be nil, in which case defaults are used.
func NewExtractor(cfg *Config, reg *registry.Registry, logger logging.Logger) (*Extractor, error) {
	if reg == nil {
		return nil, errNilRegistry
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{
		cfg:    cfg,
		reg:    reg,
		logger: logger.With(logging.Field{Key: "component", Value: "feature-extractor"}),
	}, nil
}

// Extract computes the feature vector for raw. Pure function over the URL
// string; see FeatureNames for the schema.
func (e *Extractor) Extract(raw string) *model.FeatureVector {
	v := model.NewFeatureVector(SchemaVersion, FeatureNames)

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		e.logger.Warn("unparsable url, returning zero vector",
			logging.Field{Key: "url", Value: raw})
		v.Set("parse_failed", 1)
		return v
	}

	host := strings.ToLower(u.Hostname())
	parts := e.reg.Split(host)

	// Counts and ratios over the raw URL and parsed components.
	v.Set("url_length", float64(len(raw)))
	v.Set("domain_length", float64(len(parts.Domain)))
	v.Set("path_length", float64(len(u.Path)))
	v.Set("path_depth", float64(pathDepth(u.Path)))
	v.Set("num_dots", float64(strings.Count(raw, ".")))
	v.Set("num_hyphens", float64(strings.Count(raw, "-")))
	v.Set("num_underscores", float64(strings.Count(raw, "_")))
	v.Set("num_slashes", float64(strings.Count(raw, "/")))
	v.Set("num_question_marks", float64(strings.Count(raw, "?")))
	v.Set("num_equals", float64(strings.Count(raw, "=")))
	v.Set("num_at", float64(strings.Count(raw, "@")))
	v.Set("num_ampersand", float64(strings.Count(raw, "&")))
	v.Set("num_digits", float64(countDigits(raw)))
	v.Set("num_query_params", float64(len(u.Query())))

	// Protocol and host flags.
	if u.Scheme == "https" {
		v.Set("is_https", 1)
	}
	if port := u.Port(); port != "" {
		v.Set("has_port", 1)
	}
	isIP := net.ParseIP(host) != nil
	if isIP {
		v.Set("is_ip_address", 1)
	}
	v.Set("subdomain_count", float64(len(parts.SubdomainLabels())))

	v.Set("has_suspicious_words", float64(countSuspiciousWords(raw)))

	// Randomness signals over the registrable label.
	v.Set("entropy", shannonEntropy(raw))
	v.Set("domain_entropy", shannonEntropy(parts.Domain))
	v.Set("vowel_ratio", vowelRatio(parts.Domain))
	if !isIP && e.looksGenerated(parts.Domain) {
		v.Set("looks_generated", 1)
	}

	// IDN / punycode signals.
	e.setIDNFeatures(v, host)

	return v
}

// looksGenerated flags domains whose letter shape suggests machine
// generation, unless the domain or a recognized word inside it appears in
// the dictionary.
func (e *Extractor) looksGenerated(domain string) bool {
	if domain == "" || net.ParseIP(domain) != nil {
		return false
	}
	suspicious := consonantRun(domain) >= e.cfg.ConsonantRunLimit ||
		vowelRun(domain) >= e.cfg.VowelRunLimit ||
		vowelRatio(domain) < e.cfg.MinVowelRatio
	if !suspicious {
		return false
	}
	if e.reg.KnownWord(domain) {
		return false
	}
	return !e.containsKnownWord(domain)
}

// containsKnownWord reports whether any dictionary word of four or more
// characters is a substring of domain.
func (e *Extractor) containsKnownWord(domain string) bool {
	for w := range e.reg.Words {
		if len(w) >= 4 && strings.Contains(domain, w) {
			return true
		}
	}
	return false
}

// setIDNFeatures decodes punycode labels and flags mixed scripts and
// confusable characters, rolling both into a composite idn_risk score.
func (e *Extractor) setIDNFeatures(v *model.FeatureVector, host string) {
	decoded := host
	if strings.Contains(host, "xn--") {
		v.Set("is_punycode", 1)
		if uni, err := idna.Lookup.ToUnicode(host); err == nil {
			decoded = uni
		}
	}

	mixed := mixesScripts(decoded)
	confusable := e.hasConfusables(decoded)
	if mixed {
		v.Set("mixed_script", 1)
	}
	if confusable {
		v.Set("has_confusables", 1)
	}

	risk := 0.0
	if v.Get("is_punycode") == 1 {
		risk += 0.3
	}
	if mixed {
		risk += 0.5
	}
	if confusable {
		risk += 0.4
	}
	v.Set("idn_risk", model.Clamp01(risk))
}

// hasConfusables reports whether the host contains a non-ASCII character
// present in the confusable table.
func (e *Extractor) hasConfusables(host string) bool {
	for _, r := range host {
		if r <= unicode.MaxASCII {
			continue
		}
		if _, ok := e.reg.Confusables[r]; ok {
			return true
		}
	}
	return false
}

var errNilRegistry = errors.New("features: nil registry")
