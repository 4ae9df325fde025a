package features_test

import (
	"testing"

	"github.com/phishguard/phishguard/internal/features"
	"github.com/phishguard/phishguard/internal/registry"
)

func newExtractor(t *testing.T) *features.Extractor {
	t.Helper()
	reg, err := registry.Load(nil)
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	e, err := features.NewExtractor(nil, reg, nil)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func TestExtractBasicCounts(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	raw := "https://secure-login.example.com/account/verify?id=1&next=home"
	v := e.Extract(raw)

	if got := v.Get("url_length"); got != float64(len(raw)) {
		t.Errorf("url_length = %v, want %d", got, len(raw))
	}
	if got := v.Get("is_https"); got != 1 {
		t.Errorf("is_https = %v, want 1", got)
	}
	if got := v.Get("num_query_params"); got != 2 {
		t.Errorf("num_query_params = %v, want 2", got)
	}
	if got := v.Get("num_hyphens"); got != 1 {
		t.Errorf("num_hyphens = %v, want 1", got)
	}
	if got := v.Get("subdomain_count"); got != 1 {
		t.Errorf("subdomain_count = %v, want 1", got)
	}
	if got := v.Get("path_depth"); got != 2 {
		t.Errorf("path_depth = %v, want 2", got)
	}
	// "login", "secure", "account" and "verify" all appear.
	if got := v.Get("has_suspicious_words"); got < 4 {
		t.Errorf("has_suspicious_words = %v, want >= 4", got)
	}
	if got := v.Get("parse_failed"); got != 0 {
		t.Errorf("parse_failed = %v, want 0", got)
	}
}

func TestExtractUnparsableYieldsZeroVector(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	v := e.Extract("::::not a url::::")
	if got := v.Get("parse_failed"); got != 1 {
		t.Fatalf("parse_failed = %v, want 1", got)
	}
	for _, name := range features.FeatureNames {
		if name == "parse_failed" {
			continue
		}
		if got := v.Get(name); got != 0 {
			t.Errorf("%s = %v, want 0 on parse failure", name, got)
		}
	}
}

func TestExtractIPAddress(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	v := e.Extract("http://192.168.4.22:8443/login")
	if got := v.Get("is_ip_address"); got != 1 {
		t.Errorf("is_ip_address = %v, want 1", got)
	}
	if got := v.Get("has_port"); got != 1 {
		t.Errorf("has_port = %v, want 1", got)
	}
	if got := v.Get("looks_generated"); got != 0 {
		t.Errorf("looks_generated = %v, want 0 for an IP host", got)
	}
}

func TestExtractLooksGenerated(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	cases := []struct {
		url  string
		want float64
	}{
		// No vowels at all, no dictionary word inside.
		{"http://xjqzkvwpt.com/", 1},
		// Long consonant run.
		{"http://bcdfghjklm.net/", 1},
		// Ordinary dictionary-backed names.
		{"http://example.com/", 0},
		{"http://github.com/", 0},
		{"http://secure-banking.com/", 0},
	}
	for _, tc := range cases {
		v := e.Extract(tc.url)
		if got := v.Get("looks_generated"); got != tc.want {
			t.Errorf("looks_generated(%s) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestExtractIDNSignals(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	// Punycode of pаypal (Cyrillic а).
	v := e.Extract("http://xn--pypal-4ve.com/")
	if got := v.Get("is_punycode"); got != 1 {
		t.Errorf("is_punycode = %v, want 1", got)
	}
	if got := v.Get("mixed_script"); got != 1 {
		t.Errorf("mixed_script = %v, want 1", got)
	}
	if got := v.Get("has_confusables"); got != 1 {
		t.Errorf("has_confusables = %v, want 1", got)
	}
	if got := v.Get("idn_risk"); got != 1 {
		t.Errorf("idn_risk = %v, want clamped to 1", got)
	}

	ascii := e.Extract("http://example.com/")
	if got := ascii.Get("idn_risk"); got != 0 {
		t.Errorf("idn_risk(ascii) = %v, want 0", got)
	}
}

func TestExtractVectorSchema(t *testing.T) {
	t.Parallel()
	e := newExtractor(t)

	v := e.Extract("https://example.com/")
	if v.Version() != features.SchemaVersion {
		t.Errorf("version = %q, want %q", v.Version(), features.SchemaVersion)
	}
	vals := v.Values()
	if len(vals) != len(features.FeatureNames) {
		t.Errorf("values len = %d, want %d", len(vals), len(features.FeatureNames))
	}
}
