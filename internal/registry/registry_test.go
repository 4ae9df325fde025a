package registry_test

import (
	"testing"

	"github.com/phishguard/phishguard/internal/registry"
)

func load(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return r
}

func TestLoadPopulatesTables(t *testing.T) {
	t.Parallel()
	r := load(t)

	if len(r.Brands) == 0 || len(r.Confusables) == 0 || len(r.TLDs) == 0 ||
		len(r.Whitelist) == 0 || len(r.Words) == 0 {
		t.Fatalf("registry incomplete: %d brands, %d confusables, %d tlds, %d whitelist, %d words",
			len(r.Brands), len(r.Confusables), len(r.TLDs), len(r.Whitelist), len(r.Words))
	}
	// Brand names are merged into the dictionary.
	if !r.KnownWord("paypal") {
		t.Error("brand names should count as known words")
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()
	r := load(t)

	cases := []struct {
		host                string
		sub, domain, suffix string
		suffixKnown         bool
	}{
		{"example.com", "", "example", "com", true},
		{"www.example.com", "www", "example", "com", true},
		{"a.b.example.co.uk", "a.b", "example", "co.uk", true},
		{"example.pom", "", "example", "pom", false},
		{"login.example.pom", "login", "example", "pom", false},
		{"localhost", "", "localhost", "", false},
	}
	for _, tc := range cases {
		p := r.Split(tc.host)
		if p.Subdomain != tc.sub || p.Domain != tc.domain || p.Suffix != tc.suffix || p.SuffixKnown != tc.suffixKnown {
			t.Errorf("Split(%q) = %+v, want {%q %q %q %v}",
				tc.host, p, tc.sub, tc.domain, tc.suffix, tc.suffixKnown)
		}
	}
}

func TestRegistrable(t *testing.T) {
	t.Parallel()
	r := load(t)

	if got := r.Split("accounts.google.com").Registrable(); got != "google.com" {
		t.Errorf("registrable = %q, want google.com", got)
	}
	if got := r.Split("example.co.uk").Registrable(); got != "example.co.uk" {
		t.Errorf("registrable = %q, want example.co.uk", got)
	}
}

func TestWhitelisted(t *testing.T) {
	t.Parallel()
	r := load(t)

	if !r.Whitelisted("github.com") {
		t.Error("github.com should be whitelisted")
	}
	if r.Whitelisted("githu8.com") {
		t.Error("githu8.com should not be whitelisted")
	}
}

func TestFoldConfusables(t *testing.T) {
	t.Parallel()
	r := load(t)

	cases := []struct{ in, want string }{
		{"paypa1", "paypal"},   // digit one
		{"g00gle", "google"},   // zeros
		{"pаypal", "paypal"},   // Cyrillic а
		{"PAYPAL", "paypal"},   // folding lowercases
		{"example", "example"}, // untouched
	}
	for _, tc := range cases {
		if got := r.FoldConfusables(tc.in); got != tc.want {
			t.Errorf("FoldConfusables(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidSuffix(t *testing.T) {
	t.Parallel()
	r := load(t)

	if !r.ValidSuffix("com") || !r.ValidSuffix("co.uk") || !r.ValidSuffix("no") {
		t.Error("known suffixes rejected")
	}
	// Legitimate but less common TLDs must not be lumped in with invalid
	// extensions.
	for _, s := range []string{"museum", "travel", "coop", "aero", "pizza", "church", "kz", "vu", "photography"} {
		if !r.ValidSuffix(s) {
			t.Errorf("%s rejected as a suffix", s)
		}
	}
	if r.ValidSuffix("pom") {
		t.Error("pom accepted as a suffix")
	}
}
