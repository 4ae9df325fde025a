package registry

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phishguard/phishguard/internal/logging"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Registry holds the static reference data every analysis call reads:
// protected brands, the confusable-character table, valid public suffixes,
// the trusted-domain whitelist and the common-word dictionary.
//
// All maps are populated once by Load and are read-only afterwards, so they
// are safe for unsynchronized concurrent reads from any number of analysis
// goroutines.
type Registry struct {
	// Brands maps a brand name (lowercase, no spacing/punctuation) to the
	// set of registrable domains the brand legitimately operates.
	Brands map[string][]string

	// Confusables maps a Unicode code point to the Latin characters it
	// visually resembles. The first entry is the canonical fold target.
	Confusables map[rune][]rune

	// TLDs is the set of valid public suffixes, including multi-label
	// suffixes such as "co.uk". Stored without a leading dot.
	TLDs map[string]struct{}

	// Whitelist is the set of trusted registrable domains that bypass
	// analysis entirely.
	Whitelist map[string]struct{}

	// Words is a dictionary of common words and brand names used to excuse
	// unusual but legitimate domains from the looks-generated heuristic.
	Words map[string]struct{}
}

type brandsFile struct {
	Brands map[string][]string `yaml:"brands"`
}

type confusablesFile struct {
	Confusables map[string][]string `yaml:"confusables"`
}

type tldsFile struct {
	Suffixes []string `yaml:"suffixes"`
}

type whitelistFile struct {
	Domains []string `yaml:"domains"`
}

type wordsFile struct {
	Words []string `yaml:"words"`
}

// Load reads all embedded data files and returns a fully populated Registry.
// A malformed data file is a startup failure, not something to degrade from.
func Load(logger logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := logger.With(logging.Field{Key: "component", Value: "registry"})

	r := &Registry{
		Brands:      map[string][]string{},
		Confusables: map[rune][]rune{},
		TLDs:        map[string]struct{}{},
		Whitelist:   map[string]struct{}{},
		Words:       map[string]struct{}{},
	}

	var bf brandsFile
	if err := readYAML("data/brands.yaml", &bf); err != nil {
		return nil, err
	}
	for brand, domains := range bf.Brands {
		key := normalizeBrand(brand)
		for _, d := range domains {
			r.Brands[key] = append(r.Brands[key], strings.ToLower(strings.TrimSpace(d)))
		}
	}

	var cf confusablesFile
	if err := readYAML("data/confusables.yaml", &cf); err != nil {
		return nil, err
	}
	for from, tos := range cf.Confusables {
		runes := []rune(from)
		if len(runes) != 1 {
			return nil, fmt.Errorf("registry: confusable key %q is not a single code point", from)
		}
		for _, to := range tos {
			for _, tr := range to {
				r.Confusables[runes[0]] = append(r.Confusables[runes[0]], tr)
				break // only the first rune of each target matters
			}
		}
	}

	var tf tldsFile
	if err := readYAML("data/tlds.yaml", &tf); err != nil {
		return nil, err
	}
	for _, s := range tf.Suffixes {
		r.TLDs[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))] = struct{}{}
	}

	var wf whitelistFile
	if err := readYAML("data/whitelist.yaml", &wf); err != nil {
		return nil, err
	}
	for _, d := range wf.Domains {
		r.Whitelist[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	var df wordsFile
	if err := readYAML("data/words.yaml", &df); err != nil {
		return nil, err
	}
	for _, w := range df.Words {
		r.Words[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	// Brand names are legitimate words too.
	for brand := range r.Brands {
		r.Words[brand] = struct{}{}
	}

	l.Info("registry loaded",
		logging.Field{Key: "brands", Value: len(r.Brands)},
		logging.Field{Key: "confusables", Value: len(r.Confusables)},
		logging.Field{Key: "tlds", Value: len(r.TLDs)},
		logging.Field{Key: "whitelist", Value: len(r.Whitelist)},
		logging.Field{Key: "words", Value: len(r.Words)})

	return r, nil
}

func readYAML(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return nil
}

func normalizeBrand(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidSuffix reports whether suffix (without leading dot) is a known public
// suffix.
func (r *Registry) ValidSuffix(suffix string) bool {
	_, ok := r.TLDs[strings.ToLower(suffix)]
	return ok
}

// Whitelisted reports whether the registrable domain is in the trusted set.
func (r *Registry) Whitelisted(registrable string) bool {
	_, ok := r.Whitelist[strings.ToLower(registrable)]
	return ok
}

// KnownWord reports whether w appears in the common-word dictionary.
func (r *Registry) KnownWord(w string) bool {
	_, ok := r.Words[strings.ToLower(w)]
	return ok
}

// FoldConfusables replaces every confusable character in s with its canonical
// Latin lookalike, lowercasing as it goes. Characters without an entry pass
// through untouched.
func (r *Registry) FoldConfusables(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ru := range strings.ToLower(s) {
		if subs, ok := r.Confusables[ru]; ok && len(subs) > 0 {
			b.WriteRune(subs[0])
			continue
		}
		b.WriteRune(ru)
	}
	return b.String()
}
