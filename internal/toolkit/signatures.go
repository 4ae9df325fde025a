package toolkit

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/toolkits.yaml
var dataFS embed.FS

// SignatureKind says which part of a ContentObservation a signature inspects.
type SignatureKind string

const (
	KindURLParam   SignatureKind = "url_param"   // query parameter name
	KindHeader     SignatureKind = "header"      // response header name
	KindCookie     SignatureKind = "cookie"      // cookie name pattern
	KindFormFields SignatureKind = "form_fields" // input-name set within one form
	KindBody       SignatureKind = "body"        // pattern over the HTML excerpt
	KindTitle      SignatureKind = "title"       // pattern over the page title
	KindHost       SignatureKind = "host"        // pattern over the final URL
)

// Signature is one weighted fingerprint of a phishing kit.
type Signature struct {
	ID          string        `yaml:"id"`
	Kind        SignatureKind `yaml:"kind"`
	Pattern     string        `yaml:"pattern"`
	Weight      float64       `yaml:"weight"`
	Description string        `yaml:"description"`

	re     *regexp.Regexp // compiled for cookie/body/title/host kinds
	fields []string       // split for form_fields kind
}

// KitSignatures is the full weighted signature set of one toolkit.
type KitSignatures struct {
	Name       string      `yaml:"name"`
	Signatures []Signature `yaml:"signatures"`
}

type signatureFile struct {
	Toolkits []KitSignatures `yaml:"toolkits"`
}

// loadSignatures reads and compiles the embedded signature table. Called
// once from NewMatcher; a broken table is a startup failure.
func loadSignatures() ([]KitSignatures, error) {
	raw, err := dataFS.ReadFile("data/toolkits.yaml")
	if err != nil {
		return nil, fmt.Errorf("toolkit: read signature table: %w", err)
	}
	var f signatureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("toolkit: parse signature table: %w", err)
	}

	for ki := range f.Toolkits {
		kit := &f.Toolkits[ki]
		if kit.Name == "" {
			return nil, fmt.Errorf("toolkit: unnamed kit at index %d", ki)
		}
		for si := range kit.Signatures {
			sig := &kit.Signatures[si]
			if sig.Weight <= 0 {
				return nil, fmt.Errorf("toolkit: %s signature %q has non-positive weight", kit.Name, sig.ID)
			}
			switch sig.Kind {
			case KindURLParam, KindHeader:
				sig.Pattern = strings.ToLower(sig.Pattern)
			case KindFormFields:
				for _, fld := range strings.Split(sig.Pattern, ",") {
					sig.fields = append(sig.fields, strings.ToLower(strings.TrimSpace(fld)))
				}
			case KindCookie, KindBody, KindTitle, KindHost:
				re, err := regexp.Compile(`(?i)` + sig.Pattern)
				if err != nil {
					return nil, fmt.Errorf("toolkit: %s signature %q: %w", kit.Name, sig.ID, err)
				}
				sig.re = re
			default:
				return nil, fmt.Errorf("toolkit: %s signature %q has unknown kind %q", kit.Name, sig.ID, sig.Kind)
			}
		}
	}
	return f.Toolkits, nil
}
