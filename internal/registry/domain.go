package registry

import "strings"

// DomainParts is a host name split against the public-suffix table, the same
// way tld-extraction libraries split "a.b.example.co.uk" into subdomain
// "a.b", domain "example" and suffix "co.uk".
type DomainParts struct {
	Subdomain string
	Domain    string
	Suffix    string

	// SuffixKnown is false when no label combination matched the suffix
	// table; Suffix then holds the trailing label as a best guess.
	SuffixKnown bool
}

// Registrable returns "domain.suffix", the unit that gets registered with a
// registrar and the unit whitelists and brand tables are keyed by.
func (p DomainParts) Registrable() string {
	if p.Domain == "" {
		return p.Suffix
	}
	if p.Suffix == "" {
		return p.Domain
	}
	return p.Domain + "." + p.Suffix
}

// FullHost reassembles the original host from its parts.
func (p DomainParts) FullHost() string {
	parts := make([]string, 0, 3)
	if p.Subdomain != "" {
		parts = append(parts, p.Subdomain)
	}
	if p.Domain != "" {
		parts = append(parts, p.Domain)
	}
	if p.Suffix != "" {
		parts = append(parts, p.Suffix)
	}
	return strings.Join(parts, ".")
}

// SubdomainLabels returns the subdomain split into individual labels.
func (p DomainParts) SubdomainLabels() []string {
	if p.Subdomain == "" {
		return nil
	}
	return strings.Split(p.Subdomain, ".")
}

// Split breaks host into subdomain, domain and public suffix using the
// longest suffix that appears in the TLD table. Multi-label suffixes such as
// "co.uk" win over their final label. Hosts whose suffix is unknown still get
// a best-effort split so downstream checks can reason about them.
func (r *Registry) Split(host string) DomainParts {
	host = strings.ToLower(strings.Trim(host, "."))
	if host == "" {
		return DomainParts{}
	}

	labels := strings.Split(host, ".")
	if len(labels) == 1 {
		// Bare label, nothing registrable about it.
		return DomainParts{Domain: labels[0]}
	}

	// Longest known suffix wins: try "b.c.d", then "c.d", then "d".
	for i := 1; i < len(labels); i++ {
		candidate := strings.Join(labels[i:], ".")
		if _, ok := r.TLDs[candidate]; ok {
			p := DomainParts{
				Domain:      labels[i-1],
				Suffix:      candidate,
				SuffixKnown: true,
			}
			if i > 1 {
				p.Subdomain = strings.Join(labels[:i-1], ".")
			}
			return p
		}
	}

	// Unknown suffix: treat the last label as the suffix candidate.
	p := DomainParts{
		Domain: labels[len(labels)-2],
		Suffix: labels[len(labels)-1],
	}
	if len(labels) > 2 {
		p.Subdomain = strings.Join(labels[:len(labels)-2], ".")
	}
	return p
}
