// Package urlnorm canonicalizes URLs before analysis so equivalent spellings
// of the same target produce one history key. Unlike a crawler's normalizer
// it keeps userinfo and query parameters untouched: an embedded @ or a
// tracking parameter is detection evidence, not noise.
package urlnorm

import (
	"net"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/idna"
)

// Options controls optional normalization policies.
type Options struct {
	// DefaultScheme is assumed for schemeless input. Empty requires a
	// scheme in the input.
	DefaultScheme string

	// StripTrailingSlash treats /a and /a/ the same (root "/" is kept).
	StripTrailingSlash bool
}

// DefaultOptions matches how scan input is normalized across the CLI and API.
func DefaultOptions() Options {
	return Options{
		DefaultScheme:      "http",
		StripTrailingSlash: true,
	}
}

var (
	ErrEmptyURL    = &url.Error{Op: "normalize", URL: "", Err: &errStr{"empty url"}}
	ErrMissingHost = &url.Error{Op: "normalize", URL: "", Err: &errStr{"missing host"}}
)

type errStr struct{ s string }

func (e *errStr) Error() string { return e.s }

// Normalize returns a deterministic canonical form of raw, or an error when
// it has no usable host.
func Normalize(raw string, opts Options) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", ErrMissingHost
	}

	u.Scheme = strings.ToLower(u.Scheme)

	// Lowercase host; IDN goes to punycode so the unicode and xn-- forms
	// of a homograph host land on the same record.
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") || port == "" {
		u.Host = host
	} else {
		u.Host = net.JoinHostPort(host, port)
	}

	if u.Path != "" {
		cleanPath := path.Clean(u.Path)
		if cleanPath == "." {
			cleanPath = "/"
		}
		if opts.StripTrailingSlash && len(cleanPath) > 1 {
			cleanPath = strings.TrimRight(cleanPath, "/")
		}
		u.Path = cleanPath
	}

	u.Fragment = ""

	return u.String(), nil
}
