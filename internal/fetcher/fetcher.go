package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/webclient"
)

// FetchError wraps any failure to obtain a content observation: network
// errors, timeouts, unparsable documents. The fusion engine treats it as a
// signal to fall back to offline analysis, never as a user-facing failure.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Config carries the fetcher's limits.
type Config struct {
	// Timeout bounds the entire fetch, render included.
	Timeout time.Duration

	// ExcerptLimit caps how many bytes of HTML are kept for signature
	// matching. Kits put their markers near the top of the document.
	ExcerptLimit int
}

// DefaultConfig returns the fetch limits used in production.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		ExcerptLimit: 256 << 10,
	}
}

// Fetcher obtains a page through the configured webclient and summarizes it
// into a ContentObservation. One attempt per call, timeout-bound, never
// retried; a failed fetch is reported, not repeated.
type Fetcher struct {
	cfg    *Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a Fetcher over the given webclient.
func New(cfg *Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, errors.New("fetcher: nil webclient")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch retrieves rawURL once and returns its observation snapshot. Any
// failure comes back as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.ContentObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	resp, err := f.wc.Do(ctx, &webclient.Request{Method: "GET", URL: rawURL})
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if resp == nil || len(resp.Body) == 0 {
		return nil, &FetchError{URL: rawURL, Err: errors.New("empty response body")}
	}

	obs, err := f.observe(rawURL, resp)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	f.logger.Debug("page observed",
		logging.Field{Key: "url", Value: rawURL},
		logging.Field{Key: "title", Value: obs.HTMLTitle},
		logging.Field{Key: "links", Value: obs.LinkCount},
		logging.Field{Key: "forms", Value: obs.FormCount})
	return obs, nil
}

// observe summarizes a fetched response into the read-only snapshot the
// matcher and the fusion engine consume.
func (f *Fetcher) observe(rawURL string, resp *webclient.Response) (*model.ContentObservation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	obs := &model.ContentObservation{
		FinalURL:        resp.FinalURL,
		HTMLTitle:       strings.TrimSpace(doc.Find("title").First().Text()),
		LinkCount:       doc.Find("a[href]").Length(),
		ImageCount:      doc.Find("img").Length(),
		FormCount:       doc.Find("form").Length(),
		InputCount:      doc.Find("input").Length(),
		IframeCount:     doc.Find("iframe").Length(),
		ResponseHeaders: resp.Headers,
		HTMLSize:        len(resp.Body),
		UsedTLS:         resp.UsedTLS,
	}

	doc.Find("input[type='password']").Each(func(_ int, _ *goquery.Selection) {
		obs.HasPasswordInput = true
	})

	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		summary := model.FormSummary{
			Action: strings.TrimSpace(form.AttrOr("action", "")),
		}
		form.Find("input").Each(func(_ int, in *goquery.Selection) {
			if name := strings.ToLower(strings.TrimSpace(in.AttrOr("name", ""))); name != "" {
				summary.InputNames = append(summary.InputNames, name)
			}
		})
		obs.Forms = append(obs.Forms, summary)
	})

	for _, c := range resp.Cookies {
		obs.Cookies = append(obs.Cookies, model.Cookie{Name: c.Name, Value: c.Value})
	}

	// Query parameters come from the URL that was actually loaded.
	target := resp.FinalURL
	if target == "" {
		target = rawURL
	}
	if u, err := url.Parse(target); err == nil {
		for name := range u.Query() {
			obs.QueryParams = append(obs.QueryParams, name)
		}
	}

	obs.BodyText = strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	excerpt := resp.Body
	if len(excerpt) > f.cfg.ExcerptLimit {
		excerpt = excerpt[:f.cfg.ExcerptLimit]
	}
	obs.BodyExcerpt = string(excerpt)

	return obs, nil
}

// Close releases the underlying webclient.
func (f *Fetcher) Close() error {
	return f.wc.Close()
}
