package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/phishguard/phishguard/internal/logging"
)

// ChromeDPClient renders pages in a headless browser. Phishing pages built
// by kits frequently assemble their credential form with JavaScript, so the
// rendered DOM sees signatures a plain GET never would.
type ChromeDPClient struct {
	cfg    *Config
	logger logging.Logger
}

func NewChromeDPClient(cfg *Config, logger logging.Logger) (WebClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ChromeDPClient{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "backend", Value: "chromedp"}),
	}, nil
}

func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	timeout := cdc.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	cdc.logger.Debug("rendering page", logging.Field{Key: "url", Value: req.URL})

	// Capture the headers of the main-document response as chromedp sees
	// them; cookie headers are folded in by the browser, so cookies are
	// read from the CDP cookie jar afterwards.
	headers := http.Header{}
	statusCode := 0
	finalURL := req.URL
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			statusCode = int(resp.Response.Status)
			finalURL = resp.Response.URL
			for k, v := range resp.Response.Headers {
				headers.Set(k, fmt.Sprint(v))
			}
		}
	})

	var html string
	var cookies []*http.Cookie
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cdpCookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cdpCookies {
				cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
			}
			return nil
		}),
	)
	if err != nil {
		cdc.logger.Warn("rendered fetch failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	return &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    headers,
		Cookies:    cookies,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		UsedTLS:    strings.HasPrefix(finalURL, "https://"),
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromeDPClient) Close() error {
	cdc.logger.Info("closing chromedp webclient")
	return nil
}
