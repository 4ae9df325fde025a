package webclient

import "context"

// WebClient abstracts how a page is retrieved: a plain HTTP round trip or a
// rendered fetch through a headless browser. The fetcher depends on this
// interface, not on a concrete backend.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
