package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Cookies    []*http.Cookie
	Body       []byte
	StatusCode int
	// FinalURL is the URL after redirects; it may differ from Request.URL.
	FinalURL string
	// UsedTLS reports whether the final hop was served over TLS.
	UsedTLS   bool
	FetchedAt time.Time
}
