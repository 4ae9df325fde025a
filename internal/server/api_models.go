package server

// ScanRequest is the payload for a single-URL scan.
type ScanRequest struct {
	URL string `json:"url"`
}

// BatchScanRequest is the payload for scanning several URLs in one call.
type BatchScanRequest struct {
	URLs []string `json:"urls"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
