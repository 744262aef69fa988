package providers

import (
	"net/http"
	"time"
)

// HTTPDoer describes an HTTP client.
//
//go:generate mockgen -package=providers_test -destination=mock_http_doer_test.go -source=http_doer.go HTTPDoer
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client whose timeout caps a single provider call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
