package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const USER_AGENT = "ff-marketplace-ledger/1.0"

// HTTPClient is the outbound HTTP surface: custody transfers and gateway probes
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// Do sends a prepared request. The caller closes the response body.
	Do(req *http.Request) (*http.Response, error)

	// Head probes url without downloading it. The caller closes the response body.
	Head(ctx context.Context, url string) (*http.Response, error)
}

type httpClient struct {
	client *http.Client
}

// NewHTTPClient creates a client with a per-request timeout. Idle connections
// are kept per host since custody and gateway traffic goes to a few hosts.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	transport.ResponseHeaderTimeout = timeout

	return &httpClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *httpClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", USER_AGENT)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	return resp, nil
}

func (c *httpClient) Head(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.Do(req)
}
