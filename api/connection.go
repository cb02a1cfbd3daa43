package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	schemeHttps      = "https"
	defaultUserAgent = "Mozilla/5.0 (compatible; pairs.service/1.0)"
)

type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client    *http.Client
	host      string
	userAgent string
}

type Client struct {
	Connection Connection
	ApiKey     string
}

func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	endpoint.Scheme = schemeHttps
	endpoint.Host = conn.host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", endpoint.Path, err)
	}
	req.Header.Set("User-Agent", conn.userAgent)
	req.Header.Set("Accept", "application/json")

	return conn.client.Do(req)
}

func ClientFactory(host string, apiKey string, timeout time.Duration) *Client {
	client := &http.Client{
		Timeout: timeout,
	}

	clientHost := &ClientHost{
		client:    client,
		host:      host,
		userAgent: defaultUserAgent,
	}

	return &Client{
		Connection: clientHost,
		ApiKey:     apiKey,
	}
}

// CheckStatus maps a provider status code to ErrNoData (404) or a transport error (other non 2xx).
// The body is drained and closed on error.
func CheckStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	defer response.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(response.Body, 512))

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d: %s", ErrNoData, response.StatusCode, body)
	}
	return fmt.Errorf("unexpected status %d: %s", response.StatusCode, body)
}
