// Package httpclient wraps net/http with the timeout, compression, and TLS
// laxity configuration piper's request pipeline needs. A Client is built
// once per run and shared (its connection pool is concurrency-safe) across
// every in-flight request.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config carries the two knobs the facade exposes; gzip decoding is always
// on and has no setting.
type Config struct {
	// Timeout bounds a single request, including connect and body read.
	Timeout time.Duration
	// Insecure disables TLS certificate and hostname verification.
	Insecure bool
}

// Client issues requests built from a method and a rendered URL.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// Build constructs a Client. The returned value may be reused concurrently
// by any number of goroutines; net/http's transport manages its own
// connection pool and decodes gzip-encoded responses automatically unless
// the caller sets its own Accept-Encoding header.
func Build(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig(cfg.Insecure)

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		timeout: cfg.Timeout,
	}
}

// Send issues one HTTP request and returns its decoded body, status code,
// and elapsed time. The error returned, if any, is the taxonomy's
// HttpError: connect failure, TLS failure, timeout, DNS failure, or a
// malformed URL after template rendering.
func (c *Client) Send(ctx context.Context, method, url string) (status int, body string, elapsed time.Duration, err error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, "", time.Since(start), fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", time.Since(start), fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", time.Since(start), fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, string(b), time.Since(start), nil
}
