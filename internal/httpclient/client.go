// Package httpclient provides the HTTP collaborator used by the workload:
// a thin client that issues JSON requests and reports status, body, and
// elapsed time for each call.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// Response carries everything the workload needs from one HTTP call.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte

	// Duration is the elapsed wall-clock time of the request, including
	// reading the response body.
	Duration time.Duration
}

// Client is an HTTP client with a fixed set of headers applied to every
// request. It is safe for concurrent use by multiple virtual users.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
}

// Option configures a Client.
type Option func(*Client)

// NewClient creates a client with the given options.
func NewClient(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        1000,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers: make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// Do executes a request and returns the response with its elapsed time.
// The body may be nil for requests without a payload.
func (c *Client) Do(ctx context.Context, method, url string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       respBody,
		Duration:   elapsed,
	}, nil
}

// CloseIdleConnections releases pooled connections at the end of a run.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
