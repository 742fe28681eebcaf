package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultUserAgent = "memberctl"

// Client represents an HTTP client for the member portal API.
// It carries a mutable Authorization slot that is attached to every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	userAgent  string

	mu            sync.RWMutex
	authorization string
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	timeout     time.Duration
	insecureTLS bool
	logger      zerolog.Logger
	userAgent   string
}

// WithTimeout sets the per-request timeout of the underlying http.Client
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithInsecureTLS skips TLS verification (self-signed development servers)
func WithInsecureTLS(insecure bool) Option {
	return func(o *clientOptions) {
		o.insecureTLS = insecure
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// New creates a new API client for baseURL
func New(baseURL string, opts ...Option) *Client {
	o := &clientOptions{
		timeout:   30 * time.Second,
		logger:    zerolog.Nop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(o)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if o.insecureTLS {
		base.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    o.logger,
		userAgent: o.userAgent,
	}
	c.httpClient = &http.Client{
		Timeout:   o.timeout,
		Transport: c.wrap(base),
	}
	return c
}

// SetHTTPClient sets a custom HTTP client. Its transport is wrapped so the
// Authorization slot is still applied.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	wrapped := *httpClient
	wrapped.Transport = c.wrap(httpClient.Transport)
	c.httpClient = &wrapped
}

// BaseURL returns the server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthorization sets the default Authorization header value
func (c *Client) SetAuthorization(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorization = value
}

// ClearAuthorization removes the default Authorization header
func (c *Client) ClearAuthorization() {
	c.SetAuthorization("")
}

// Authorization returns the current default Authorization header value
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authorization
}

// Get sends a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends a JSON POST request and decodes the JSON response into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put sends a JSON PUT request and decodes the JSON response into out
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return newAPIError(method, path, resp.StatusCode, respBody)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
