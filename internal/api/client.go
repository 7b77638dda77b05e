// Package api provides a client for the Eyrie sample tracking service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the default tracking service API endpoint.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second
	// maxBodyLen caps the response body kept for error reports.
	maxBodyLen = 4096
)

// Client talks to the tracking service. A client authenticates at most
// once and reuses the token for every later request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Username   string
	Password   string
	Debug      bool

	timeout   time.Duration
	token     string
	tokenInfo *TokenInfo
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API client.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

// WithCredentials enables the bearer token exchange.
func WithCredentials(username, password string) ClientOption {
	return func(c *Client) {
		c.Username = username
		c.Password = password
	}
}

// WithTimeout sets the per-request timeout. It is applied to a copy of
// the HTTP client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithDebug enables debug output.
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.Debug = debug
	}
}

// NewClient creates a new tracking service client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.timeout > 0 {
		hc := *c.HTTPClient
		hc.Timeout = c.timeout
		c.HTTPClient = &hc
	}
	return c
}

// ServiceRoot returns the base URL without its /api suffix.
func (c *Client) ServiceRoot() string {
	return strings.TrimSuffix(c.BaseURL, "/api")
}

// TestConnection requests GET /health at the service root.
func (c *Client) TestConnection(ctx context.Context) error {
	const op errors.Op = "api.TestConnection"

	resp, body, err := c.do(ctx, http.MethodGet, c.ServiceRoot()+"/health", nil)
	if err != nil {
		return errors.E(op, errors.KindNetwork, err, "cannot connect to tracking service")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.E(op, errors.KindNetwork,
			fmt.Sprintf("health check failed: %d %s", resp.StatusCode, body))
	}
	return nil
}

// SampleExists reports whether the service already stores sampleID.
func (c *Client) SampleExists(ctx context.Context, sampleID string) (bool, error) {
	const op errors.Op = "api.SampleExists"

	if err := c.Authenticate(ctx); err != nil {
		return false, err
	}

	resp, body, err := c.do(ctx, http.MethodGet, c.samplePath(sampleID), nil)
	if err != nil {
		return false, errors.E(op, errors.KindNetwork, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, errors.E(op, errors.KindAuth, &StatusError{Code: resp.StatusCode, Body: body})
	default:
		return false, errors.E(op, errors.KindNetwork, &StatusError{Code: resp.StatusCode, Body: body})
	}
}

func (c *Client) samplePath(sampleID string) string {
	return c.BaseURL + "/samples/" + url.PathEscape(sampleID)
}

// do sends one request. body is JSON encoded when not nil. The returned
// body is truncated to maxBodyLen.
func (c *Client) do(ctx context.Context, method, target string, body any) (*http.Response, string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.Debug {
		log.Printf("DEBUG: %s %s (request %s)", method, target, req.Header.Get("X-Request-ID"))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLen))
	if err != nil {
		return resp, "", fmt.Errorf("failed to read response: %w", err)
	}

	if c.Debug {
		log.Printf("DEBUG: %s %s -> %d", method, target, resp.StatusCode)
	}

	return resp, string(data), nil
}

// StatusError is an unexpected HTTP status from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// IsRetryable reports whether err is worth another attempt later:
// timeouts, cancelled deadlines and 5xx responses.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	return false
}
