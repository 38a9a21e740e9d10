// Package client provides the HTTP client for connecting to the Recap backend.
// It handles request construction, response decoding, and error normalization.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// Default client settings.
const (
	DefaultTimeout = 2 * time.Minute
)

// TransportError is the uniform error for any non-success backend response.
// Message carries the server-provided body text, or the status line when the
// body is empty.
type TransportError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Is maps HTTP status codes onto the shared error sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *TransportError) Is(target error) bool {
	switch target {
	case rcerrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case rcerrors.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	default:
		return false
	}
}

// AsTransportError reports whether err is a TransportError, returning it if so.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// Options configures the Client behavior.
type Options struct {
	// Timeout is the per-request timeout. Zero uses DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client. Mostly for tests.
	HTTPClient *http.Client

	// Logger receives request/response debug logs. Nil disables logging.
	Logger logging.Logger
}

// Client is a stateless HTTP client for the Recap backend. It is safe for
// concurrent use; callers own retry policy because summarize and email calls
// have side effects that must not repeat silently.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON issues a request with an optional JSON body and decodes the response
// into out (which may be nil to discard the body).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, reader, contentType, out)
}

// do issues a request and decodes the response. JSON responses unmarshal into
// out; any other content type is assigned raw when out is a *string. Non-2xx
// responses become a TransportError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Request IDs let backend logs be correlated with a client invocation.
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.log.Debug("backend request",
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("request_id", requestID),
		logging.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = resp.Status
		}
		return &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	// Non-JSON responses are surfaced as raw text.
	if s, ok := out.(*string); ok {
		*s = string(respBody)
		return nil
	}
	return fmt.Errorf("unexpected content type %q", ct)
}
