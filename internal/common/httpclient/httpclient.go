// Package httpclient is a small client for the JSON APIs this module talks
// to. Errors returned by the server in the {"result": 0, "error": "..."}
// shape are surfaced as *HTTPError.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"time"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/logtrace"
)

// ServerError represents an error response from the server
type ServerError struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
}

// HTTPError represents an error response from the server with a status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPClient sends requests relative to a base URL, authenticated with a
// bearer token when one is set.
type HTTPClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

type Option func(*HTTPClient)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHandler routes requests straight into h instead of the network.
func WithHandler(h http.Handler) Option {
	return func(c *HTTPClient) { c.httpClient.Transport = handlerTransport{h} }
}

func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// NewHTTPClient creates a client for the API at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		userAgent:  "datasource-store",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOptions contains options for making HTTP requests
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
}

// DoRequest makes an HTTP request with the given options
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if opts.Path != "" {
		u.Path = path.Join(u.Path, opts.Path)
	}
	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logtrace.RequestIdFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	if logtrace.IsTraceEnabled() {
		log.Ctx(ctx).Trace().Str("method", opts.Method).Str("url", u.String()).RawJSON("body", rawOrNull(opts.Body)).Msg("request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if logtrace.IsTraceEnabled() {
		log.Ctx(ctx).Trace().Int("status", resp.StatusCode).Str("url", u.String()).Bytes("body", respBody).Msg("response")
	}

	if resp.StatusCode >= 400 {
		var serverErr ServerError
		if err := json.Unmarshal(respBody, &serverErr); err == nil && serverErr.Error != "" {
			return nil, &HTTPError{
				StatusCode: resp.StatusCode,
				Message:    serverErr.Error,
			}
		}
		msg := string(respBody)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}
	return respBody, nil
}

func rawOrNull(b []byte) []byte {
	if len(b) == 0 || !json.Valid(b) {
		return []byte("null")
	}
	return b
}

// handlerTransport serves requests with an http.Handler in process.
type handlerTransport struct {
	h http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rr := httptest.NewRecorder()
	t.h.ServeHTTP(rr, req)
	return rr.Result(), nil
}
