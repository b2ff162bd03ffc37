// Package gateway issues HTTP calls to the task API, attaches the session
// credential and normalizes every outcome into a decoded value or an error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request id used to correlate debug logs.
const RequestIDHeader = "X-Request-ID"

// CredentialSource supplies the current bearer token, or "" when there is none.
// It is consulted on every request.
type CredentialSource interface {
	Credential() string
}

// Gateway is the single entry point for API calls.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// WithTransport sets the underlying transport (default http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *gatewayOptions) { o.base = rt }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *gatewayOptions) { o.logger = l }
}

// New creates a Gateway for baseURL. creds may be nil.
func New(baseURL string, creds CredentialSource, opts ...Option) *Gateway {
	o := gatewayOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	return &Gateway{
		baseURL: baseURL,
		client: &http.Client{
			Transport: &bearerTransport{base: o.base, creds: creds, host: host},
		},
		logger: o.logger,
	}
}

// BaseURL returns the API base address.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Request sends method (GET when empty) to endpoint, JSON-encoding body when
// non-nil, and decodes a 2xx response into out when out is non-nil.
// Failures are *APIError or *NetworkError. There are no retries and no
// timeout other than ctx.
func (g *Gateway) Request(ctx context.Context, endpoint, method string, body, out any) error {
	if method == "" {
		method = http.MethodGet
	}
	target := g.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("api request failed", "method", method, "path", endpoint, "request_id", reqID, "err", err)
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	g.logger.Debug("api request",
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &APIError{Status: resp.StatusCode, Message: FallbackMessage, Err: fmt.Errorf("%w: empty body", ErrMalformedResponse)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: FallbackMessage, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failed response body.
func errorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return FallbackMessage
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return FallbackMessage
}

// bearerTransport adds the Authorization header when a credential exists
// and the request goes to the API host. Redirects elsewhere go out without it.
type bearerTransport struct {
	base  http.RoundTripper
	creds CredentialSource
	host  string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.creds != nil && req.URL.Host == t.host {
		token = t.creds.Credential()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}
	authReq := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(authReq)
	return t.base.RoundTrip(authReq)
}
