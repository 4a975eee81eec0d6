// Package httpapi talks to the remote matchmaking service over JSON/HTTP.
package httpapi

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

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 15 * time.Second
	defaultUserAgent      = "pot-cli"
)

// TokenSource yields the current session token, or "" when signed out.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	logger         logrus.FieldLogger
	userAgent      string
	requestTimeout time.Duration
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.requestTimeout = timeout }
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithUnauthorizedHandler registers fn to run when the server answers 401 to a request
// that carried the session token.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        normalized,
		httpClient:     http.DefaultClient,
		userAgent:      defaultUserAgent,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		c.logger = logger
	}

	return c, nil
}

// SetTokenSource attaches the session after construction; the session store itself
// depends on the client, so wiring happens in two steps.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

type request struct {
	method     string
	path       string
	query      url.Values
	body       any
	privileged bool
	// token overrides the session token, used to validate a persisted token before
	// it becomes the session.
	token string
}

func (r request) op() string {
	return r.method + " " + r.path
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	token := req.token
	usesSession := false
	if req.privileged && token == "" && c.tokens != nil {
		token = c.tokens.Token()
		usesSession = token != ""
	}
	if req.privileged && token == "" {
		return &Error{Kind: KindUnauthenticated, Op: req.op(), Detail: "sign in required"}
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", req.op(), err)
		}
		body = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", req.op(), err)
	}
	requestID := ulid.Make().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.WithFields(logrus.Fields{
		"method":     req.method,
		"path":       req.path,
		"request_id": requestID,
	})
	started := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.WithError(err).Debug("request failed")
		return &Error{Kind: KindNetwork, Op: req.op(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: req.op(), StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	logger.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Debug("request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &Error{
			Kind:       KindServer,
			Op:         req.op(),
			StatusCode: resp.StatusCode,
			Detail:     decodeErrorDetail(payload),
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			apiErr.Kind = KindUnauthenticated
		}
		if resp.StatusCode == http.StatusUnauthorized && usesSession && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindMalformed, Op: req.op(), StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// decodeErrorDetail understands {"detail": "..."}, FastAPI's {"detail": [{"msg": ...}]}
// and {"error": "..."}.
func decodeErrorDetail(payload []byte) string {
	var parsed errorPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return ""
	}

	if len(parsed.Detail) > 0 {
		var text string
		if err := json.Unmarshal(parsed.Detail, &text); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(parsed.Detail, &items); err == nil {
			for _, item := range items {
				if strings.TrimSpace(item.Msg) != "" {
					return strings.TrimSpace(item.Msg)
				}
			}
		}
	}

	return strings.TrimSpace(parsed.Error)
}

func normalizeBaseURL(baseURL string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimRight(parsed.String(), "/"), nil
}
