// Package api is the typed REST client for the brokerage backend. All
// requests carry the session cookie; any 401 outside the auth endpoints
// fires a global hook exactly once per session so the whole client returns
// to the entry point together.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	mnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tnoop "go.opentelemetry.io/otel/trace/noop"
)

// Client talks to the brokerage REST API.
type Client struct {
	baseURL string
	http    *http.Client

	onUnauthorized func()
	mu             sync.Mutex
	hookFired      bool

	tracer   trace.Tracer
	requests metric.Int64Counter
}

// Option configures a Client.
type Option func(*Client)

// WithUnauthorizedHook sets the hook fired on the first 401 seen outside the
// auth endpoints. The hook runs at most once until ResetSessionEpoch.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithTelemetry instruments requests with the given providers. Without this
// option the client uses no-op telemetry.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer("brokerops.api")
		meter := mp.Meter("brokerops.api")
		counter, err := meter.Int64Counter("brokerops.api.requests")
		if err == nil {
			c.requests = counter
		}
	}
}

// New returns a Client for baseURL with a fresh cookie jar. The jar holds the
// session cookie issued by the auth gateway; every request includes it.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
		tracer:  tnoop.NewTracerProvider().Tracer("brokerops.api"),
	}
	if counter, err := mnoop.NewMeterProvider().Meter("brokerops.api").Int64Counter("brokerops.api.requests"); err == nil {
		c.requests = counter
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ResetSessionEpoch re-arms the one-shot 401 hook. Called after a new login
// so a later expiry is handled again.
func (c *Client) ResetSessionEpoch() {
	c.mu.Lock()
	c.hookFired = false
	c.mu.Unlock()
}

func (c *Client) fireUnauthorized() {
	c.mu.Lock()
	fired := c.hookFired
	c.hookFired = true
	c.mu.Unlock()
	if !fired && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// serverMessage is the error payload shape the backend uses for rejections.
type serverMessage struct {
	Message string `json:"message"`
}

// do performs one JSON request. path must start with "/". body may be nil;
// out may be nil for responses whose body is not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("encode request: %v", err)}
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return &Error{Kind: KindValidation, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.count(ctx, method, path, 0)
		return &Error{Kind: KindUnavailable, Message: "server unreachable, please try again"}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.count(ctx, method, path, resp.StatusCode)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return &Error{Kind: KindUnavailable, Message: "malformed server response, please try again"}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		span.SetStatus(codes.Error, "unauthorized")
		if !strings.HasPrefix(path, "/auth/") {
			c.fireUnauthorized()
		}
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "session expired, please log in again"}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		span.SetStatus(codes.Error, resp.Status)
		msg := resp.Status
		var sm serverMessage
		if err := json.NewDecoder(resp.Body).Decode(&sm); err == nil && sm.Message != "" {
			msg = sm.Message
		}
		return &Error{Kind: KindRejected, Status: resp.StatusCode, Message: msg}
	default:
		span.SetStatus(codes.Error, resp.Status)
		return &Error{Kind: KindUnavailable, Status: resp.StatusCode, Message: "server error, please try again"}
	}
}

func (c *Client) count(ctx context.Context, method, path string, status int) {
	if c.requests == nil {
		return
	}
	c.requests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.Int("http.response.status_code", status),
		))
}
