// Package gateway is the REST client for the remote cart and payment gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/circuitbreaker"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// errCallTimeout is the cause attached to the per-call deadline, so it can be
// told apart from the caller's own cancellation.
var errCallTimeout = errors.New("gateway call timed out")

type Options struct {
	// Timeout bounds each call, including the breaker wait. Zero means 10s.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	// BreakerFailures trips the breaker after this many consecutive failures. Zero means 5.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *circuitbreaker.Breaker[*response]
	log     *slog.Logger
	metrics *metrics.Metrics
}

type response struct {
	status int
	body   []byte
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		breaker: circuitbreaker.New[*response](circuitbreaker.Settings{
			Name:                "gateway",
			ConsecutiveFailures: opts.BreakerFailures,
			OpenTimeout:         opts.BreakerTimeout,
			IsFailure:           countsAgainstBreaker,
		}, opts.Logger),
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// do sends one JSON request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path, token string, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, errCallTimeout)
	defer cancel()

	start := time.Now()
	body, err := c.roundTrip(ctx, op, method, path, token, in)
	c.metrics.ObserveGatewayCall(op, err)
	if gwErr, ok := AsError(err); ok && gwErr.Kind == KindCanceled {
		c.log.DebugContext(ctx, "gateway call canceled", "op", op, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	if err != nil {
		c.log.WarnContext(ctx, "gateway call failed", "op", op, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	c.log.DebugContext(ctx, "gateway call", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path, token string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, &Error{Op: op, Kind: KindMalformedRequest, Err: err}
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindMalformedRequest, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, &Error{Op: op, Kind: transportKind(ctx), Err: err}
		}
		defer httpResp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBody))
		if err != nil {
			return nil, &Error{Op: op, Kind: transportKind(ctx), Status: httpResp.StatusCode, Err: err}
		}
		r := &response{status: httpResp.StatusCode, body: raw}
		if r.status < 200 || r.status > 299 {
			return r, &Error{Op: op, Kind: KindRejected, Status: r.status, Message: messageOf(raw)}
		}
		return r, nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, &Error{Op: op, Kind: KindNoResponse, Err: err}
	}
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// transportKind tells a caller that gave up from a gateway that never answered.
func transportKind(ctx context.Context) ErrorKind {
	if ctx.Err() != nil && !errors.Is(context.Cause(ctx), errCallTimeout) {
		return KindCanceled
	}
	return KindNoResponse
}

// decode unmarshals a 2xx body strictly; an empty body leaves out untouched.
func decode(op string, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: KindUnexpected, Status: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// messageOf reads the "message" field leniently; anything else yields "".
func messageOf(body []byte) string {
	var m messageResponse
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	return m.Message
}
