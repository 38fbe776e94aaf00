package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/growthlab/marshalgo/internal/contract"
)

// maxErrorBodySize caps how much of an error response body is kept for messages.
const maxErrorBodySize = 4 * 1024

// retryBaseDelay is the starting backoff delay, doubled on each attempt.
const retryBaseDelay = time.Second

// Executor performs authenticated POSTs against the Marshal CGI scripts.
// Connection failures and overload statuses are retried with exponential
// backoff and an escalating per-attempt timeout; any other non-200 answer is
// returned as a StatusError. A circuit breaker sits around the wire call so a
// dead portal fails fast instead of eating the full retry schedule per slice.
type Executor struct {
	baseURL    string
	user       string
	password   string
	client     *http.Client
	maxRetries int
	baseWait   time.Duration
	retryWait  time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewExecutor builds an Executor from a validated config.
func NewExecutor(cfg *contract.Config) *Executor {
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}
	return &Executor{
		baseURL:    cfg.BaseURL,
		user:       cfg.User,
		password:   cfg.Password,
		client:     &http.Client{},
		maxRetries: cfg.ConnectRetries,
		baseWait:   cfg.RequestTimeout,
		retryWait:  retryBaseDelay,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "marshal-portal",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 8
			},
		}),
	}
}

// Do posts form to the named CGI script and returns the response body.
func (e *Executor) Do(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	if !KnownEndpoint(endpoint) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		// Timeout escalates with the attempt number so a slow portal gets
		// progressively more room before the connection is written off.
		timeout := e.baseWait * time.Duration(attempt+1)

		body, err := e.breaker.Execute(func() ([]byte, error) {
			return e.doOnce(ctx, endpoint, form, timeout)
		})
		if err == nil {
			return body, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: circuit breaker: %w", endpoint, err)
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !retryableStatus(statusErr.Code) {
			return nil, statusErr
		}
		lastErr = err

		if attempt == e.maxRetries {
			break
		}
		if err := e.backoff(ctx, attempt, err); err != nil {
			return nil, err
		}
	}
	return nil, &ConnectError{Endpoint: endpoint, Attempts: e.maxRetries + 1, Err: lastErr}
}

// DoJSON posts form to the named CGI script and decodes the JSON answer into out.
// Numbers are decoded as json.Number: candid values are 18-digit integers that
// lose their low digits through float64.
func (e *Executor) DoJSON(ctx context.Context, endpoint string, form url.Values, out any) error {
	body, err := e.Do(ctx, endpoint, form)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &ParseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// Stream posts form to the named CGI script and hands the live response body
// to fn. Used for the spectra tarball, which should not be buffered in memory.
// The retry schedule only covers failures before fn sees the body.
func (e *Executor) Stream(ctx context.Context, endpoint string, form url.Values, fn func(io.Reader) error) error {
	if !KnownEndpoint(endpoint) {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		timeout := e.baseWait * time.Duration(attempt+1)
		var consumed bool
		_, err := e.breaker.Execute(func() ([]byte, error) {
			return nil, e.streamOnce(ctx, endpoint, form, timeout, fn, &consumed)
		})
		if err == nil {
			return nil
		}
		if consumed || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !retryableStatus(statusErr.Code) {
			return statusErr
		}
		lastErr = err

		if attempt == e.maxRetries {
			break
		}
		if err := e.backoff(ctx, attempt, err); err != nil {
			return err
		}
	}
	return &ConnectError{Endpoint: endpoint, Attempts: e.maxRetries + 1, Err: lastErr}
}

// streamOnce is the single-attempt body of Stream. consumed flips once fn has
// been handed the body, after which the attempt must not be repeated.
func (e *Executor) streamOnce(ctx context.Context, endpoint string, form url.Values, timeout time.Duration, fn func(io.Reader) error, consumed *bool) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, e.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.user, e.password)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(snippet)}
	}

	*consumed = true
	return fn(resp.Body)
}

// doOnce performs a single authenticated POST with the given timeout and
// reads the whole body. Non-200 statuses become StatusError values.
func (e *Executor) doOnce(ctx context.Context, endpoint string, form url.Values, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, e.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.user, e.password)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		statusErr := &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(snippet)}
		if delay := retryAfterDelay(resp.Header); delay > 0 {
			// Keep the hint for the backoff wait without growing the error type.
			return nil, &retryAfterError{StatusError: statusErr, delay: delay}
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// backoff waits out the exponential delay for the given attempt, honoring a
// Retry-After hint when the portal sent one. The wait is context-cancellable.
func (e *Executor) backoff(ctx context.Context, attempt int, cause error) error {
	delay := e.retryWait * time.Duration(1<<uint(attempt))

	var hinted *retryAfterError
	if errors.As(cause, &hinted) {
		delay = hinted.delay
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryableStatus reports whether a status code is worth another attempt.
// 500 is deliberately terminal; the portal uses it for genuine script errors
// that do not heal on retry.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfterDelay parses an integer-seconds Retry-After header (RFC 6585).
func retryAfterDelay(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// retryAfterError is a StatusError carrying the portal's Retry-After hint.
type retryAfterError struct {
	*StatusError
	delay time.Duration
}

func (e *retryAfterError) Unwrap() error {
	return e.StatusError
}
