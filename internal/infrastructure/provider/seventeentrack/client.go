// Package seventeentrack is the HTTP client for the 17TRACK tracking API and
// its webhook signature scheme.
package seventeentrack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api.17track.net/track/v2.2"

	// MaxBatch is the provider limit of tracking numbers per request.
	MaxBatch = 40

	defaultTimeout   = 20 * time.Second
	defaultRate      = 3.0
	defaultUserAgent = "customs-tracking/1.0"
	maxResponseBytes = 16 << 20
)

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooEarly:           true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

var errDecode = errors.New("decode provider response")

type Config struct {
	BaseURL           string
	APIKey            string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	Code       int
	Body       string
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("17track: unexpected status %d: %s", e.Code, e.Body)
}

// RetryAfter returns the wait requested through the Retry-After header.
func (e *StatusError) RetryAfter() time.Duration { return e.retryAfter }

// APIError is a 2xx answer whose envelope reports a failure.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("17track: api error %d: %s", e.Code, e.Message)
}

// Client implements ports.TrackingProvider.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	exec    *resilience.Executor
	log     zerolog.Logger
}

// NewClient builds a client. exec may be nil, in which case each request is
// attempted once.
func NewClient(cfg Config, exec *resilience.Executor, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		exec:    exec,
		log:     log,
	}
}

// Register subscribes numbers for tracking, MaxBatch per request.
func (c *Client) Register(ctx context.Context, numbers []string) (*ports.RegisterOutcome, error) {
	out := &ports.RegisterOutcome{Accepted: []string{}, Rejected: []ports.Rejection{}}
	for _, batch := range chunk(numbers, MaxBatch) {
		var resp any
		if err := c.post(ctx, "register", numberList(batch), &resp); err != nil {
			return nil, err
		}

		accepted := responseItems(resp)
		rejected := rejectedItems(resp)
		if len(accepted) == 0 && len(rejected) == 0 {
			out.Accepted = append(out.Accepted, batch...)
			continue
		}
		for _, item := range accepted {
			if n := itemNumber(item); n != "" {
				out.Accepted = append(out.Accepted, n)
			}
		}
		for _, item := range rejected {
			out.Rejected = append(out.Rejected, ports.Rejection{Number: itemNumber(item), Reason: rejectionReason(item)})
		}
	}
	return out, nil
}

// Push asks the provider to re-send the latest state of numbers through the
// webhook.
func (c *Client) Push(ctx context.Context, numbers []string) error {
	for _, batch := range chunk(numbers, MaxBatch) {
		if err := c.post(ctx, "push", numberList(batch), nil); err != nil {
			return err
		}
	}
	return nil
}

// GetTrackInfo fetches the current raw payload of numbers. Numbers the
// provider does not return are omitted.
func (c *Client) GetTrackInfo(ctx context.Context, numbers []string) ([]ports.ProviderRecord, error) {
	var out []ports.ProviderRecord
	for _, batch := range chunk(numbers, MaxBatch) {
		var resp any
		if err := c.post(ctx, "gettrackinfo", numberList(batch), &resp); err != nil {
			return nil, err
		}
		for _, item := range responseItems(resp) {
			n := itemNumber(item)
			if n == "" {
				continue
			}
			out = append(out, ports.ProviderRecord{Number: n, Payload: item})
		}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("17track %s: api key not configured", path)
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("17track %s: encode request: %w", path, err)
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + path

	call := func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("17token", c.cfg.APIKey)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("X-Request-Id", uuid.NewString())

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{
				Code:       resp.StatusCode,
				Body:       truncateBody(data),
				retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}
		if out == nil {
			return nil
		}
		if err := sonic.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", errDecode, err)
		}
		if apiErr := envelopeError(out); apiErr != nil {
			return apiErr
		}
		return nil
	}

	start := time.Now()
	if c.exec != nil {
		err = c.exec.Execute(ctx, "17track."+path, call, classifyError)
	} else {
		err = call(ctx)
	}
	c.log.Debug().Str("path", path).Dur("took", time.Since(start)).Err(err).Msg("17track request")
	if err != nil {
		return fmt.Errorf("17track %s: %w", path, err)
	}
	return nil
}

func classifyError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var se *StatusError
	if errors.As(err, &se) {
		if retryableStatus[se.Code] {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: se.Code >= 500}
	}
	var ae *APIError
	if errors.Is(err, errDecode) || errors.As(err, &ae) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	// Transport failures.
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

// envelopeError reports {"code": <non-zero>, ...} envelopes that carry no data.
func envelopeError(out any) error {
	ptr, ok := out.(*any)
	if !ok {
		return nil
	}
	m, ok := (*ptr).(map[string]any)
	if !ok {
		return nil
	}
	code, ok := m["code"].(float64)
	if !ok || code == 0 {
		return nil
	}
	if _, hasData := m["data"]; hasData {
		return nil
	}
	msg, _ := m["message"].(string)
	return &APIError{Code: int(code), Message: msg}
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

func numberList(numbers []string) []map[string]string {
	out := make([]map[string]string, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, map[string]string{"number": n})
	}
	return out
}

func chunk(s []string, size int) [][]string {
	var out [][]string
	for len(s) > 0 {
		n := min(size, len(s))
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}
