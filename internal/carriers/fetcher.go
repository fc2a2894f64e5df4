package carriers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"
)

// RequestOptions describes the upstream request a carrier wants issued
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    string
}

// Response is a fully buffered upstream response
type Response struct {
	StatusCode int
	body       []byte
}

// Text returns the response body decoded to UTF-8
func (r *Response) Text() string {
	return string(r.body)
}

// Fetcher is the narrow HTTP capability injected into carriers. Carriers
// depend only on this interface, never on a concrete HTTP client; retry,
// timeout and rate-limit policy all live behind it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts RequestOptions) (*Response, error)
}

// RateLimitInfo contains rate limiting information for a fetcher
type RateLimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetTime  time.Time     `json:"reset_time"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// HTTPFetcher is the default Fetcher backed by net/http. It sends
// browser-like headers, keeps a conservative in-process rate limit and
// retries transient failures with exponential backoff. Response bodies are
// re-encoded to UTF-8 based on the declared charset, which matters for the
// EUC-KR pages some Korean carriers still serve.
type HTTPFetcher struct {
	carrier    string
	userAgent  string
	client     *http.Client
	rateLimit  *RateLimitInfo
	maxRetries uint64
}

// NewHTTPFetcher creates the default fetcher for a carrier
func NewHTTPFetcher(carrier, userAgent string, timeout time.Duration, maxRetries int) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPFetcher{
		carrier:   carrier,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
		rateLimit: &RateLimitInfo{
			Limit:     10, // Conservative rate limit for web scraping
			Remaining: 10,
			ResetTime: time.Now().Add(time.Minute),
		},
		maxRetries: uint64(maxRetries),
	}
}

// GetRateLimit returns current rate limit information
func (f *HTTPFetcher) GetRateLimit() *RateLimitInfo {
	return f.rateLimit
}

// Fetch issues the request and returns the buffered, UTF-8 decoded response
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	if f.rateLimit.Remaining <= 0 && time.Now().Before(f.rateLimit.ResetTime) {
		return nil, &CarrierError{
			Carrier:   f.carrier,
			Code:      ErrCodeRateLimit,
			Message:   "Rate limit exceeded for web scraping",
			Retryable: true,
			RateLimit: true,
		}
	}

	var resp *Response
	operation := func() error {
		var err error
		resp, err = f.fetchOnce(ctx, url, opts)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	f.rateLimit.Remaining--
	if f.rateLimit.Remaining <= 0 {
		f.rateLimit.ResetTime = time.Now().Add(time.Minute)
	}

	return resp, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	// Headers to mimic a real browser; carriers may override via opts
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	httpResp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, backoff.Permanent(&CarrierError{
			Carrier:   f.carrier,
			Code:      ErrCodeRateLimit,
			Message:   "Rate limited by carrier website",
			Retryable: true,
			RateLimit: true,
		})
	}
	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("HTTP error %d", httpResp.StatusCode)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("HTTP error %d", httpResp.StatusCode))
	}

	// Decode legacy charsets (EUC-KR et al.) to UTF-8 before buffering
	reader, err := charset.NewReader(httpResp.Body, httpResp.Header.Get("Content-Type"))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to detect charset: %w", err))
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		body:       data,
	}, nil
}
