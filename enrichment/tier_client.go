package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRateLimitPerSec = 40
	maxResponseBytes       = 1 << 20
)

// tierClient HTTP-клиент уровня поиска с таймаутом и ограничением частоты
type tierClient struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	retry       retryConfig
}

// tierError неудачный запрос с причиной для метрик
type tierError struct {
	reason string
	status int // HTTP статус для ReasonStatus
	err    error
}

func (e *tierError) Error() string {
	return e.err.Error()
}

func (e *tierError) Unwrap() error {
	return e.err
}

func newTierClient(config *EnricherConfig) *tierClient {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimitPerSec <= 0 {
		config.RateLimitPerSec = defaultRateLimitPerSec
	}

	return &tierClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		timeout: config.Timeout,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimitPerSec), 1),
		retry:       newRetryConfig(config.MaxRetries, config.RetryDelay),
	}
}

// getJSON выполняет GET {baseURL}{path}?params и декодирует ответ в out.
// Временные ошибки повторяются согласно MaxRetries.
func (c *tierClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	return retry(ctx, c.retry, func() error {
		return c.getJSONOnce(ctx, path, params, out)
	})
}

func (c *tierClient) getJSONOnce(ctx context.Context, path string, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &tierError{reason: ReasonTransport, err: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &tierError{reason: ReasonTransport, err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &tierError{reason: ReasonTransport, err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &tierError{reason: ReasonTransport, err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &tierError{reason: ReasonStatus, status: resp.StatusCode, err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &tierError{reason: ReasonDecode, err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// lookupFailure превращает ошибку getJSON в результат с Success=false
func lookupFailure(source, query string, err error) *LookupResult {
	reason, status := ReasonTransport, 0
	var te *tierError
	if errors.As(err, &te) {
		reason, status = te.reason, te.status
	}
	result := failedResult(source, query, reason, err.Error())
	result.Status = status
	return result
}
