package enrichment

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	defaultRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 2 * time.Second
)

// retryConfig экспоненциальная задержка между повторами запроса к уровню
type retryConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

func newRetryConfig(maxRetries int, delay time.Duration) retryConfig {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return retryConfig{
		maxAttempts:  maxRetries + 1,
		initialDelay: delay,
		maxDelay:     maxRetryDelay,
		multiplier:   2.0,
	}
}

// retryable повторяем сетевые ошибки, 429 и 5xx. Отмена контекста и ошибки 4xx окончательны.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var te *tierError
	if !errors.As(err, &te) {
		return false
	}
	switch te.reason {
	case ReasonTransport:
		return true
	case ReasonStatus:
		return transientStatus(te.status)
	default:
		return false
	}
}

// transientStatus сообщает, что ответ с этим статусом стоит повторить позже
func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retry выполняет fn до maxAttempts раз; ожидание между попытками прерывается ctx
func retry(ctx context.Context, config retryConfig, fn func() error) error {
	var lastErr error
	delay := config.initialDelay

	for attempt := 1; attempt <= config.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) || attempt == config.maxAttempts {
			return lastErr
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * config.multiplier)
		if delay > config.maxDelay {
			delay = config.maxDelay
		}
	}

	return lastErr
}
