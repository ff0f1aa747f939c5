package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/tradedesk/internal/core/datamodel/paymentgateway"
	"github.com/sethvargo/go-retry"
)

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

type client struct {
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	logger     *slog.Logger
}

func newClient(cfg Config, logger *slog.Logger) *client {
	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		attempts:   cfg.RetryAttempts,
		backoff:    cfg.Backoff,
		logger:     logger,
	}
}

// postJSON sends payload and returns the raw response body. Transport errors and
// 5xx responses are retried with a constant backoff; 4xx responses are not.
func (c *client) postJSON(ctx context.Context, url string, payload interface{}, decorate func(*http.Request)) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var raw []byte
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(c.attempts-1), retry.NewConstant(c.backoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if decorate != nil {
			decorate(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("gateway request failed", "url", url, "attempt", attempt, "error", err)
			return retry.RetryableError(fmt.Errorf("HTTP request failed: %w", err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to read response: %w", err))
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Warn("gateway server error", "url", url, "attempt", attempt, "status_code", resp.StatusCode)
			return retry.RetryableError(&StatusError{StatusCode: resp.StatusCode, Body: errorDescription(data)})
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{StatusCode: resp.StatusCode, Body: errorDescription(data)}
		}

		raw = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func errorDescription(body []byte) string {
	var payload paymentgatewaytypes.ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Description != "" {
		return payload.Error.Description
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

// IsClientError reports whether err is a 4xx answer from the provider.
func IsClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError
}
