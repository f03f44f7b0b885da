// internal/sources/client.go
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxTries       = 3
	defaultRetryDelay     = 500 * time.Millisecond
)

// httpClient is the shared retrying JSON-over-HTTP transport for the source
// adapters.
type httpClient struct {
	http       *http.Client
	maxTries   uint
	retryDelay time.Duration
	logger     *zap.Logger
}

func newHTTPClient(timeout time.Duration, maxTries uint, retryDelay time.Duration, logger *zap.Logger) *httpClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if maxTries == 0 {
		maxTries = defaultMaxTries
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &httpClient{
		http:       &http.Client{Timeout: timeout},
		maxTries:   maxTries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// getJSON performs a GET with exponential-backoff retries and decodes the
// response body into out.
func (c *httpClient) getJSON(ctx context.Context, url string, out interface{}) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelay
	policy.MaxInterval = c.retryDelay * 10

	notify := func(err error, duration time.Duration) {
		c.logger.Debug("Retrying source request",
			zap.String("url", url),
			zap.Duration("backoff", duration),
			zap.Error(err))
	}

	operation := func() ([]byte, error) {
		return c.doGet(ctx, url)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func (c *httpClient) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return body, nil
}
