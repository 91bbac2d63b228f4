package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/plumeworks/plume/internal/buildinfo"
	"github.com/plumeworks/plume/internal/logging"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 * 1024 * 1024 // 4 MB

// newHTTPClient builds the shared retrying HTTP client: three attempts
// total, retrying only the statuses worth retrying for the given provider.
// Every request identifies itself with a plume User-Agent.
func newHTTPClient(component string, extraRetryStatuses ...int) *retryablehttp.Client {
	retryable := map[int]bool{
		http.StatusTooManyRequests:    true,
		http.StatusServiceUnavailable: true,
		http.StatusGatewayTimeout:     true,
	}
	for _, s := range extraRetryStatuses {
		retryable[s] = true
	}

	logger := logging.New(component)

	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = time.Second
	c.RetryWaitMax = 30 * time.Second
	c.HTTPClient.Timeout = 30 * time.Second
	c.Logger = nil
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		return retryable[resp.StatusCode], nil
	}
	c.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		req.Header.Set("User-Agent", userAgent())
		if attempt > 0 {
			logger.Debug("retrying request", "url", req.URL.Redacted(), "attempt", attempt)
		}
	}
	return c
}

func userAgent() string {
	return fmt.Sprintf("plume/%s (wiki publishing pipeline)", buildinfo.Version)
}

// statusError reports a non-200 provider response.
type statusError struct {
	code int
	host string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("search: unexpected status %d from %s", e.code, e.host)
}

// fetchBody GETs a URL and returns its body, size-capped.
func fetchBody(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("search: building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, host: req.URL.Host}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("search: reading response: %w", err)
	}
	return body, nil
}

// fetchJSON GETs a URL and decodes its JSON body into target.
func fetchJSON(ctx context.Context, client *retryablehttp.Client, url string, target any) error {
	body, err := fetchBody(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("search: decoding response: %w", err)
	}
	return nil
}
