package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type RetryConfig struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxTries:        3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxElapsed:      20 * time.Second,
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doWithRetry sends the request built by newReq, retrying network errors and
// transient statuses. Any other non-2xx status is returned as a
// *statusError without retrying.
func doWithRetry(ctx context.Context, client *http.Client, rc RetryConfig, newReq func() (*http.Request, error)) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		req, err := newReq()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		sErr := &statusError{Code: resp.StatusCode, Body: readSnippet(resp)}
		if isRetryableStatus(resp.StatusCode) {
			return nil, sErr
		}
		return nil, backoff.Permanent(sErr)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = rc.InitialInterval
	bo.MaxInterval = rc.MaxInterval

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(rc.MaxTries), backoff.WithMaxElapsedTime(rc.MaxElapsed))
}
