package analytics

import (
    "context"
    "errors"
    "fmt"
    "time"

    xhttp "CoinPulse/pkg/http"
)

// HTTPServiceBase centralizes client construction and JSON request handling
// for the external model endpoints.
type HTTPServiceBase struct {
    baseURL string
    client  *xhttp.Client
    backoff time.Duration
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL.
func NewHTTPServiceBase(baseURL string, timeout time.Duration) *HTTPServiceBase {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &HTTPServiceBase{
        baseURL: baseURL,
        client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("coinpulse/1")),
        backoff: 50 * time.Millisecond,
    }
}

// Enabled reports whether a base URL was configured.
func (b *HTTPServiceBase) Enabled() bool { return b != nil && b.baseURL != "" }

// GetJSON issues a GET to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
    if !b.Enabled() {
        return fmt.Errorf("model http client not configured")
    }
    err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
        Method:      xhttp.MethodGet,
        URL:         b.baseURL + path,
        Headers:     map[string]string{"Accept": "application/json"},
        QueryParams: query,
    }, dest)
    if err != nil {
        return fmt.Errorf("get %s: %w", path, err)
    }
    return nil
}

// GetJSONWithRetry retries transient failures up to `attempts` times with a
// linear backoff. Client errors (4xx other than 429) are returned at once.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
    if attempts <= 1 {
        return b.GetJSON(ctx, path, query, dest)
    }
    var err error
    for i := 1; i <= attempts; i++ {
        err = b.GetJSON(ctx, path, query, dest)
        if err == nil || !retryable(err) || i == attempts {
            return err
        }
        select {
        case <-time.After(time.Duration(i) * b.backoff):
        case <-ctx.Done():
            return ctx.Err()
        }
    }
    return err
}

func retryable(err error) bool {
    var se *xhttp.StatusError
    if errors.As(err, &se) {
        return se.Retryable()
    }
    return !errors.Is(err, context.Canceled)
}
