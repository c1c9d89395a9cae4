package fetcher

import (
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultHTTPTimeout = 30 * time.Second

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// readSnippet drains at most 4KiB of the body for error reporting and closes it.
func readSnippet(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return strings.TrimSpace(string(b))
}
