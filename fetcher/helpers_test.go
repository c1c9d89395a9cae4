package fetcher

import (
	"io"
	"time"

	"golang.org/x/exp/slog"
)

var fastRetry = RetryConfig{
	MaxTries:        3,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	MaxElapsed:      time.Second,
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
