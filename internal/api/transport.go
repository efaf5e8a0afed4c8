package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// loggingTransport logs each round trip and turns panics in the wrapped
// transport into errors.
type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func newLoggingTransport(next http.RoundTripper, log *zap.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if lt, ok := next.(*loggingTransport); ok {
		next = lt.next
	}
	return &loggingTransport{next: next, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("panic",
				zap.Any("reason", r),
				zap.ByteString("stack", debug.Stack()),
				zap.String("path", req.URL.Path),
			)
			resp, err = nil, fmt.Errorf("round trip panic: %v", r)
		}
	}()

	resp, err = t.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	// никаких пейлоадов, только метаданные
	t.log.Info("api",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
		zap.Bool("failed", err != nil),
	)
	return resp, err
}
