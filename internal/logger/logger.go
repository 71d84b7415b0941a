// Package logger owns the process-wide zap logger and the HTTP access
// log middleware.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Log is the shared SugaredLogger. It stays a no-op logger until Init runs,
// so packages can log from tests that never initialise it.
var Log = zap.NewNop().Sugar()

// Init replaces Log with a development logger at the given level
// ("debug", "info", "warn", "error", "fatal").
func Init(level string) error {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes buffered entries. Syncing a terminal returns EINVAL, which is ignored.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// statusRecorder remembers the first status written and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if r.status == 0 {
		r.status = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size

	return size, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// WithLoggingHTTPMiddleware writes one structured access log entry per
// request, at error level for 5xx answers. It expects chi's RequestID
// middleware to run first.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}

		h.ServeHTTP(recorder, r)

		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}

		fields := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.RequestURI,
			"status", recorder.status,
			"size", recorder.size,
			"duration", time.Since(start),
		}
		if recorder.status >= http.StatusInternalServerError {
			Log.Errorw("request failed", fields...)
			return
		}
		Log.Infow("request served", fields...)
	})
}
