package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
)

type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// requestFields is filled in by the auth and tenant middleware further down
// the chain so the access log can report who made the call.
type requestFields struct {
	userID   string
	tenantID string
}

type fieldsKey struct{}

func annotate(ctx context.Context, userID, tenantID string) {
	if f, ok := ctx.Value(fieldsKey{}).(*requestFields); ok {
		if userID != "" {
			f.userID = userID
		}
		if tenantID != "" {
			f.tenantID = tenantID
		}
	}
}

// Logger writes one access log line per request.
func Logger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &StatusRecorder{ResponseWriter: w}
			fields := &requestFields{}
			r = r.WithContext(context.WithValue(r.Context(), fieldsKey{}, fields))

			next.ServeHTTP(rec, r)

			logger.Info().
				Str("request_id", httpx.RequestID(r.Context())).
				Str("user_id", fields.userID).
				Str("tenant_id", fields.tenantID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.Status()).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}

// Recover turns a panic into a 500 with a generic body.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error().
						Str("request_id", httpx.RequestID(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("panic", fmt.Sprint(v)).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
