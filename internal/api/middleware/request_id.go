package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
)

const RequestIDHeader = "X-Request-Id"

// RequestID keeps a caller supplied request id or mints one, and echoes it
// on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(httpx.WithRequestID(r.Context(), id)))
	})
}
