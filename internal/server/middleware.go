package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Chargde-Porcupine/SHtack/internal/clog"
)

// RequestIDHeader carries the request ID in both directions. A client may
// supply its own UUID to correlate retries; anything else is replaced.
const RequestIDHeader = "X-Request-Id"

// contextKey is a type for context keys to avoid collisions.
type contextKey int

const (
	// requestIDKey is the context key for the request ID string.
	requestIDKey contextKey = iota
)

// RequestID returns the request ID attached by the middleware, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware attaches a request ID to the context and response
// headers and logs each request at debug level once it completes.
//
// The middleware:
//   - Reuses a well-formed UUID from the X-Request-Id header
//   - Generates a new random UUID otherwise
//   - Echoes the ID in the X-Request-Id response header
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		clog.Debug("%s %s -> %d in %s req=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), id)
	})
}
