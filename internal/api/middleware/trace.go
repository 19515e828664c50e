package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// TraceHeader carries the request trace id on both requests and responses.
const TraceHeader = "X-Trace-ID"

// TraceMiddleware assigns each request a trace id, honoring one supplied by
// the caller, and propagates it via context and the response header.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceHeader, traceID)

		ctx := context.WithValue(r.Context(), traceContextKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
