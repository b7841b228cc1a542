package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/username/cryptogains/src/logger"
)

type contextKey string

const requestIDContextKey = contextKey("requestID")

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID (honoring one supplied
// by the client) and logs its lifecycle.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.L.Debug("Request completed",
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// GetRequestIDFromContext returns the request ID set by RequestIDMiddleware.
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDContextKey).(string)
	return requestID, ok
}
