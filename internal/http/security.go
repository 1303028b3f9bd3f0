package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// withMiddleware wraps a handler with request tracing, security headers,
// rate limiting on mutating methods and structured request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, ip)

		if mutating(r.Method) && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
