package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/reflextile/internal/api/apierr"
	"github.com/mcoot/reflextile/internal/middleware"
)

// Common returns the middleware every API route runs behind, outermost
// first: panic recovery answering with the JSON error envelope, request
// logging, then the request deadline.
func Common(logger *slog.Logger, timeout time.Duration) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
			apierr.WriteError(w, apierr.NewInternalError())
		}),
		middleware.Logging(logger),
		Timeout(timeout),
	}
}

// Timeout bounds the request context so store calls made by handlers cannot
// block past d
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
