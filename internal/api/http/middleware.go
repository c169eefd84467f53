package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"rentalhub-backend/internal/api/grpc/interceptor"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/security"
)

type contextKey struct{}

// RequestIDMiddleware tags each request with an id for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequestID(r.Context(), id)
		logger.DebugContext(ctx, "HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware validates the bearer token and stores the caller's user id
// in the request context.
func AuthMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}
			claims, err := tm.ValidateToken(interceptor.BearerToken(header))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, http.StatusForbidden, "access token required")
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(contextKey{}).(int32)
	return id, ok && id > 0
}
