package middleware

import (
	"context"
	"net/http"
	"strings"

	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenParser validates a token and returns the user id it carries
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAuth rejects requests without a valid bearer token and stores the user id in the context
func RequireAuth(tokens TokenParser) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.RespondError(w, utils.NewUnauthorizedError("authorization header is required"))
				return
			}
			token, ok := BearerToken(header)
			if !ok {
				utils.RespondError(w, utils.NewUnauthorizedError("authorization header format must be Bearer {token}"))
				return
			}
			userID, err := tokens.ParseToken(token)
			if err != nil {
				utils.RespondError(w, utils.NewUnauthorizedError("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "" outside RequireAuth
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
