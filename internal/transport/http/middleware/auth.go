package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository"
)

type contextKey string

const userKey contextKey = "user"

const unauthenticatedBody = `{"error":{"code":"UNAUTHENTICATED","message":"Missing or invalid credential"}}`

// Auth resolves the bearer credential to an identity and attaches it to the
// request context. Banned identities are rejected even when the credential
// itself verifies.
func Auth(jwtSecret string, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, unauthenticatedBody)
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				writeAuthError(w, http.StatusUnauthorized, unauthenticatedBody)
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, unauthenticatedBody)
				return
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, unauthenticatedBody)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, `{"error":{"code":"INTERNAL","message":"Something went wrong"}}`)
				return
			}
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, unauthenticatedBody)
				return
			}
			if user.Banned {
				writeAuthError(w, http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"Account is banned"}}`)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin composes after Auth and rejects non-admin identities.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil || !user.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"Admin access required"}}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser extracts the resolved identity from the request context.
// Returns nil when the request did not pass through Auth.
func GetUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

func writeAuthError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
