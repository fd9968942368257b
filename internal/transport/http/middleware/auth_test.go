package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository/memory"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func seedUser(t *testing.T, users *memory.UserRepo, banned bool, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: uuid.NewString()[:8],
		Role:     role,
		Banned:   banned,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestAuthMiddleware(t *testing.T) {
	users := memory.NewUserRepo(memory.NewStore())
	active := seedUser(t, users, false, domain.RoleUser)
	banned := seedUser(t, users, true, domain.RoleUser)

	var gotUser *domain.User
	handler := Auth(testSecret, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", active.ID.String()), http.StatusUnauthorized},
		{"subject is not a uuid", "Bearer " + signToken(t, testSecret, "bogus"), http.StatusUnauthorized},
		{"unknown identity", "Bearer " + signToken(t, testSecret, uuid.NewString()), http.StatusUnauthorized},
		{"banned identity", "Bearer " + signToken(t, testSecret, banned.ID.String()), http.StatusForbidden},
		{"valid credential", "Bearer " + signToken(t, testSecret, active.ID.String()), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			gotUser = nil

			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			req.Equal(tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				req.NotNil(gotUser)
				req.Equal(active.ID, gotUser.ID)
			} else {
				req.Nil(gotUser)
				req.Contains(w.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	users := memory.NewUserRepo(memory.NewStore())
	regular := seedUser(t, users, false, domain.RoleUser)
	admin := seedUser(t, users, false, domain.RoleAdmin)

	handler := Auth(testSecret, users)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{"regular user", regular, http.StatusForbidden},
		{"admin user", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			r := httptest.NewRequest(http.MethodPut, "/admin/users/x/ban", nil)
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, tt.user.ID.String()))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			req.Equal(tt.wantStatus, w.Code)
		})
	}
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	req := require.New(t)

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	req.Equal(http.StatusForbidden, w.Code)
}
