package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterPerClient(t *testing.T) {
	req := require.New(t)

	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string) int {
		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		r.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	// Burst of two, then the bucket is empty.
	req.Equal(http.StatusOK, do("10.0.0.1:1234"))
	req.Equal(http.StatusOK, do("10.0.0.1:1234"))
	req.Equal(http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// A different client has its own bucket.
	req.Equal(http.StatusOK, do("10.0.0.2:1234"))
}
