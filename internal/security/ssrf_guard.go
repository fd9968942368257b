// Package security provides construction of SSRF-guarded HTTP clients for
// outbound calls to third-party services.
package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewSafeClient builds an HTTP client that refuses connections to private,
// loopback, link-local and metadata addresses. safeurl validates resolved
// IPs at the dialer level, so DNS rebinding is covered as well.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}
