// Package idp implements external identity provider token verification.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dkovac/orbit/internal/service"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
// The endpoint is overridable for tests.
type GoogleVerifier struct {
	httpClient *http.Client
	endpoint   string
}

func NewGoogleVerifier(httpClient *http.Client, endpoint string) *GoogleVerifier {
	if endpoint == "" {
		endpoint = defaultTokenInfoURL
	}
	return &GoogleVerifier{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

// tokenInfo is the subset of Google's tokeninfo response we consume.
type tokenInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

// Verify asks the provider whether the token is genuine and returns the
// identity it attests to.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*service.VerifiedIdentity, error) {
	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d: %s", resp.StatusCode, string(body))
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing tokeninfo response: %w", err)
	}

	if info.Email == "" || info.Sub == "" {
		return nil, fmt.Errorf("tokeninfo response missing identity fields")
	}
	if info.EmailVerified != "true" {
		return nil, fmt.Errorf("email not verified by provider")
	}

	return &service.VerifiedIdentity{Email: info.Email, Name: info.Name}, nil
}

// compile-time interface check
var _ service.TokenVerifier = (*GoogleVerifier)(nil)
