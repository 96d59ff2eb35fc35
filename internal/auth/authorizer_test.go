package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testIdentity(tokenURL string, redirects []string) *ClientIdentity {
	return &ClientIdentity{
		Config: &oauth2.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://auth.example.com/authorize",
				TokenURL: tokenURL,
			},
			Scopes: []string{"scope-a"},
		},
		RedirectURIs: redirects,
	}
}

func newTestAuthorizer(tokenURL string, redirects []string) *Authorizer {
	a := NewAuthorizer(testIdentity(tokenURL, redirects), nil)
	a.Out = io.Discard
	a.OpenBrowser = func(string) error { return nil }
	a.newState = func() string { return "fixed-state" }
	return a
}

func tokenEndpoint(t *testing.T, response string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type recordingAuthObserver struct {
	results []string
}

func (o *recordingAuthObserver) RecordOAuthAuth(_ context.Context, result string) {
	o.results = append(o.results, result)
}

func TestAuthorize_LoopbackFlow(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"new-access","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`, http.StatusOK)

	obs := &recordingAuthObserver{}
	a := newTestAuthorizer(srv.URL, nil)
	a.Observer = obs
	a.OpenBrowser = func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "test-client", q.Get("client_id"))
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Equal(t, "consent", q.Get("prompt"))

		resp, err := http.Get(q.Get("redirect_uri") + "?code=test-code&state=" + q.Get("state"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		return nil
	}

	cred, err := a.Authorize(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "new-refresh", cred.RefreshToken)
	assert.Equal(t, []string{"scope-a"}, cred.Scopes)
	assert.False(t, cred.Expiry.IsZero())
	assert.Equal(t, []string{"success"}, obs.results)
}

func TestAuthorize_UserDenied(t *testing.T) {
	obs := &recordingAuthObserver{}
	a := newTestAuthorizer("http://unused.invalid/token", nil)
	a.Observer = obs
	a.OpenBrowser = func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		resp, err := http.Get(u.Query().Get("redirect_uri") + "?error=access_denied")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		return nil
	}

	_, err := a.Authorize(context.Background(), "")
	assert.True(t, IsAuthError(err, ReasonDenied), "expected denied error, got %v", err)
	assert.Equal(t, []string{"failure"}, obs.results)
}

func TestAuthorize_Timeout(t *testing.T) {
	a := newTestAuthorizer("http://unused.invalid/token", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Authorize(ctx, "")
	assert.True(t, IsAuthError(err, ReasonTimeout), "expected timeout error, got %v", err)
}

func TestAuthorize_RedirectNotRegistered(t *testing.T) {
	a := newTestAuthorizer("http://unused.invalid/token", []string{"http://localhost:9999/callback"})

	_, err := a.Authorize(context.Background(), "http://127.0.0.1:8888/other")
	assert.True(t, IsAuthError(err, ReasonRedirectMismatch), "expected redirect mismatch, got %v", err)
}

func TestAuthorize_ManualFlow(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"manual-access","token_type":"Bearer","refresh_token":"manual-refresh","expires_in":3600}`, http.StatusOK)

	a := newTestAuthorizer(srv.URL, []string{"https://example.com/callback"})
	a.CodeIn = strings.NewReader("pasted-code\n")

	cred, err := a.Authorize(context.Background(), "https://example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, "manual-access", cred.AccessToken)
	assert.Equal(t, "manual-refresh", cred.RefreshToken)
}

func TestAuthorize_ManualFlowEmptyCode(t *testing.T) {
	a := newTestAuthorizer("http://unused.invalid/token", []string{"https://example.com/callback"})
	a.CodeIn = strings.NewReader("\n")

	_, err := a.Authorize(context.Background(), "https://example.com/callback")
	assert.True(t, IsAuthError(err, ReasonDenied), "expected denied error, got %v", err)
}

func TestAuthorize_NoRefreshTokenInResponse(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"only-access","token_type":"Bearer","expires_in":3600}`, http.StatusOK)

	a := newTestAuthorizer(srv.URL, []string{"https://example.com/callback"})
	a.CodeIn = strings.NewReader("pasted-code\n")

	_, err := a.Authorize(context.Background(), "https://example.com/callback")
	assert.True(t, IsAuthError(err, ReasonDenied), "expected denied error, got %v", err)
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		wantCode   string
		wantReason Reason
	}{
		{
			name:     "valid callback",
			query:    url.Values{"code": {"abc"}, "state": {"fixed-state"}},
			wantCode: "abc",
		},
		{
			name:       "state mismatch",
			query:      url.Values{"code": {"abc"}, "state": {"forged"}},
			wantReason: ReasonDenied,
		},
		{
			name:       "missing code",
			query:      url.Values{"state": {"fixed-state"}},
			wantReason: ReasonDenied,
		},
		{
			name:       "provider error",
			query:      url.Values{"error": {"temporarily_unavailable"}},
			wantReason: ReasonDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseCallback(tt.query, "fixed-state")
			if tt.wantReason != "" {
				assert.True(t, IsAuthError(res.err, tt.wantReason), "got %v", res.err)
				return
			}
			require.NoError(t, res.err)
			assert.Equal(t, tt.wantCode, res.code)
		})
	}
}

func TestRefresh_Success(t *testing.T) {
	srv := tokenEndpoint(t, `{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`, http.StatusOK)
	a := newTestAuthorizer(srv.URL, nil)

	cred := &Credential{
		AccessToken:  "stale",
		RefreshToken: "1//refresh",
		Scopes:       []string{"scope-a"},
		Expiry:       time.Now().Add(-time.Hour),
	}

	fresh, err := a.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", fresh.AccessToken)
	// Google omits the refresh token on refresh responses; the stored
	// one stays authoritative.
	assert.Equal(t, "1//refresh", fresh.RefreshToken)
	assert.Equal(t, []string{"scope-a"}, fresh.Scopes)
}

func TestRefresh_InvalidGrant(t *testing.T) {
	srv := tokenEndpoint(t, `{"error":"invalid_grant","error_description":"Token has been revoked."}`, http.StatusBadRequest)
	a := newTestAuthorizer(srv.URL, nil)

	_, err := a.Refresh(context.Background(), &Credential{RefreshToken: "revoked"})
	assert.True(t, IsAuthError(err, ReasonInvalidGrant), "expected invalid_grant, got %v", err)
}

func TestRefresh_ServerError(t *testing.T) {
	srv := tokenEndpoint(t, `{"error":"internal_error"}`, http.StatusInternalServerError)
	a := newTestAuthorizer(srv.URL, nil)

	_, err := a.Refresh(context.Background(), &Credential{RefreshToken: "1//refresh"})
	assert.True(t, IsNetworkError(err), "expected network error, got %v", err)
}

func TestRefresh_EndpointUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	a := newTestAuthorizer(srv.URL, nil)

	_, err := a.Refresh(context.Background(), &Credential{RefreshToken: "1//refresh"})
	assert.True(t, IsNetworkError(err), "expected network error, got %v", err)
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	a := newTestAuthorizer("http://unused.invalid/token", nil)

	_, err := a.Refresh(context.Background(), &Credential{AccessToken: "stale"})
	assert.True(t, IsAuthError(err, ReasonInvalidGrant), "expected invalid_grant, got %v", err)
}

func TestIsLoopbackURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"http://localhost:8080/callback", true},
		{"http://127.0.0.1:3000/", true},
		{"http://[::1]:8080/cb", true},
		{"https://example.com/callback", false},
		{"http://192.168.1.10/cb", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopbackURI(tt.uri))
		})
	}
}
