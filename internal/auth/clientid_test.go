package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/google"
)

const installedKeyFile = `{
  "installed": {
    "client_id": "client-123.apps.googleusercontent.com",
    "client_secret": "secret-456",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost"]
  }
}`

func TestParseClientID_Installed(t *testing.T) {
	id, err := ParseClientID([]byte(installedKeyFile))
	require.NoError(t, err)

	assert.Equal(t, "client-123.apps.googleusercontent.com", id.Config.ClientID)
	assert.Equal(t, "secret-456", id.Config.ClientSecret)
	assert.Equal(t, RequiredScopes, id.Config.Scopes)
	assert.Equal(t, []string{"http://localhost"}, id.RedirectURIs)
}

func TestParseClientID_Web(t *testing.T) {
	data := `{
  "web": {
    "client_id": "web-client",
    "client_secret": "web-secret",
    "redirect_uris": ["https://example.com/callback"]
  }
}`
	id, err := ParseClientID([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "web-client", id.Config.ClientID)
	assert.Equal(t, []string{"https://example.com/callback"}, id.RedirectURIs)
	// Endpoint falls back to Google's when the file omits the URIs.
	assert.Equal(t, google.Endpoint.TokenURL, id.Config.Endpoint.TokenURL)
}

func TestParseClientID_CustomEndpoints(t *testing.T) {
	data := `{
  "installed": {
    "client_id": "c",
    "auth_uri": "https://auth.example.com/authorize",
    "token_uri": "https://auth.example.com/token"
  }
}`
	id, err := ParseClientID([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com/authorize", id.Config.Endpoint.AuthURL)
	assert.Equal(t, "https://auth.example.com/token", id.Config.Endpoint.TokenURL)
}

func TestParseClientID_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not JSON", data: "{nope"},
		{name: "neither envelope", data: `{"other": {}}`},
		{name: "missing client_id", data: `{"installed": {"client_secret": "s"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClientID([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadClientID_MissingFile(t *testing.T) {
	_, err := LoadClientID(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCopyLocalClientID(t *testing.T) {
	workDir := t.TempDir()
	t.Chdir(workDir)

	dst := filepath.Join(t.TempDir(), "config", "gcp-oauth.keys.json")

	// No key file in the working directory is not an error.
	installed, err := CopyLocalClientID(dst)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "gcp-oauth.keys.json"), []byte(installedKeyFile), 0600))

	installed, err = CopyLocalClientID(dst)
	require.NoError(t, err)
	assert.True(t, installed)

	id, err := LoadClientID(dst)
	require.NoError(t, err)
	assert.Equal(t, "client-123.apps.googleusercontent.com", id.Config.ClientID)
}

func TestCopyLocalClientID_RejectsInvalidKeyFile(t *testing.T) {
	workDir := t.TempDir()
	t.Chdir(workDir)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "gcp-oauth.keys.json"), []byte(`{"other":{}}`), 0600))

	_, err := CopyLocalClientID(filepath.Join(t.TempDir(), "dst.json"))
	assert.Error(t, err)
}
