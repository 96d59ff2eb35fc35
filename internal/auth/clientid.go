package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// RequiredScopes are the Gmail scopes every credential must cover.
// Modify grants read, send, label and trash operations; settings.basic
// covers filter management.
var RequiredScopes = []string{
	gmailv1.GmailModifyScope,
	gmailv1.GmailSettingsBasicScope,
}

// clientIDRecord is the per-application section of the Google Cloud
// OAuth client download. Desktop clients use the "installed" envelope,
// web clients the "web" envelope.
type clientIDRecord struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

type clientIDFile struct {
	Installed *clientIDRecord `json:"installed"`
	Web       *clientIDRecord `json:"web"`
}

// ClientIdentity is the OAuth client configuration parsed from the
// Google Cloud key file.
type ClientIdentity struct {
	Config       *oauth2.Config
	RedirectURIs []string
}

// LoadClientID reads the OAuth client identity from the given key file.
// An empty path falls back to DefaultClientIDPath.
func LoadClientID(path string) (*ClientIdentity, error) {
	if path == "" {
		path = DefaultClientIDPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("OAuth client key file not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading OAuth client key file: %w", err)
	}
	return ParseClientID(data)
}

// ParseClientID parses the raw contents of a Google Cloud OAuth client
// key file, accepting both the installed and web envelopes.
func ParseClientID(data []byte) (*ClientIdentity, error) {
	var file clientIDFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing OAuth client key file: %w", err)
	}

	rec := file.Installed
	if rec == nil {
		rec = file.Web
	}
	if rec == nil {
		return nil, fmt.Errorf("OAuth client key file has neither installed nor web section")
	}
	if rec.ClientID == "" {
		return nil, fmt.Errorf("OAuth client key file has no client_id")
	}

	endpoint := google.Endpoint
	if rec.AuthURI != "" {
		endpoint.AuthURL = rec.AuthURI
	}
	if rec.TokenURI != "" {
		endpoint.TokenURL = rec.TokenURI
	}

	return &ClientIdentity{
		Config: &oauth2.Config{
			ClientID:     rec.ClientID,
			ClientSecret: rec.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       RequiredScopes,
		},
		RedirectURIs: rec.RedirectURIs,
	}, nil
}

// CopyLocalClientID installs a key file sitting in the current working
// directory into the config directory, so `gmail-mcp auth` can be run
// from the directory the key was downloaded to.
func CopyLocalClientID(dst string) (bool, error) {
	src := clientIDFileName
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", src, err)
	}
	if _, err := ParseClientID(data); err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0600); err != nil {
		return false, fmt.Errorf("installing OAuth client key file: %w", err)
	}
	return true, nil
}
