package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpiryMargin is how long before the recorded expiry a token is
// already treated as expired, so a token handed to a caller is not
// invalidated mid-request by clock skew or slow transport.
const ExpiryMargin = 60 * time.Second

// Credential is the persisted form of an OAuth2 grant. The JSON shape
// mirrors the provider's token response with an added RFC 3339 expiry,
// so a stored record round-trips through releases without migration.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the access token is still usable at the given
// time, applying the safety margin. A zero expiry means the provider
// did not bound the token's lifetime.
func (c *Credential) Valid(now time.Time, margin time.Duration) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	if c.Expiry.IsZero() {
		return true
	}
	return now.Add(margin).Before(c.Expiry)
}

// HasScopes reports whether the credential's granted scopes are a
// superset of required. A credential with no recorded scopes is
// treated as covering nothing.
func (c *Credential) HasScopes(required []string) bool {
	if len(required) == 0 {
		return true
	}
	granted := make(map[string]bool, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = true
	}
	for _, s := range required {
		if !granted[s] {
			return false
		}
	}
	return true
}

// Token converts the credential to the oauth2 transport type.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// FromToken builds a Credential from a provider token response. The
// scopes are recorded from the authorization request since the token
// endpoint does not always echo them back.
func FromToken(t *oauth2.Token, scopes []string) *Credential {
	return &Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Scopes:       scopes,
		Expiry:       t.Expiry,
	}
}
