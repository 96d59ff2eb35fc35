package auth

import (
	"errors"
	"fmt"
)

// Store sentinel errors. Callers distinguish "no credential yet" from
// "credential file exists but cannot be parsed".
var (
	ErrNotFound = errors.New("credential not found")
	ErrCorrupt  = errors.New("credential record corrupt")
)

// Reason classifies authorization failures so callers can decide
// whether re-running the interactive flow is required.
type Reason string

const (
	// ReasonDenied means the user rejected the consent screen.
	ReasonDenied Reason = "denied"
	// ReasonTimeout means no callback arrived before the flow deadline.
	ReasonTimeout Reason = "timeout"
	// ReasonRedirectMismatch means the requested redirect URI is not
	// registered for the OAuth client.
	ReasonRedirectMismatch Reason = "redirect_mismatch"
	// ReasonInvalidGrant means the provider rejected the refresh token
	// (revoked, expired, or the client credentials changed).
	ReasonInvalidGrant Reason = "invalid_grant"
	// ReasonUnauthenticated means no usable credential exists and a new
	// interactive authorization is required.
	ReasonUnauthenticated Reason = "unauthenticated"
)

// AuthError is a non-retryable authorization failure. Errors of this
// type mean the stored credential (if any) cannot produce a valid
// access token and the operator must intervene.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authorization failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authorization failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an AuthError with the given reason.
func IsAuthError(err error, reason Reason) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Reason == reason
}

// IsUnauthenticated reports whether err indicates that a new interactive
// authorization is required before any provider call can succeed.
func IsUnauthenticated(err error) bool {
	return IsAuthError(err, ReasonUnauthenticated)
}

// NetworkError is a transient transport failure talking to the
// provider's token endpoint. The stored credential is left untouched
// and the operation may be retried.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("token endpoint unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a transient transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
