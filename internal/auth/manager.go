package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/gmail-mcp/internal/logging"
)

// RefreshObserver receives the outcome of every token refresh attempt.
// Satisfied by instrumentation.Metrics.
type RefreshObserver interface {
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// Manager hands out valid credentials, refreshing and persisting them
// as needed. All lifecycle steps run under one mutex, so concurrent
// callers racing an expired token trigger exactly one refresh.
type Manager struct {
	mu sync.Mutex

	store          Store
	refresher      Refresher
	requiredScopes []string
	margin         time.Duration
	logger         *slog.Logger
	observer       RefreshObserver
	now            func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRequiredScopes sets the scopes every credential must cover.
func WithRequiredScopes(scopes []string) ManagerOption {
	return func(m *Manager) { m.requiredScopes = scopes }
}

// WithExpiryMargin overrides the default safety margin.
func WithExpiryMargin(margin time.Duration) ManagerOption {
	return func(m *Manager) { m.margin = margin }
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithRefreshObserver wires refresh outcome metrics.
func WithRefreshObserver(obs RefreshObserver) ManagerOption {
	return func(m *Manager) { m.observer = obs }
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a credential manager over the given store and
// refresher.
func NewManager(store Store, refresher Refresher, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:          store,
		refresher:      refresher,
		requiredScopes: RequiredScopes,
		margin:         ExpiryMargin,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.KeyComponent, "credential-manager")
	return m
}

// Authorized reports whether a stored credential covers the required
// scopes. It never refreshes and never talks to the token endpoint, so
// it is cheap enough for readiness probes. An expired access token
// still counts as authorized as long as a refresh token is on record.
func (m *Manager) Authorized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Load()
	if err != nil {
		return false
	}
	if !cred.HasScopes(m.requiredScopes) {
		return false
	}
	return cred.Valid(m.now(), m.margin) || cred.RefreshToken != ""
}

// GetCredential returns a credential whose access token is valid for at
// least the safety margin. It loads the stored record, refreshes it if
// expired, persists the result, and reports definitive failures as
// AuthError. A NetworkError leaves the stored credential untouched.
func (m *Manager) GetCredential(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			return nil, &AuthError{Reason: ReasonUnauthenticated, Err: err}
		}
		return nil, err
	}

	if !cred.HasScopes(m.requiredScopes) {
		return nil, &AuthError{
			Reason: ReasonUnauthenticated,
			Err:    fmt.Errorf("stored grant does not cover the required scopes"),
		}
	}

	if cred.Valid(m.now(), m.margin) {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		return nil, &AuthError{
			Reason: ReasonUnauthenticated,
			Err:    errors.New("access token expired and no refresh token on record"),
		}
	}

	return m.refresh(ctx, cred)
}

// refresh runs under m.mu.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	fresh, err := m.refresher.Refresh(ctx, cred)
	if err != nil {
		if IsAuthError(err, ReasonInvalidGrant) {
			m.observe(ctx, "expired")
			m.logger.LogAttrs(ctx, slog.LevelWarn, "refresh token rejected, credential invalidated",
				logging.Operation("refresh"),
				logging.Err(err))
			if invErr := m.store.Invalidate(); invErr != nil {
				m.logger.LogAttrs(ctx, slog.LevelError, "could not invalidate credential",
					logging.Err(invErr))
			}
			return nil, &AuthError{Reason: ReasonUnauthenticated, Err: err}
		}
		m.observe(ctx, "failure")
		m.logger.LogAttrs(ctx, slog.LevelWarn, "token refresh failed",
			logging.Operation("refresh"),
			logging.Err(err))
		return nil, err
	}

	// Providers may omit the refresh token or scopes on refresh
	// responses; the previous values stay authoritative.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}
	if len(fresh.Scopes) == 0 {
		fresh.Scopes = cred.Scopes
	}

	if err := m.store.Save(fresh); err != nil {
		m.observe(ctx, "failure")
		return nil, fmt.Errorf("persisting refreshed credential: %w", err)
	}

	m.observe(ctx, "success")
	m.logger.LogAttrs(ctx, slog.LevelInfo, "access token refreshed",
		logging.Operation("refresh"),
		slog.String(logging.KeyToken, logging.SanitizeToken(fresh.AccessToken)),
		slog.Time("expiry", fresh.Expiry))
	return fresh, nil
}

func (m *Manager) observe(ctx context.Context, result string) {
	if m.observer != nil {
		m.observer.RecordOAuthTokenRefresh(ctx, result)
	}
}

// TokenSource adapts the manager to the oauth2 transport interface so
// Google API clients pick up refreshed tokens transparently.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, m: m}
}

type managerTokenSource struct {
	ctx context.Context
	m   *Manager
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.m.GetCredential(s.ctx)
	if err != nil {
		return nil, err
	}
	return cred.Token(), nil
}
