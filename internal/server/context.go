package server

import (
	"context"
	"sync"

	"github.com/teemow/gmail-mcp/internal/auth"
	"github.com/teemow/gmail-mcp/internal/gmail"
	"github.com/teemow/gmail-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the
// credential manager, the lazily created Gmail client, and the
// observability plumbing tools record through.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	manager     *auth.Manager
	gmailClient *gmail.Client

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context around the credential
// manager. The Gmail client is created on first use, so the server
// starts fine before the operator has authorized.
func NewServerContext(ctx context.Context, manager *auth.Manager) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		manager: manager,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CredentialManager returns the credential manager.
func (sc *ServerContext) CredentialManager() *auth.Manager {
	return sc.manager
}

// GmailClient returns the Gmail client, creating and caching it on
// first use. Construction does not talk to the network; credential
// errors surface on the first API call.
func (sc *ServerContext) GmailClient() (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.gmailClient != nil {
		return sc.gmailClient, nil
	}

	client, err := gmail.NewClient(sc.ctx, sc.manager, gmail.WithMetrics(sc.metrics))
	if err != nil {
		return nil, err
	}

	sc.gmailClient = client
	return client, nil
}

// SetGmailClient sets the Gmail client, for tests.
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClient = client
}

// SetMetrics wires the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, which may be nil when
// instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger wires the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
