package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	statusOK              = "ok"
	statusNotReady        = "not ready"
	statusShuttingDown    = "shutting down"
	statusUnauthenticated = "unauthenticated"
)

// HealthChecker serves the probe endpoints of the streamable-http
// transport. The stdio transport has no HTTP surface, so none of this
// runs there.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time
}

// NewHealthChecker returns a checker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady flips the readiness state. Graceful shutdown uses this to
// drain traffic before the listener closes.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the current readiness state.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) shuttingDown() bool {
	return h.sc != nil && h.sc.IsShutdown()
}

// credentialOnFile reports whether a stored credential covers the
// required Gmail scopes. Purely local, no token endpoint calls.
func (h *HealthChecker) credentialOnFile() bool {
	if h.sc == nil {
		return false
	}
	mgr := h.sc.CredentialManager()
	return mgr != nil && mgr.Authorized()
}

// HealthResponse is the JSON body of every probe endpoint.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeHealth(w http.ResponseWriter, code int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler answers /healthz. It only proves the process is
// serving HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: statusOK})
	})
}

// ReadinessHandler answers /readyz. A server the operator has not
// authorized yet still reports ready: it serves tool listings, and the
// tools surface credential errors themselves. The credential check is
// informational so operators can spot a missing or revoked grant
// without invoking a tool.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := map[string]string{
			"ready":      statusOK,
			"shutdown":   statusOK,
			"credential": statusOK,
		}
		ok := true

		if !h.ready.Load() {
			checks["ready"] = statusNotReady
			ok = false
		}
		if h.shuttingDown() {
			checks["shutdown"] = statusShuttingDown
			ok = false
		}
		if !h.credentialOnFile() {
			checks["credential"] = statusUnauthenticated
		}

		resp := HealthResponse{Status: statusOK, Checks: checks}
		code := http.StatusOK
		if !ok {
			resp.Status = statusNotReady
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime on top
// of the readiness signals.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status: statusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		code := http.StatusOK
		switch {
		case !h.ready.Load():
			resp.Status = statusNotReady
			code = http.StatusServiceUnavailable
		case h.shuttingDown():
			resp.Status = statusShuttingDown
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts the probe handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
