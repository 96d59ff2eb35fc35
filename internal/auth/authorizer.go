package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/gmail-mcp/internal/logging"
)

// DefaultAuthorizeTimeout bounds how long the interactive flow waits
// for the user to complete consent in the browser.
const DefaultAuthorizeTimeout = 5 * time.Minute

const consentPage = `<!DOCTYPE html>
<html>
<head><title>Authorization complete</title></head>
<body>
<p>Authorization complete. You can close this window and return to the terminal.</p>
</body>
</html>
`

// Refresher exchanges an expired credential for a fresh one.
type Refresher interface {
	Refresh(ctx context.Context, cred *Credential) (*Credential, error)
}

// AuthObserver receives the outcome of interactive authorization flows.
// Satisfied by instrumentation.Metrics.
type AuthObserver interface {
	RecordOAuthAuth(ctx context.Context, result string)
}

// Authorizer drives the OAuth2 authorization-code flow for a desktop
// client and refreshes tokens against the provider's token endpoint.
type Authorizer struct {
	conf         *oauth2.Config
	redirectURIs []string
	logger       *slog.Logger

	// OpenBrowser launches the consent URL. Overridable in tests.
	OpenBrowser func(url string) error
	// CodeIn supplies manually pasted authorization codes when the
	// redirect URI is not a loopback address. Defaults to stdin.
	CodeIn io.Reader
	// Out receives user-facing flow instructions. Defaults to stderr so
	// the stdio MCP transport stays clean.
	Out io.Writer
	// Observer, when set, is notified of authorization outcomes.
	Observer AuthObserver

	newState func() string
}

// NewAuthorizer returns an authorizer for the given client identity.
func NewAuthorizer(id *ClientIdentity, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		conf:         id.Config,
		redirectURIs: id.RedirectURIs,
		logger:       logger.With(logging.KeyComponent, "authorizer"),
		OpenBrowser:  openBrowser,
		CodeIn:       os.Stdin,
		Out:          os.Stderr,
		newState:     uuid.NewString,
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the full authorization-code grant. With an empty
// redirectURI it binds an ephemeral loopback listener; a supplied
// loopback URI is validated against the registered redirect URIs and
// bound exactly; a non-loopback URI switches to manual code entry.
// The flow is bounded by DefaultAuthorizeTimeout unless ctx carries an
// earlier deadline.
func (a *Authorizer) Authorize(ctx context.Context, redirectURI string) (*Credential, error) {
	cred, err := a.authorize(ctx, redirectURI)
	if a.Observer != nil {
		result := "success"
		if err != nil {
			result = "failure"
		}
		a.Observer.RecordOAuthAuth(ctx, result)
	}
	return cred, err
}

func (a *Authorizer) authorize(ctx context.Context, redirectURI string) (*Credential, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultAuthorizeTimeout)
		defer cancel()
	}

	state := a.newState()

	if redirectURI != "" && !a.redirectRegistered(redirectURI) {
		return nil, &AuthError{
			Reason: ReasonRedirectMismatch,
			Err:    fmt.Errorf("redirect URI %q is not registered for this OAuth client", redirectURI),
		}
	}

	if redirectURI != "" && !isLoopbackURI(redirectURI) {
		return a.authorizeManual(ctx, state, redirectURI)
	}

	return a.authorizeLoopback(ctx, state, redirectURI)
}

func (a *Authorizer) authorizeLoopback(ctx context.Context, state, redirectURI string) (*Credential, error) {
	addr := "127.0.0.1:0"
	path := "/"
	if redirectURI != "" {
		u, err := url.Parse(redirectURI)
		if err != nil {
			return nil, &AuthError{Reason: ReasonRedirectMismatch, Err: err}
		}
		addr = u.Host
		if u.Path != "" {
			path = u.Path
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}
	defer ln.Close()

	redirect := redirectURI
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s%s", ln.Addr().String(), path)
	}

	results := make(chan callbackResult, 1)
	var once sync.Once
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				http.NotFound(w, r)
				return
			}
			res := parseCallback(r.URL.Query(), state)
			if res.err == nil {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				fmt.Fprint(w, consentPage)
			} else {
				http.Error(w, "Authorization failed. Return to the terminal for details.", http.StatusBadRequest)
			}
			once.Do(func() { results <- res })
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.launchConsent(ctx, state, redirect)

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return a.exchange(ctx, res.code, redirect)
	case <-ctx.Done():
		return nil, flowInterrupted(ctx)
	}
}

// authorizeManual prints the consent URL and reads the pasted
// authorization code from CodeIn. Used when the registered redirect
// URI points somewhere this process cannot listen on.
func (a *Authorizer) authorizeManual(ctx context.Context, state, redirectURI string) (*Credential, error) {
	a.launchConsent(ctx, state, redirectURI)
	fmt.Fprint(a.Out, "Paste the authorization code here and press enter: ")

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(a.CodeIn).ReadString('\n')
		if err != nil && line == "" {
			errs <- err
			return
		}
		codes <- strings.TrimSpace(line)
	}()

	select {
	case code := <-codes:
		if code == "" {
			return nil, &AuthError{Reason: ReasonDenied, Err: errors.New("empty authorization code")}
		}
		return a.exchange(ctx, code, redirectURI)
	case err := <-errs:
		return nil, fmt.Errorf("reading authorization code: %w", err)
	case <-ctx.Done():
		return nil, flowInterrupted(ctx)
	}
}

func (a *Authorizer) launchConsent(ctx context.Context, state, redirect string) {
	conf := a.confWithRedirect(redirect)
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	fmt.Fprintf(a.Out, "Open the following URL to authorize access:\n\n  %s\n\n", authURL)
	if err := a.OpenBrowser(authURL); err != nil {
		a.logger.LogAttrs(ctx, slog.LevelDebug, "could not open browser",
			logging.Err(err))
	}
}

func (a *Authorizer) exchange(ctx context.Context, code, redirect string) (*Credential, error) {
	conf := a.confWithRedirect(redirect)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "authorization code exchanged",
		logging.Operation("authorize"),
		slog.String(logging.KeyToken, logging.SanitizeToken(tok.AccessToken)))

	cred := FromToken(tok, a.conf.Scopes)
	if cred.RefreshToken == "" {
		return nil, &AuthError{
			Reason: ReasonDenied,
			Err:    errors.New("provider returned no refresh token; revoke access and re-authorize"),
		}
	}
	return cred, nil
}

// Refresh exchanges the stored refresh token for a new access token.
// Provider rejections map to AuthError invalid_grant; transport
// failures map to NetworkError and leave the credential usable for
// retry.
func (a *Authorizer) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.RefreshToken == "" {
		return nil, &AuthError{Reason: ReasonInvalidGrant, Err: errors.New("no refresh token on record")}
	}

	src := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	fresh := FromToken(tok, cred.Scopes)
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}
	return fresh, nil
}

func (a *Authorizer) confWithRedirect(redirect string) *oauth2.Config {
	conf := *a.conf
	conf.RedirectURL = redirect
	return &conf
}

func (a *Authorizer) redirectRegistered(redirectURI string) bool {
	if len(a.redirectURIs) == 0 {
		return true
	}
	for _, u := range a.redirectURIs {
		if u == redirectURI {
			return true
		}
	}
	return false
}

func parseCallback(q url.Values, state string) callbackResult {
	if errCode := q.Get("error"); errCode != "" {
		if errCode == "access_denied" {
			return callbackResult{err: &AuthError{
				Reason: ReasonDenied,
				Err:    errors.New("user denied the consent request"),
			}}
		}
		return callbackResult{err: &AuthError{
			Reason: ReasonDenied,
			Err:    fmt.Errorf("provider returned error %q", errCode),
		}}
	}
	if got := q.Get("state"); got != state {
		return callbackResult{err: &AuthError{
			Reason: ReasonDenied,
			Err:    errors.New("authorization response state mismatch"),
		}}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: &AuthError{
			Reason: ReasonDenied,
			Err:    errors.New("authorization response carried no code"),
		}}
	}
	return callbackResult{code: code}
}

func flowInterrupted(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &AuthError{
			Reason: ReasonTimeout,
			Err:    errors.New("no authorization callback received before the deadline"),
		}
	}
	return ctx.Err()
}

// classifyTokenError separates definitive provider rejections from
// transient transport failures. Only an HTTP response from the token
// endpoint can prove the grant is dead; anything else is retryable.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode == "invalid_grant" {
			return &AuthError{Reason: ReasonInvalidGrant, Err: err}
		}
		if re.Response != nil && (re.Response.StatusCode == http.StatusBadRequest ||
			re.Response.StatusCode == http.StatusUnauthorized) {
			return &AuthError{Reason: ReasonInvalidGrant, Err: err}
		}
		return &NetworkError{Err: err}
	}
	return &NetworkError{Err: err}
}

func isLoopbackURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
