package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gmail-mcp/internal/auth"
	"github.com/teemow/gmail-mcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		debugMode   bool
		redirectURI string
		timeout     time.Duration
		noBrowser   bool
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Run the Google OAuth authorization flow",
		Long: `Authorize gmail-mcp to access your Gmail account.

The command opens a browser for Google's consent screen, receives the
authorization code on a local loopback listener, exchanges it for tokens
and stores them with owner-only permissions in the config directory.

Before running auth, download an OAuth client key for a Desktop app from
the Google Cloud Console and either place it at the config path (shown
below) or in the current directory as gcp-oauth.keys.json, from where it
is installed automatically.

For OAuth clients registered with a non-loopback redirect URI, pass
--redirect-uri; the command then prints the consent URL and reads the
authorization code from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), debugMode, redirectURI, timeout, noBrowser)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Redirect URI registered for the OAuth client (default: an ephemeral loopback listener)")
	cmd.Flags().DurationVar(&timeout, "timeout", auth.DefaultAuthorizeTimeout, "How long to wait for the consent flow to complete")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the consent URL instead of opening a browser")

	return cmd
}

func runAuth(ctx context.Context, debugMode bool, redirectURI string, timeout time.Duration, noBrowser bool) error {
	logger := logging.Setup(debugMode)

	clientIDPath := auth.DefaultClientIDPath()
	installed, err := auth.CopyLocalClientID(clientIDPath)
	if err != nil {
		return fmt.Errorf("installing OAuth client key: %w", err)
	}
	if installed {
		fmt.Printf("Installed OAuth client key at %s\n", clientIDPath)
	}

	identity, err := auth.LoadClientID(clientIDPath)
	if err != nil {
		return fmt.Errorf("loading OAuth client key from %s (download one for a Desktop app from the Google Cloud Console): %w", clientIDPath, err)
	}

	authorizer := auth.NewAuthorizer(identity, logger)
	if noBrowser {
		authorizer.OpenBrowser = func(url string) error {
			fmt.Printf("Open this URL in your browser:\n\n  %s\n\n", url)
			return nil
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cred, err := authorizer.Authorize(ctx, redirectURI)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	store := auth.NewFileStore(auth.DefaultCredentialsPath())
	if err := store.Save(cred); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}

	logger.Info("credential stored",
		"path", store.Path(),
		logging.KeyToken, logging.SanitizeToken(cred.AccessToken),
		"expiry", cred.Expiry.Format(time.RFC3339))
	fmt.Printf("Authorization complete. Credential stored at %s\n", store.Path())
	return nil
}
