package gmail_tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmail-mcp/internal/auth"
	"github.com/teemow/gmail-mcp/internal/gmail"
	"github.com/teemow/gmail-mcp/internal/server"
)

// authRequiredMessage tells the operator how to recover when no usable
// credential exists. Returned verbatim by every tool.
const authRequiredMessage = `Not authenticated with Google. To authorize access:

1. Place your OAuth client key file (gcp-oauth.keys.json) in the config directory
2. Run "gmail-mcp auth" in a terminal and complete the consent flow in the browser
3. Retry the operation

You only need to authorize once. Tokens are refreshed automatically.`

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// Write operations (send, modify, trash, label and filter changes) are
// only registered when readOnly is false.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}

	if err := RegisterFilterTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register filter tools: %w", err)
	}

	if err := RegisterAttachmentTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register attachment tools: %w", err)
	}

	if err := RegisterBatchTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register batch tools: %w", err)
	}

	return nil
}

// gmailClient fetches the shared Gmail client, converting construction
// failures into a tool error result.
func gmailClient(sc *server.ServerContext) (*gmail.Client, *mcp.CallToolResult) {
	client, err := sc.GmailClient()
	if err != nil {
		return nil, toolError("create Gmail client", err)
	}
	return client, nil
}

// toolError renders an operation failure for the MCP client. Credential
// failures get the re-authorization instructions; transient network
// failures are marked retryable.
func toolError(operation string, err error) *mcp.CallToolResult {
	var ae *auth.AuthError
	if errors.As(err, &ae) {
		return mcp.NewToolResultError(authRequiredMessage)
	}
	var ne *auth.NetworkError
	if errors.As(err, &ne) {
		return mcp.NewToolResultError(fmt.Sprintf("Temporary network failure talking to Google, please retry: %v", err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", operation, err))
}

// stringArg returns a string argument or its default.
func stringArg(args map[string]interface{}, name, defaultValue string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// boolArg returns a boolean argument or its default.
func boolArg(args map[string]interface{}, name string, defaultValue bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return defaultValue
}

// intArg returns a numeric argument or its default. JSON numbers arrive
// as float64.
func intArg(args map[string]interface{}, name string, defaultValue int64) int64 {
	if v, ok := args[name].(float64); ok {
		return int64(v)
	}
	return defaultValue
}

// stringSliceArg parses an optional array-of-strings argument.
func stringSliceArg(args map[string]interface{}, name string) []string {
	raw, ok := args[name].([]interface{})
	if !ok {
		return nil
	}
	var result []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			result = append(result, s)
		}
	}
	return result
}
