package gmail_tools

import (
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmail-mcp/internal/auth"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestToolError_AuthErrorGetsInstructions(t *testing.T) {
	err := &auth.AuthError{Reason: auth.ReasonUnauthenticated, Err: errors.New("no credential")}

	result := toolError("search emails", err)
	assert.True(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "gmail-mcp auth")
	assert.NotContains(t, text, "no credential")
}

func TestToolError_NetworkErrorIsRetryable(t *testing.T) {
	err := &auth.NetworkError{Err: errors.New("connection refused")}

	result := toolError("search emails", err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "please retry")
}

func TestToolError_GenericError(t *testing.T) {
	result := toolError("delete label", errors.New("label not found"))
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to delete label: label not found", resultText(t, result))
}

func TestStringArg(t *testing.T) {
	args := map[string]interface{}{
		"present": "value",
		"empty":   "",
		"number":  42.0,
	}

	assert.Equal(t, "value", stringArg(args, "present", "fallback"))
	assert.Equal(t, "fallback", stringArg(args, "empty", "fallback"))
	assert.Equal(t, "fallback", stringArg(args, "missing", "fallback"))
	assert.Equal(t, "fallback", stringArg(args, "number", "fallback"))
}

func TestBoolArg(t *testing.T) {
	args := map[string]interface{}{
		"yes":    true,
		"no":     false,
		"string": "true",
	}

	assert.True(t, boolArg(args, "yes", false))
	assert.False(t, boolArg(args, "no", true))
	assert.True(t, boolArg(args, "missing", true))
	assert.False(t, boolArg(args, "string", false))
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"count":  25.0,
		"string": "25",
	}

	assert.Equal(t, int64(25), intArg(args, "count", 10))
	assert.Equal(t, int64(10), intArg(args, "missing", 10))
	assert.Equal(t, int64(10), intArg(args, "string", 10))
}

func TestStringSliceArg(t *testing.T) {
	args := map[string]interface{}{
		"labels": []interface{}{"INBOX", "UNREAD"},
		"mixed":  []interface{}{"a", 1, "", "b"},
		"string": "INBOX",
	}

	assert.Equal(t, []string{"INBOX", "UNREAD"}, stringSliceArg(args, "labels"))
	assert.Equal(t, []string{"a", "b"}, stringSliceArg(args, "mixed"))
	assert.Nil(t, stringSliceArg(args, "string"))
	assert.Nil(t, stringSliceArg(args, "missing"))
}

func TestComposeMessage(t *testing.T) {
	args := map[string]interface{}{
		"to":        "a@example.com, b@example.com",
		"subject":   "hello",
		"body":      "plain",
		"inReplyTo": "<msg-1@example.com>",
		"attachments": []interface{}{
			"/tmp/report, final.pdf",
			"/tmp/notes.txt",
		},
	}

	msg := composeMessage(args)

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.To)
	assert.Equal(t, "hello", msg.Subject)
	assert.Equal(t, "<msg-1@example.com>", msg.InReplyTo)
	assert.Equal(t, "<msg-1@example.com>", msg.References)
	// A comma inside a filename must not split the path.
	assert.Equal(t, []string{"/tmp/report, final.pdf", "/tmp/notes.txt"}, msg.Attachments)
}

func TestSplitEmailAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "a@example.com", want: []string{"a@example.com"}},
		{
			name:  "multiple with spaces",
			input: "a@example.com, b@example.com ,c@example.com",
			want:  []string{"a@example.com", "b@example.com", "c@example.com"},
		},
		{name: "trailing comma", input: "a@example.com,", want: []string{"a@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitEmailAddresses(tt.input))
		})
	}
}
