package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmail-mcp/internal/gmail"
	"github.com/teemow/gmail-mcp/internal/server"
	"github.com/teemow/gmail-mcp/internal/tools/common"
)

// RegisterEmailTools registers the email tools with the MCP server.
// Read operations are always available; send, draft, modify and trash
// require write mode.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	readEmailTool := mcp.NewTool("gmail_read_email",
		mcp.WithDescription("Retrieve the content of a specific email including headers, body, and attachment metadata"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to retrieve"),
		),
	)
	s.AddTool(readEmailTool, common.InstrumentedToolHandler("gmail_read_email", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadEmail(ctx, request, sc)
		}))

	searchEmailsTool := mcp.NewTool("gmail_search_emails",
		mcp.WithDescription("Search emails using Gmail search syntax (e.g. 'from:user@example.com has:attachment')"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchEmailsTool, common.InstrumentedToolHandler("gmail_search_emails", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	sendEmailTool := mcp.NewTool("gmail_send_email",
		append([]mcp.ToolOption{
			mcp.WithDescription("Send a new email, optionally with HTML content and attachments"),
		}, composeOptions()...)...,
	)
	s.AddTool(sendEmailTool, common.InstrumentedToolHandler("gmail_send_email", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleComposeEmail(ctx, request, sc, false)
		}))

	draftEmailTool := mcp.NewTool("gmail_draft_email",
		append([]mcp.ToolOption{
			mcp.WithDescription("Create a draft email without sending it"),
		}, composeOptions()...)...,
	)
	s.AddTool(draftEmailTool, common.InstrumentedToolHandler("gmail_draft_email", "draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleComposeEmail(ctx, request, sc, true)
		}))

	modifyEmailTool := mcp.NewTool("gmail_modify_email",
		mcp.WithDescription("Add or remove labels on an email (archive, mark read/unread, move between labels)"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to modify"),
		),
		mcp.WithArray("addLabelIds",
			mcp.Description("Label IDs to add to the message"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("removeLabelIds",
			mcp.Description("Label IDs to remove from the message"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(modifyEmailTool, common.InstrumentedToolHandler("gmail_modify_email", "modify", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyEmail(ctx, request, sc)
		}))

	trashEmailTool := mcp.NewTool("gmail_trash_email",
		mcp.WithDescription("Move an email to the trash"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to trash"),
		),
	)
	s.AddTool(trashEmailTool, common.InstrumentedToolHandler("gmail_trash_email", "trash", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTrashEmail(ctx, request, sc)
		}))

	return nil
}

// composeOptions is the shared argument schema for sending and drafting.
func composeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Description("Plain text email body"),
		),
		mcp.WithString("htmlBody",
			mcp.Description("HTML email body. When both body and htmlBody are set a multipart/alternative message is built"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("threadId",
			mcp.Description("Thread ID to reply within"),
		),
		mcp.WithString("inReplyTo",
			mcp.Description("Message-ID header of the message being replied to"),
		),
		mcp.WithArray("attachments",
			mcp.Description("Local file paths to attach"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	}
}

// composeMessage assembles an outgoing message from the tool arguments.
// Recipients are comma-separated strings; attachment paths come in as
// an array so commas in filenames survive.
func composeMessage(args map[string]interface{}) *gmail.Message {
	inReplyTo := stringArg(args, "inReplyTo", "")
	return &gmail.Message{
		To:          splitEmailAddresses(stringArg(args, "to", "")),
		Cc:          splitEmailAddresses(stringArg(args, "cc", "")),
		Bcc:         splitEmailAddresses(stringArg(args, "bcc", "")),
		Subject:     stringArg(args, "subject", ""),
		Body:        stringArg(args, "body", ""),
		HTMLBody:    stringArg(args, "htmlBody", ""),
		InReplyTo:   inReplyTo,
		References:  inReplyTo,
		Attachments: stringSliceArg(args, "attachments"),
	}
}

func handleComposeEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, draft bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	msg := composeMessage(args)
	if err := msg.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	threadID := stringArg(args, "threadId", "")

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	if draft {
		id, err := client.CreateDraft(ctx, msg, threadID)
		if err != nil {
			return toolError("create draft", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Email draft created successfully with ID: %s", id)), nil
	}

	id, err := client.SendMessage(ctx, msg, threadID)
	if err != nil {
		return toolError("send email", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully with ID: %s", id)), nil
}

func handleReadEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return toolError("read email", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thread ID: %s\n", msg.ThreadId)
	fmt.Fprintf(&b, "Subject: %s\n", gmail.HeaderValue(msg, "Subject"))
	fmt.Fprintf(&b, "From: %s\n", gmail.HeaderValue(msg, "From"))
	fmt.Fprintf(&b, "To: %s\n", gmail.HeaderValue(msg, "To"))
	if cc := gmail.HeaderValue(msg, "Cc"); cc != "" {
		fmt.Fprintf(&b, "Cc: %s\n", cc)
	}
	fmt.Fprintf(&b, "Date: %s\n", gmail.HeaderValue(msg, "Date"))
	b.WriteString("\n")

	body := gmail.BodyText(msg, "text/plain")
	if body == "" {
		// HTML-only messages have no text part.
		body = gmail.BodyText(msg, "text/html")
	}
	if body == "" {
		body = msg.Snippet
	}
	b.WriteString(body)

	attachments, err := client.ListAttachments(ctx, messageID)
	if err == nil && len(attachments) > 0 {
		b.WriteString("\n\nAttachments:\n")
		for _, a := range attachments {
			fmt.Fprintf(&b, "- %s (%s, %d bytes, ID: %s)\n", a.Filename, a.MimeType, a.Size, a.AttachmentID)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := stringArg(args, "query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	maxResults := intArg(args, "maxResults", 10)

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	messages, err := client.SearchMessages(ctx, query, maxResults)
	if err != nil {
		return toolError("search emails", err), nil
	}

	if len(messages) == 0 {
		return mcp.NewToolResultText("No messages found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages:\n", len(messages))
	for i, msg := range messages {
		fmt.Fprintf(&b, "%d. ID: %s\n   Subject: %s\n   From: %s\n   Date: %s\n",
			i+1, msg.Id,
			gmail.HeaderValue(msg, "Subject"),
			gmail.HeaderValue(msg, "From"),
			gmail.HeaderValue(msg, "Date"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleModifyEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	addLabels := stringSliceArg(args, "addLabelIds")
	removeLabels := stringSliceArg(args, "removeLabelIds")
	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return mcp.NewToolResultError("at least one of addLabelIds or removeLabelIds is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.ModifyMessage(ctx, messageID, addLabels, removeLabels); err != nil {
		return toolError("modify email", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email %s labels updated successfully", messageID)), nil
}

func handleTrashEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.TrashMessage(ctx, messageID); err != nil {
		return toolError("trash email", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email %s moved to trash successfully", messageID)), nil
}

// splitEmailAddresses splits a comma-separated list, trimming whitespace
// and dropping empty entries.
func splitEmailAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}
	parts := strings.Split(addresses, ",")
	result := make([]string, 0, len(parts))
	for _, addr := range parts {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
