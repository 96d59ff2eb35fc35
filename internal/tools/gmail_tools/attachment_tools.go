package gmail_tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmail-mcp/internal/server"
	"github.com/teemow/gmail-mcp/internal/tools/common"
)

// RegisterAttachmentTools registers the attachment tools with the MCP
// server. Listing and reading are always available; downloading writes
// to the local filesystem and requires write mode.
func RegisterAttachmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listAttachmentsTool := mcp.NewTool("gmail_list_attachments",
		mcp.WithDescription("List all attachments of an email with their IDs, filenames, MIME types and sizes"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the email message"),
		),
	)
	s.AddTool(listAttachmentsTool, common.InstrumentedToolHandler("gmail_list_attachments", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAttachments(ctx, request, sc)
		}))

	getAttachmentTool := mcp.NewTool("gmail_get_attachment",
		mcp.WithDescription("Get the content of an attachment, either base64-encoded or as text"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the email message"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("The ID of the attachment (obtained from gmail_list_attachments)"),
		),
		mcp.WithString("encoding",
			mcp.Description("Encoding format: 'base64' (default) or 'text'"),
		),
	)
	s.AddTool(getAttachmentTool, common.InstrumentedToolHandler("gmail_get_attachment", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAttachment(ctx, request, sc)
		}))

	getMessageBodyTool := mcp.NewTool("gmail_get_message_body",
		mcp.WithDescription("Get the full body of an email in plain text or HTML"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the email message"),
		),
		mcp.WithString("format",
			mcp.Description("Body format: 'text' (default) or 'html'"),
		),
	)
	s.AddTool(getMessageBodyTool, common.InstrumentedToolHandler("gmail_get_message_body", "get_body", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessageBody(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	downloadAttachmentTool := mcp.NewTool("gmail_download_attachment",
		mcp.WithDescription("Download an email attachment to a local directory"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the email message"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("The ID of the attachment (obtained from gmail_list_attachments)"),
		),
		mcp.WithString("savePath",
			mcp.Description("Directory to save the attachment in (default: current directory)"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename to save as (default: the attachment's original filename)"),
		),
	)
	s.AddTool(downloadAttachmentTool, common.InstrumentedToolHandler("gmail_download_attachment", "download", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDownloadAttachment(ctx, request, sc)
		}))

	return nil
}

func handleListAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	attachments, err := client.ListAttachments(ctx, messageID)
	if err != nil {
		return toolError("list attachments", err), nil
	}

	if len(attachments) == 0 {
		return mcp.NewToolResultText("No attachments found in message"), nil
	}

	// Convert attachments to JSON for structured output
	type attachmentOutput struct {
		AttachmentID string `json:"attachmentId"`
		Filename     string `json:"filename"`
		MimeType     string `json:"mimeType"`
		Size         int64  `json:"size"`
		SizeHuman    string `json:"sizeHuman"`
	}

	outputs := make([]attachmentOutput, len(attachments))
	for i, att := range attachments {
		outputs[i] = attachmentOutput{
			AttachmentID: att.AttachmentID,
			Filename:     att.Filename,
			MimeType:     att.MimeType,
			Size:         att.Size,
			SizeHuman:    formatSize(att.Size),
		}
	}

	jsonBytes, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format output: %v", err)), nil
	}

	result := fmt.Sprintf("Found %d attachment(s):\n%s", len(attachments), string(jsonBytes))
	return mcp.NewToolResultText(result), nil
}

func handleGetAttachment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}
	attachmentID := stringArg(args, "attachmentId", "")
	if attachmentID == "" {
		return mcp.NewToolResultError("attachmentId is required"), nil
	}
	encoding := stringArg(args, "encoding", "base64")

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	data, err := client.GetAttachment(ctx, messageID, attachmentID)
	if err != nil {
		return toolError("get attachment", err), nil
	}

	switch encoding {
	case "base64":
		encoded := base64.StdEncoding.EncodeToString(data)
		return mcp.NewToolResultText(fmt.Sprintf("Attachment content (base64, %d bytes):\n%s", len(data), encoded)), nil

	case "text":
		if !utf8.Valid(data) {
			return mcp.NewToolResultError("Attachment is not valid UTF-8 text, use encoding 'base64' instead"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Attachment content (text, %d bytes):\n%s", len(data), string(data))), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid encoding '%s', must be 'base64' or 'text'", encoding)), nil
	}
}

func handleGetMessageBody(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}
	format := stringArg(args, "format", "text")

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	body, err := client.GetMessageBody(ctx, messageID, format)
	if err != nil {
		return toolError("get message body", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message body (%s, %d bytes):\n%s", format, len(body), body)), nil
}

func handleDownloadAttachment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := stringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}
	attachmentID := stringArg(args, "attachmentId", "")
	if attachmentID == "" {
		return mcp.NewToolResultError("attachmentId is required"), nil
	}
	savePath := stringArg(args, "savePath", ".")
	filename := stringArg(args, "filename", "")

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	path, err := client.DownloadAttachment(ctx, messageID, attachmentID, filename, savePath)
	if err != nil {
		return toolError("download attachment", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Attachment saved to %s", path)), nil
}

// formatSize formats a byte size into human-readable format
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
