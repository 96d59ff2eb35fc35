package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmail-mcp/internal/server"
	"github.com/teemow/gmail-mcp/internal/tools/batch"
	"github.com/teemow/gmail-mcp/internal/tools/common"
)

// RegisterBatchTools registers the bulk message tools with the MCP
// server. Both tools change mailbox state and require write mode.
func RegisterBatchTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	batchModifyTool := mcp.NewTool("gmail_batch_modify_emails",
		mcp.WithDescription("Add or remove labels on multiple emails at once. Messages are processed in chunks; a failed chunk falls back to per-message processing so one bad ID does not fail the rest"),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to modify"),
		),
		mcp.WithArray("addLabelIds",
			mcp.Description("Label IDs to add to each message"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("removeLabelIds",
			mcp.Description("Label IDs to remove from each message"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("batchSize",
			mcp.Description(fmt.Sprintf("Number of messages per API call (default: %d)", batch.DefaultChunkSize)),
		),
	)
	s.AddTool(batchModifyTool, common.InstrumentedToolHandler("gmail_batch_modify_emails", "batch_modify", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchModifyEmails(ctx, request, sc)
		}))

	batchDeleteTool := mcp.NewTool("gmail_batch_delete_emails",
		mcp.WithDescription("Move multiple emails to the trash at once"),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to trash"),
		),
		mcp.WithNumber("batchSize",
			mcp.Description(fmt.Sprintf("Number of messages per processing chunk (default: %d)", batch.DefaultChunkSize)),
		),
	)
	s.AddTool(batchDeleteTool, common.InstrumentedToolHandler("gmail_batch_delete_emails", "batch_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchDeleteEmails(ctx, request, sc)
		}))

	return nil
}

func handleBatchModifyEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	addLabels := stringSliceArg(args, "addLabelIds")
	removeLabels := stringSliceArg(args, "removeLabelIds")
	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return mcp.NewToolResultError("at least one of addLabelIds or removeLabelIds is required"), nil
	}
	batchSize := int(intArg(args, "batchSize", batch.DefaultChunkSize))

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.ProcessChunked(messageIDs, batchSize,
		func(ids []string) error {
			return client.BatchModifyMessages(ctx, ids, addLabels, removeLabels)
		},
		func(id string) (string, error) {
			if err := client.ModifyMessage(ctx, id, addLabels, removeLabels); err != nil {
				return "", err
			}
			return "labels updated", nil
		})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleBatchDeleteEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	batchSize := int(intArg(args, "batchSize", batch.DefaultChunkSize))

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	// Trashing has no bulk endpoint, so every message is an individual
	// call.
	results := batch.ProcessChunked(messageIDs, batchSize, nil,
		func(id string) (string, error) {
			if err := client.TrashMessage(ctx, id); err != nil {
				return "", err
			}
			return "moved to trash", nil
		})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
