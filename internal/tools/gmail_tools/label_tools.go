package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmail-mcp/internal/server"
	"github.com/teemow/gmail-mcp/internal/tools/common"
)

// RegisterLabelTools registers the label management tools with the MCP
// server. Listing is always available; create, update and delete require
// write mode.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listLabelsTool := mcp.NewTool("gmail_list_email_labels",
		mcp.WithDescription("List all Gmail labels, both system and user-created"),
	)
	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("gmail_list_email_labels", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createLabelTool := mcp.NewTool("gmail_create_label",
		mcp.WithDescription("Create a new Gmail label"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to create"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("Whether messages with this label appear in the message list: 'show' or 'hide' (default: show)"),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("Label visibility in the label list: 'labelShow', 'labelShowIfUnread' or 'labelHide' (default: labelShow)"),
		),
	)
	s.AddTool(createLabelTool, common.InstrumentedToolHandler("gmail_create_label", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	updateLabelTool := mcp.NewTool("gmail_update_label",
		mcp.WithDescription("Update an existing Gmail label. System labels cannot be updated"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the label to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the label"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("New message list visibility: 'show' or 'hide'"),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("New label list visibility: 'labelShow', 'labelShowIfUnread' or 'labelHide'"),
		),
	)
	s.AddTool(updateLabelTool, common.InstrumentedToolHandler("gmail_update_label", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateLabel(ctx, request, sc)
		}))

	deleteLabelTool := mcp.NewTool("gmail_delete_label",
		mcp.WithDescription("Delete a Gmail label. System labels cannot be deleted"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the label to delete"),
		),
	)
	s.AddTool(deleteLabelTool, common.InstrumentedToolHandler("gmail_delete_label", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	getOrCreateLabelTool := mcp.NewTool("gmail_get_or_create_label",
		mcp.WithDescription("Find a label by name (case-insensitive), creating it if it does not exist"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to find or create"),
		),
	)
	s.AddTool(getOrCreateLabelTool, common.InstrumentedToolHandler("gmail_get_or_create_label", "get_or_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetOrCreateLabel(ctx, request, sc)
		}))

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return toolError("list labels", err), nil
	}

	var system, user []*gmailv1.Label
	for _, l := range labels {
		if l.Type == "system" {
			system = append(system, l)
		} else {
			user = append(user, l)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d labels (%d system, %d user):\n", len(labels), len(system), len(user))
	b.WriteString("\nSystem labels:\n")
	for _, l := range system {
		fmt.Fprintf(&b, "- %s (ID: %s)\n", l.Name, l.Id)
	}
	b.WriteString("\nUser labels:\n")
	if len(user) == 0 {
		b.WriteString("(none)\n")
	}
	for _, l := range user {
		fmt.Fprintf(&b, "- %s (ID: %s)\n", l.Name, l.Id)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name := stringArg(args, "name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	messageListVisibility := stringArg(args, "messageListVisibility", "")
	labelListVisibility := stringArg(args, "labelListVisibility", "")

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.CreateLabel(ctx, name, messageListVisibility, labelListVisibility)
	if err != nil {
		return toolError("create label", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label created successfully:\nID: %s\nName: %s", label.Id, label.Name)), nil
}

func handleUpdateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id := stringArg(args, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	name := stringArg(args, "name", "")
	messageListVisibility := stringArg(args, "messageListVisibility", "")
	labelListVisibility := stringArg(args, "labelListVisibility", "")
	if name == "" && messageListVisibility == "" && labelListVisibility == "" {
		return mcp.NewToolResultError("at least one of name, messageListVisibility or labelListVisibility is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.UpdateLabel(ctx, id, name, messageListVisibility, labelListVisibility)
	if err != nil {
		return toolError("update label", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label updated successfully:\nID: %s\nName: %s", label.Id, label.Name)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id := stringArg(args, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	name, err := client.DeleteLabel(ctx, id)
	if err != nil {
		return toolError("delete label", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label '%s' deleted successfully", name)), nil
}

func handleGetOrCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name := stringArg(args, "name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	label, created, err := client.GetOrCreateLabel(ctx, name)
	if err != nil {
		return toolError("get or create label", err), nil
	}

	if created {
		return mcp.NewToolResultText(fmt.Sprintf("Label created:\nID: %s\nName: %s", label.Id, label.Name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label found:\nID: %s\nName: %s", label.Id, label.Name)), nil
}
