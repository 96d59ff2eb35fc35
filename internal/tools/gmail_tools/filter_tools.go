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

// RegisterFilterTools registers the filter management tools with the MCP
// server. Listing and reading are always available; create and delete
// require write mode.
func RegisterFilterTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFiltersTool := mcp.NewTool("gmail_list_filters",
		mcp.WithDescription("List all existing Gmail filters"),
	)
	s.AddTool(listFiltersTool, common.InstrumentedToolHandler("gmail_list_filters", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFilters(ctx, request, sc)
		}))

	getFilterTool := mcp.NewTool("gmail_get_filter",
		mcp.WithDescription("Get the details of a specific Gmail filter by its ID"),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the filter (obtained from gmail_list_filters)"),
		),
	)
	s.AddTool(getFilterTool, common.InstrumentedToolHandler("gmail_get_filter", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFilter(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createFilterTool := mcp.NewTool("gmail_create_filter",
		mcp.WithDescription("Create a new Gmail filter to automatically organize incoming emails. Filters can match on sender, recipient, subject, or custom queries, and perform actions like labeling, archiving, or marking as read."),
		// Criteria fields
		mcp.WithString("from",
			mcp.Description("Filter emails from this sender (e.g., 'newsletter@example.com')"),
		),
		mcp.WithString("to",
			mcp.Description("Filter emails sent to this recipient (e.g., 'myalias@example.com')"),
		),
		mcp.WithString("subject",
			mcp.Description("Filter emails with this subject (e.g., 'Weekly Report')"),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query for advanced filtering (e.g., 'has:attachment larger:10M')"),
		),
		mcp.WithString("negatedQuery",
			mcp.Description("Gmail search query the message must NOT match"),
		),
		mcp.WithBoolean("hasAttachment",
			mcp.Description("Filter emails that have attachments"),
		),
		mcp.WithBoolean("excludeChats",
			mcp.Description("Skip chat messages"),
		),
		mcp.WithNumber("size",
			mcp.Description("Message size in bytes, used together with sizeComparison"),
		),
		mcp.WithString("sizeComparison",
			mcp.Description("How to compare against size: 'larger' or 'smaller'"),
		),
		// Action fields
		mcp.WithString("addLabelIds",
			mcp.Description("Comma-separated list of label IDs to add (e.g., 'Label_1,Label_2'). Use gmail_list_email_labels to get label IDs."),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Comma-separated list of label IDs to remove (e.g., 'INBOX,UNREAD')"),
		),
		mcp.WithBoolean("archive",
			mcp.Description("Remove from inbox (archive)"),
		),
		mcp.WithBoolean("markAsRead",
			mcp.Description("Mark as read"),
		),
		mcp.WithBoolean("star",
			mcp.Description("Add star"),
		),
		mcp.WithBoolean("markImportant",
			mcp.Description("Mark as important"),
		),
		mcp.WithBoolean("markAsSpam",
			mcp.Description("Mark as spam"),
		),
		mcp.WithBoolean("delete",
			mcp.Description("Send to trash"),
		),
		mcp.WithString("forward",
			mcp.Description("Forward to this email address (must be a verified forwarding address)"),
		),
	)
	s.AddTool(createFilterTool, common.InstrumentedToolHandler("gmail_create_filter", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFilter(ctx, request, sc)
		}))

	createFromTemplateTool := mcp.NewTool("gmail_create_filter_from_template",
		mcp.WithDescription("Create a Gmail filter from a common template: fromSender, withSubject, withAttachments, largeEmails, containingText, or mailingList"),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template name: 'fromSender', 'withSubject', 'withAttachments', 'largeEmails', 'containingText' or 'mailingList'"),
		),
		mcp.WithString("senderEmail",
			mcp.Description("Sender address (required for fromSender)"),
		),
		mcp.WithString("subjectText",
			mcp.Description("Subject text to match (required for withSubject)"),
		),
		mcp.WithString("searchText",
			mcp.Description("Text to search for (required for containingText)"),
		),
		mcp.WithString("listIdentifier",
			mcp.Description("Mailing list identifier, e.g. 'golang-nuts.googlegroups.com' (required for mailingList)"),
		),
		mcp.WithNumber("sizeInBytes",
			mcp.Description("Size threshold for largeEmails (default: 10485760, i.e. 10MB)"),
		),
		mcp.WithString("labelIds",
			mcp.Description("Comma-separated list of label IDs to apply on match"),
		),
		mcp.WithBoolean("archive",
			mcp.Description("Remove matching messages from the inbox"),
		),
		mcp.WithBoolean("markAsRead",
			mcp.Description("Mark matching messages as read"),
		),
		mcp.WithBoolean("markImportant",
			mcp.Description("Mark matching messages as important"),
		),
	)
	s.AddTool(createFromTemplateTool, common.InstrumentedToolHandler("gmail_create_filter_from_template", "create_from_template", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFilterFromTemplate(ctx, request, sc)
		}))

	deleteFilterTool := mcp.NewTool("gmail_delete_filter",
		mcp.WithDescription("Delete a Gmail filter by its ID (obtain ID from gmail_list_filters)"),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the filter to delete"),
		),
	)
	s.AddTool(deleteFilterTool, common.InstrumentedToolHandler("gmail_delete_filter", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFilter(ctx, request, sc)
		}))

	return nil
}

func handleCreateFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	criteria := gmail.FilterCriteria{
		From:           stringArg(args, "from", ""),
		To:             stringArg(args, "to", ""),
		Subject:        stringArg(args, "subject", ""),
		Query:          stringArg(args, "query", ""),
		NegatedQuery:   stringArg(args, "negatedQuery", ""),
		HasAttachment:  boolArg(args, "hasAttachment", false),
		ExcludeChats:   boolArg(args, "excludeChats", false),
		Size:           intArg(args, "size", 0),
		SizeComparison: stringArg(args, "sizeComparison", ""),
	}

	if criteria.From == "" && criteria.To == "" && criteria.Subject == "" &&
		criteria.Query == "" && criteria.NegatedQuery == "" &&
		!criteria.HasAttachment && criteria.Size == 0 {
		return mcp.NewToolResultError("At least one filter criteria must be specified (from, to, subject, query, negatedQuery, hasAttachment, or size)"), nil
	}

	action := gmail.FilterAction{
		AddLabelIDs:    splitLabelIDs(stringArg(args, "addLabelIds", "")),
		RemoveLabelIDs: splitLabelIDs(stringArg(args, "removeLabelIds", "")),
		Archive:        boolArg(args, "archive", false),
		MarkAsRead:     boolArg(args, "markAsRead", false),
		Star:           boolArg(args, "star", false),
		MarkImportant:  boolArg(args, "markImportant", false),
		MarkAsSpam:     boolArg(args, "markAsSpam", false),
		Delete:         boolArg(args, "delete", false),
		Forward:        stringArg(args, "forward", ""),
	}

	if len(action.AddLabelIDs) == 0 && len(action.RemoveLabelIDs) == 0 &&
		!action.Archive && !action.MarkAsRead && !action.Star && !action.MarkImportant &&
		!action.MarkAsSpam && !action.Delete && action.Forward == "" {
		return mcp.NewToolResultError("At least one filter action must be specified"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	filterInfo, err := client.CreateFilter(ctx, criteria, action)
	if err != nil {
		return toolError("create filter", err), nil
	}

	return mcp.NewToolResultText(formatFilterInfo(filterInfo, "Filter created successfully!")), nil
}

func handleCreateFilterFromTemplate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	template := stringArg(args, "template", "")
	if template == "" {
		return mcp.NewToolResultError("template is required"), nil
	}

	params := gmail.TemplateParams{
		SenderEmail:    stringArg(args, "senderEmail", ""),
		SubjectText:    stringArg(args, "subjectText", ""),
		SearchText:     stringArg(args, "searchText", ""),
		ListIdentifier: stringArg(args, "listIdentifier", ""),
		SizeInBytes:    intArg(args, "sizeInBytes", 0),
		LabelIDs:       splitLabelIDs(stringArg(args, "labelIds", "")),
		Archive:        boolArg(args, "archive", false),
		MarkAsRead:     boolArg(args, "markAsRead", false),
		MarkImportant:  boolArg(args, "markImportant", false),
	}

	criteria, action, err := gmail.BuildTemplate(template, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	filterInfo, err := client.CreateFilter(ctx, criteria, action)
	if err != nil {
		return toolError("create filter", err), nil
	}

	return mcp.NewToolResultText(formatFilterInfo(filterInfo, fmt.Sprintf("Filter created from template '%s'!", template))), nil
}

func handleListFilters(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	filters, err := client.ListFilters(ctx)
	if err != nil {
		return toolError("list filters", err), nil
	}

	if len(filters) == 0 {
		return mcp.NewToolResultText("No filters found."), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d filter(s):\n\n", len(filters)))
	for i, filter := range filters {
		result.WriteString(fmt.Sprintf("Filter %d:\n", i+1))
		result.WriteString(formatFilterInfo(filter, ""))
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleGetFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	filterID := stringArg(args, "filterId", "")
	if filterID == "" {
		return mcp.NewToolResultError("filterId is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	filterInfo, err := client.GetFilter(ctx, filterID)
	if err != nil {
		return toolError("get filter", err), nil
	}

	return mcp.NewToolResultText(formatFilterInfo(filterInfo, "")), nil
}

func handleDeleteFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	filterID := stringArg(args, "filterId", "")
	if filterID == "" {
		return mcp.NewToolResultError("filterId is required"), nil
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteFilter(ctx, filterID); err != nil {
		return toolError("delete filter", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted filter %s", filterID)), nil
}

// splitLabelIDs splits a comma-separated string of label IDs
func splitLabelIDs(labelIDs string) []string {
	if labelIDs == "" {
		return nil
	}

	parts := strings.Split(labelIDs, ",")
	result := make([]string, 0, len(parts))
	for _, id := range parts {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// formatFilterInfo formats a FilterInfo for display
func formatFilterInfo(filter *gmail.FilterInfo, header string) string {
	var result strings.Builder

	if header != "" {
		result.WriteString(header + "\n\n")
	}

	result.WriteString(fmt.Sprintf("Filter ID: %s\n\n", filter.ID))

	result.WriteString("Criteria:\n")
	if filter.Criteria.From != "" {
		result.WriteString(fmt.Sprintf("  From: %s\n", filter.Criteria.From))
	}
	if filter.Criteria.To != "" {
		result.WriteString(fmt.Sprintf("  To: %s\n", filter.Criteria.To))
	}
	if filter.Criteria.Subject != "" {
		result.WriteString(fmt.Sprintf("  Subject: %s\n", filter.Criteria.Subject))
	}
	if filter.Criteria.Query != "" {
		result.WriteString(fmt.Sprintf("  Query: %s\n", filter.Criteria.Query))
	}
	if filter.Criteria.NegatedQuery != "" {
		result.WriteString(fmt.Sprintf("  Negated Query: %s\n", filter.Criteria.NegatedQuery))
	}
	if filter.Criteria.HasAttachment {
		result.WriteString("  Has Attachment: true\n")
	}
	if filter.Criteria.ExcludeChats {
		result.WriteString("  Exclude Chats: true\n")
	}
	if filter.Criteria.Size > 0 {
		result.WriteString(fmt.Sprintf("  Size: %s %d bytes\n", filter.Criteria.SizeComparison, filter.Criteria.Size))
	}

	result.WriteString("\nActions:\n")
	if len(filter.Action.AddLabelIDs) > 0 {
		result.WriteString(fmt.Sprintf("  Add Labels: %s\n", strings.Join(filter.Action.AddLabelIDs, ", ")))
	}
	if len(filter.Action.RemoveLabelIDs) > 0 {
		result.WriteString(fmt.Sprintf("  Remove Labels: %s\n", strings.Join(filter.Action.RemoveLabelIDs, ", ")))
	}
	if filter.Action.Archive {
		result.WriteString("  Archive: true\n")
	}
	if filter.Action.MarkAsRead {
		result.WriteString("  Mark as Read: true\n")
	}
	if filter.Action.Star {
		result.WriteString("  Star: true\n")
	}
	if filter.Action.MarkImportant {
		result.WriteString("  Mark as Important: true\n")
	}
	if filter.Action.MarkAsSpam {
		result.WriteString("  Mark as Spam: true\n")
	}
	if filter.Action.Delete {
		result.WriteString("  Delete: true\n")
	}
	if filter.Action.Forward != "" {
		result.WriteString(fmt.Sprintf("  Forward to: %s\n", filter.Action.Forward))
	}

	return result.String()
}
