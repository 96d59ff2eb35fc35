// Package gmail_tools provides MCP (Model Context Protocol) tools for interacting with Gmail.
//
// This package exposes Gmail functionality through MCP tools that can be called by
// AI agents or other MCP clients. It provides capabilities for:
//
// Email Management:
//   - gmail_send_email: Send a new email with optional HTML body and attachments
//   - gmail_draft_email: Create a draft without sending it
//   - gmail_read_email: Retrieve the content of a specific email
//   - gmail_search_emails: Search emails using Gmail search syntax
//   - gmail_modify_email: Add or remove labels on an email
//   - gmail_trash_email: Move an email to the trash
//
// Label Management:
//   - gmail_list_email_labels: List all system and user labels
//   - gmail_create_label, gmail_update_label, gmail_delete_label
//   - gmail_get_or_create_label: Find a label by name, creating it if needed
//
// Filter Management:
//   - gmail_create_filter: Create a filter from criteria and actions
//   - gmail_create_filter_from_template: Create a filter from a common template
//   - gmail_list_filters, gmail_get_filter, gmail_delete_filter
//
// Attachment Management:
//   - gmail_list_attachments: List all attachments in a message
//   - gmail_get_attachment: Retrieve attachment content (base64 or text)
//   - gmail_get_message_body: Extract text or HTML body from a message
//   - gmail_download_attachment: Save an attachment to the local filesystem
//
// Batch Operations:
//   - gmail_batch_modify_emails: Change labels on many messages at once
//   - gmail_batch_delete_emails: Move many messages to the trash
//
// All tools require an authenticated Gmail client which is provided through the
// server context. The client handles OAuth2 authentication and token refresh;
// when no valid credential is available the tools return instructions for
// running the authorization flow.
//
// The server starts in read-only mode by default. Tools that change mailbox
// state or write to the local filesystem are only registered when write mode
// is enabled.
//
// Security Considerations:
//   - Attachment size is limited to 25MB (MaxAttachmentSize)
//   - Filenames are sanitized to prevent path traversal attacks
//   - OAuth2 tokens are stored with owner-only file permissions and refreshed automatically
package gmail_tools
