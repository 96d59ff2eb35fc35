package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024
)

// AttachmentInfo represents an attachment's metadata
type AttachmentInfo struct {
	MessageID    string
	PartID       string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64
}

// ListAttachments extracts all attachments from a message
func (c *Client) ListAttachments(ctx context.Context, messageID string) ([]*AttachmentInfo, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	var attachments []*AttachmentInfo
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			attachments = append(attachments, &AttachmentInfo{
				MessageID:    messageID,
				PartID:       part.PartId,
				AttachmentID: part.Body.AttachmentId,
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				Size:         part.Body.Size,
			})
		}
	})

	return attachments, nil
}

// GetAttachment retrieves the content of an attachment (returns []byte)
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	done := c.observe(ctx, "get_attachment")
	attachment, err := c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", attachment.Size, MaxAttachmentSize)
	}

	return decodeBody(attachment.Data)
}

// DownloadAttachment fetches an attachment and writes it into dir. An
// empty filename falls back to the attachment's own name from the
// message. Returns the written path.
func (c *Client) DownloadAttachment(ctx context.Context, messageID, attachmentID, filename, dir string) (string, error) {
	if filename == "" {
		infos, err := c.ListAttachments(ctx, messageID)
		if err != nil {
			return "", err
		}
		for _, info := range infos {
			if info.AttachmentID == attachmentID {
				filename = info.Filename
				break
			}
		}
		if filename == "" {
			return "", fmt.Errorf("attachment %s not found in message %s", attachmentID, messageID)
		}
	}

	data, err := c.GetAttachment(ctx, messageID, attachmentID)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing attachment: %w", err)
	}
	return path, nil
}

// GetMessageBody extracts text/HTML body from a message
func (c *Client) GetMessageBody(ctx context.Context, messageID string, format string) (string, error) {
	if format == "" {
		format = "text"
	}

	var targetMimeType string
	switch format {
	case "text":
		targetMimeType = "text/plain"
	case "html":
		targetMimeType = "text/html"
	default:
		return "", fmt.Errorf("invalid format %s, must be 'text' or 'html'", format)
	}

	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return "", err
	}

	body := ExtractBody(msg, targetMimeType)
	if body == "" {
		return "", fmt.Errorf("no %s body found in message", format)
	}

	decoded, err := decodeBody(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode message body: %w", err)
	}
	return string(decoded), nil
}

// ExtractBody finds the first part of the given MIME type in an
// already-fetched message and returns its still-encoded data.
func ExtractBody(msg *gmail.Message, targetMimeType string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	if msg.Payload.MimeType == targetMimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return msg.Payload.Body.Data
	}

	var body string
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if body == "" && part.MimeType == targetMimeType && part.Body != nil && part.Body.Data != "" {
			body = part.Body.Data
		}
	})
	return body
}

// BodyText extracts and decodes the first part of the given MIME type
// from an already-fetched message. Returns "" when the message has no
// such part or its data cannot be decoded.
func BodyText(msg *gmail.Message, targetMimeType string) string {
	data := ExtractBody(msg, targetMimeType)
	if data == "" {
		return ""
	}
	decoded, err := decodeBody(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// decodeBody decodes Gmail body data. The API uses RFC 4648 base64url,
// but some producers emit standard base64, so fall back to that.
func decodeBody(data string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, err
		}
	}
	return decoded, nil
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// SanitizeFilename sanitizes a filename to prevent path traversal attacks
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}
