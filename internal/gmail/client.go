package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gmail-mcp/internal/auth"
	"github.com/teemow/gmail-mcp/internal/instrumentation"
	"github.com/teemow/gmail-mcp/internal/logging"
)

// Client wraps the Gmail Users service. All calls use the "me" user,
// the account the stored credential was granted for.
type Client struct {
	svc       *gmail.UsersService
	metrics   *instrumentation.Metrics
	signature string // Cached signature for the primary send-as address
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetrics wires per-operation API metrics.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Gmail client whose requests are authenticated
// through the credential manager. Token refresh happens transparently
// inside the token source.
func NewClient(ctx context.Context, mgr *auth.Manager, opts ...ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(mgr.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}

	c := &Client{svc: svc.Users}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// observe starts timing one API operation and returns the completion
// callback, so call sites stay one line.
func (c *Client) observe(ctx context.Context, operation string) func(error) {
	start := time.Now()
	return func(err error) {
		if c.metrics == nil {
			return
		}
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordGmailAPIOperation(ctx, operation, status, time.Since(start))
	}
}

// SendMessage sends the message. A non-empty threadID threads it into
// an existing conversation. Returns the sent message ID.
func (c *Client) SendMessage(ctx context.Context, msg *Message, threadID string) (string, error) {
	msg = c.appendSignature(ctx, msg)

	done := c.observe(ctx, "send")

	raw, err := msg.Encode()
	if err != nil {
		done(err)
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw:      raw,
		ThreadId: threadID,
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	recipient := ""
	if len(msg.To) > 0 {
		recipient = msg.To[0]
	}
	slog.Debug("message sent",
		"id", sent.Id,
		"recipient", logging.AnonymizeEmail(recipient),
		"recipients", len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	return sent.Id, nil
}

// CreateDraft stores the message as a draft. Returns the draft ID.
func (c *Client) CreateDraft(ctx context.Context, msg *Message, threadID string) (string, error) {
	done := c.observe(ctx, "draft")

	raw, err := msg.Encode()
	if err != nil {
		done(err)
		return "", err
	}

	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{
			Raw:      raw,
			ThreadId: threadID,
		},
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return "", fmt.Errorf("creating draft: %w", err)
	}
	return draft.Id, nil
}

// GetMessage retrieves a message with its full payload.
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	done := c.observe(ctx, "get")
	msg, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}
	return msg, nil
}

// SearchMessages returns up to maxResults messages matching the Gmail
// query, each populated with metadata headers.
func (c *Client) SearchMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	done := c.observe(ctx, "search")

	if maxResults <= 0 {
		maxResults = 10
	}

	var found []*gmail.Message
	pageToken := ""
	for {
		remaining := maxResults - int64(len(found))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		res, err := req.Context(ctx).Do()
		if err != nil {
			done(err)
			return nil, fmt.Errorf("searching messages: %w", err)
		}

		for _, stub := range res.Messages {
			msg, err := c.svc.Messages.Get("me", stub.Id).
				Format("metadata").
				MetadataHeaders("Subject", "From", "Date").
				Context(ctx).Do()
			if err != nil {
				done(err)
				return nil, fmt.Errorf("getting message %s: %w", stub.Id, err)
			}
			found = append(found, msg)
			if int64(len(found)) >= maxResults {
				break
			}
		}

		if res.NextPageToken == "" || int64(len(found)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	done(nil)
	return found, nil
}

// ModifyMessage adds and removes labels on a message.
func (c *Client) ModifyMessage(ctx context.Context, id string, addLabelIDs, removeLabelIDs []string) error {
	done := c.observe(ctx, "modify")
	_, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("modifying message %s: %w", id, err)
	}
	return nil
}

// BatchModifyMessages adds and removes labels on many messages in one
// API call. The Gmail API reports no per-message outcome here; callers
// that need one fall back to ModifyMessage per ID.
func (c *Client) BatchModifyMessages(ctx context.Context, ids []string, addLabelIDs, removeLabelIDs []string) error {
	done := c.observe(ctx, "batch_modify")
	err := c.svc.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("batch modifying %d messages: %w", len(ids), err)
	}
	return nil
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(ctx context.Context, id string) error {
	done := c.observe(ctx, "trash")
	_, err := c.svc.Messages.Trash("me", id).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("trashing message %s: %w", id, err)
	}
	return nil
}

// HeaderValue returns the value of the named header from a message's
// payload, or the empty string.
func HeaderValue(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// GetSignature fetches the user's Gmail signature (primary send-as address)
// The signature is cached after the first fetch
func (c *Client) GetSignature(ctx context.Context) (string, error) {
	if c.signature != "" {
		return c.signature, nil
	}

	done := c.observe(ctx, "get_signature")
	sendAs, err := c.svc.Settings.SendAs.Get("me", "me").Context(ctx).Do()
	done(err)
	if err != nil {
		// A missing signature never blocks sending.
		return "", nil
	}

	if sendAs.Signature != "" {
		c.signature = sendAs.Signature
	}
	return c.signature, nil
}

// appendSignature returns a copy of the message with the account's
// Gmail signature appended to each non-empty body. A missing signature
// or a failed settings fetch leaves the message unchanged.
func (c *Client) appendSignature(ctx context.Context, msg *Message) *Message {
	sig, err := c.GetSignature(ctx)
	if err != nil || sig == "" {
		return msg
	}

	signed := *msg
	if signed.Body != "" {
		signed.Body += "\n\n-- \n" + sig
	}
	if signed.HTMLBody != "" {
		signed.HTMLBody += "<br><br>-- <br>" + sig
	}
	return &signed
}
