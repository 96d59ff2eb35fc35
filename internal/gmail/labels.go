package gmail

import (
	"context"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// Label visibility values accepted by the Gmail API.
const (
	MessageShow       = "show"
	MessageHide       = "hide"
	LabelShow         = "labelShow"
	LabelShowIfUnread = "labelShowIfUnread"
	LabelHide         = "labelHide"
	labelTypeSystem   = "system"
)

// ListLabels lists all Gmail labels for the user.
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	done := c.observe(ctx, "list_labels")
	resp, err := c.svc.Labels.List("me").Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return resp.Labels, nil
}

// CreateLabel creates a user label. Empty visibility values fall back
// to the API defaults (show / labelShow).
func (c *Client) CreateLabel(ctx context.Context, name, messageListVisibility, labelListVisibility string) (*gmail.Label, error) {
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}
	if messageListVisibility == "" {
		messageListVisibility = MessageShow
	}
	if labelListVisibility == "" {
		labelListVisibility = LabelShow
	}

	done := c.observe(ctx, "create_label")
	label, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		MessageListVisibility: messageListVisibility,
		LabelListVisibility:   labelListVisibility,
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return label, nil
}

// UpdateLabel patches a user label. Only non-empty fields are changed.
// System labels cannot be updated.
func (c *Client) UpdateLabel(ctx context.Context, id, name, messageListVisibility, labelListVisibility string) (*gmail.Label, error) {
	existing, err := c.getLabel(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Type == labelTypeSystem {
		return nil, fmt.Errorf("cannot update system label %q", existing.Name)
	}

	patch := &gmail.Label{
		Name:                  name,
		MessageListVisibility: messageListVisibility,
		LabelListVisibility:   labelListVisibility,
	}

	done := c.observe(ctx, "update_label")
	label, err := c.svc.Labels.Patch("me", id, patch).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to update label %s: %w", id, err)
	}
	return label, nil
}

// DeleteLabel removes a user label. The label is detached from any
// messages carrying it. System labels cannot be deleted.
func (c *Client) DeleteLabel(ctx context.Context, id string) (string, error) {
	existing, err := c.getLabel(ctx, id)
	if err != nil {
		return "", err
	}
	if existing.Type == labelTypeSystem {
		return "", fmt.Errorf("cannot delete system label %q", existing.Name)
	}

	done := c.observe(ctx, "delete_label")
	err = c.svc.Labels.Delete("me", id).Context(ctx).Do()
	done(err)
	if err != nil {
		return "", fmt.Errorf("failed to delete label %s: %w", id, err)
	}
	return existing.Name, nil
}

// GetOrCreateLabel finds a label by name, case-insensitively, creating
// it when absent.
func (c *Client) GetOrCreateLabel(ctx context.Context, name string) (*gmail.Label, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, fmt.Errorf("label name is required")
	}

	labels, err := c.ListLabels(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l, false, nil
		}
	}

	label, err := c.CreateLabel(ctx, name, "", "")
	if err != nil {
		return nil, false, err
	}
	return label, true, nil
}

func (c *Client) getLabel(ctx context.Context, id string) (*gmail.Label, error) {
	done := c.observe(ctx, "get_label")
	label, err := c.svc.Labels.Get("me", id).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get label %s: %w", id, err)
	}
	return label, nil
}
