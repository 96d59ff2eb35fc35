package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
)

// FilterCriteria represents the criteria for a Gmail filter
type FilterCriteria struct {
	From           string // Email addresses to filter from
	To             string // Email addresses to filter to
	Subject        string // Words in the subject line
	Query          string // Gmail search query
	NegatedQuery   string // Gmail search query the message must not match
	HasAttachment  bool   // Whether the message has attachments
	ExcludeChats   bool   // Whether to skip chat messages
	Size           int64  // Message size in bytes (use with SizeComparison)
	SizeComparison string // "larger" or "smaller"
}

// FilterAction represents the actions to take when a filter matches
type FilterAction struct {
	AddLabelIDs    []string // Label IDs to add
	RemoveLabelIDs []string // Label IDs to remove
	Forward        string   // Email address to forward to
	Archive        bool     // Remove from inbox (remove INBOX label)
	MarkAsRead     bool     // Mark as read
	Star           bool     // Add star
	MarkImportant  bool     // Add the IMPORTANT label
	MarkAsSpam     bool     // Mark as spam
	Delete         bool     // Send to trash
}

// FilterInfo represents a Gmail filter with its criteria and actions
type FilterInfo struct {
	ID       string
	Criteria FilterCriteria
	Action   FilterAction
}

// CreateFilter creates a new Gmail filter
func (c *Client) CreateFilter(ctx context.Context, criteria FilterCriteria, action FilterAction) (*FilterInfo, error) {
	done := c.observe(ctx, "create_filter")

	gmailCriteria := &gmail.FilterCriteria{
		From:          criteria.From,
		To:            criteria.To,
		Subject:       criteria.Subject,
		Query:         criteria.Query,
		NegatedQuery:  criteria.NegatedQuery,
		HasAttachment: criteria.HasAttachment,
		ExcludeChats:  criteria.ExcludeChats,
	}
	if criteria.Size > 0 {
		gmailCriteria.Size = criteria.Size
		gmailCriteria.SizeComparison = criteria.SizeComparison
	}

	gmailAction := &gmail.FilterAction{
		AddLabelIds:    action.AddLabelIDs,
		RemoveLabelIds: action.RemoveLabelIDs,
		Forward:        action.Forward,
	}

	// The boolean shorthands all translate to system label changes.
	if action.Archive {
		gmailAction.RemoveLabelIds = append(gmailAction.RemoveLabelIds, "INBOX")
	}
	if action.MarkAsRead {
		gmailAction.RemoveLabelIds = append(gmailAction.RemoveLabelIds, "UNREAD")
	}
	if action.Star {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "STARRED")
	}
	if action.MarkImportant {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "IMPORTANT")
	}
	if action.MarkAsSpam {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "SPAM")
	}
	if action.Delete {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "TRASH")
	}

	created, err := c.svc.Settings.Filters.Create("me", &gmail.Filter{
		Criteria: gmailCriteria,
		Action:   gmailAction,
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	return convertGmailFilterToFilterInfo(created), nil
}

// ListFilters lists all Gmail filters for the user
func (c *Client) ListFilters(ctx context.Context) ([]*FilterInfo, error) {
	done := c.observe(ctx, "list_filters")
	resp, err := c.svc.Settings.Filters.List("me").Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}

	filters := make([]*FilterInfo, 0, len(resp.Filter))
	for _, f := range resp.Filter {
		filters = append(filters, convertGmailFilterToFilterInfo(f))
	}

	return filters, nil
}

// GetFilter retrieves a specific filter by ID
func (c *Client) GetFilter(ctx context.Context, filterID string) (*FilterInfo, error) {
	done := c.observe(ctx, "get_filter")
	filter, err := c.svc.Settings.Filters.Get("me", filterID).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter: %w", err)
	}

	return convertGmailFilterToFilterInfo(filter), nil
}

// DeleteFilter deletes a filter by ID
func (c *Client) DeleteFilter(ctx context.Context, filterID string) error {
	done := c.observe(ctx, "delete_filter")
	err := c.svc.Settings.Filters.Delete("me", filterID).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to delete filter: %w", err)
	}
	return nil
}

// convertGmailFilterToFilterInfo converts a Gmail API filter to FilterInfo
func convertGmailFilterToFilterInfo(f *gmail.Filter) *FilterInfo {
	info := &FilterInfo{
		ID: f.Id,
	}

	if f.Criteria != nil {
		info.Criteria = FilterCriteria{
			From:           f.Criteria.From,
			To:             f.Criteria.To,
			Subject:        f.Criteria.Subject,
			Query:          f.Criteria.Query,
			NegatedQuery:   f.Criteria.NegatedQuery,
			HasAttachment:  f.Criteria.HasAttachment,
			ExcludeChats:   f.Criteria.ExcludeChats,
			Size:           f.Criteria.Size,
			SizeComparison: f.Criteria.SizeComparison,
		}
	}

	if f.Action != nil {
		info.Action = FilterAction{
			AddLabelIDs:    f.Action.AddLabelIds,
			RemoveLabelIDs: f.Action.RemoveLabelIds,
			Forward:        f.Action.Forward,
		}

		// Recover the boolean shorthands from the system labels.
		for _, labelID := range f.Action.RemoveLabelIds {
			switch labelID {
			case "INBOX":
				info.Action.Archive = true
			case "UNREAD":
				info.Action.MarkAsRead = true
			}
		}

		for _, labelID := range f.Action.AddLabelIds {
			switch labelID {
			case "STARRED":
				info.Action.Star = true
			case "IMPORTANT":
				info.Action.MarkImportant = true
			case "SPAM":
				info.Action.MarkAsSpam = true
			case "TRASH":
				info.Action.Delete = true
			}
		}
	}

	return info
}
