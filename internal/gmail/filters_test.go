package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func TestConvertGmailFilterToFilterInfo(t *testing.T) {
	tests := []struct {
		name     string
		input    *gmail.Filter
		expected *FilterInfo
	}{
		{
			name: "from criteria with archive",
			input: &gmail.Filter{
				Id: "filter-1",
				Criteria: &gmail.FilterCriteria{
					From: "spam@example.com",
				},
				Action: &gmail.FilterAction{
					RemoveLabelIds: []string{"INBOX"},
				},
			},
			expected: &FilterInfo{
				ID: "filter-1",
				Criteria: FilterCriteria{
					From: "spam@example.com",
				},
				Action: FilterAction{
					Archive:        true,
					RemoveLabelIDs: []string{"INBOX"},
				},
			},
		},
		{
			name: "subject criteria with label",
			input: &gmail.Filter{
				Id: "filter-2",
				Criteria: &gmail.FilterCriteria{
					Subject: "Important",
				},
				Action: &gmail.FilterAction{
					AddLabelIds: []string{"Label_1"},
				},
			},
			expected: &FilterInfo{
				ID: "filter-2",
				Criteria: FilterCriteria{
					Subject: "Important",
				},
				Action: FilterAction{
					AddLabelIDs: []string{"Label_1"},
				},
			},
		},
		{
			name: "recovers all boolean shorthands",
			input: &gmail.Filter{
				Id: "filter-3",
				Criteria: &gmail.FilterCriteria{
					Query: "has:attachment",
				},
				Action: &gmail.FilterAction{
					AddLabelIds:    []string{"STARRED", "IMPORTANT", "SPAM", "TRASH"},
					RemoveLabelIds: []string{"INBOX", "UNREAD"},
				},
			},
			expected: &FilterInfo{
				ID: "filter-3",
				Criteria: FilterCriteria{
					Query: "has:attachment",
				},
				Action: FilterAction{
					AddLabelIDs:    []string{"STARRED", "IMPORTANT", "SPAM", "TRASH"},
					RemoveLabelIDs: []string{"INBOX", "UNREAD"},
					Archive:        true,
					MarkAsRead:     true,
					Star:           true,
					MarkImportant:  true,
					MarkAsSpam:     true,
					Delete:         true,
				},
			},
		},
		{
			name: "size and negated query criteria",
			input: &gmail.Filter{
				Id: "filter-4",
				Criteria: &gmail.FilterCriteria{
					NegatedQuery:   "from:boss@example.com",
					Size:           1048576,
					SizeComparison: "larger",
					ExcludeChats:   true,
				},
				Action: &gmail.FilterAction{
					Forward: "archive@example.com",
				},
			},
			expected: &FilterInfo{
				ID: "filter-4",
				Criteria: FilterCriteria{
					NegatedQuery:   "from:boss@example.com",
					Size:           1048576,
					SizeComparison: "larger",
					ExcludeChats:   true,
				},
				Action: FilterAction{
					Forward: "archive@example.com",
				},
			},
		},
		{
			name: "nil criteria and action",
			input: &gmail.Filter{
				Id: "filter-5",
			},
			expected: &FilterInfo{
				ID: "filter-5",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertGmailFilterToFilterInfo(tt.input))
		})
	}
}
