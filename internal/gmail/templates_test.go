package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTemplate(t *testing.T) {
	tests := []struct {
		name         string
		template     string
		params       TemplateParams
		wantCriteria FilterCriteria
		wantErr      string
	}{
		{
			name:     "from sender",
			template: TemplateFromSender,
			params: TemplateParams{
				SenderEmail: "news@example.com",
				LabelIDs:    []string{"Label_1"},
			},
			wantCriteria: FilterCriteria{From: "news@example.com"},
		},
		{
			name:     "from sender missing email",
			template: TemplateFromSender,
			params:   TemplateParams{Archive: true},
			wantErr:  "requires senderEmail",
		},
		{
			name:     "with subject",
			template: TemplateWithSubject,
			params: TemplateParams{
				SubjectText: "[ALERT]",
				MarkAsRead:  true,
			},
			wantCriteria: FilterCriteria{Subject: "[ALERT]"},
		},
		{
			name:     "with attachments",
			template: TemplateWithAttachments,
			params:   TemplateParams{Archive: true},
			wantCriteria: FilterCriteria{
				HasAttachment: true,
			},
		},
		{
			name:     "large emails default size",
			template: TemplateLargeEmails,
			params:   TemplateParams{LabelIDs: []string{"Label_2"}},
			wantCriteria: FilterCriteria{
				Size:           10 * 1024 * 1024,
				SizeComparison: "larger",
			},
		},
		{
			name:     "large emails custom size",
			template: TemplateLargeEmails,
			params: TemplateParams{
				SizeInBytes: 5 * 1024 * 1024,
				Archive:     true,
			},
			wantCriteria: FilterCriteria{
				Size:           5 * 1024 * 1024,
				SizeComparison: "larger",
			},
		},
		{
			name:     "containing text",
			template: TemplateContainingText,
			params: TemplateParams{
				SearchText: "unsubscribe",
				Archive:    true,
			},
			wantCriteria: FilterCriteria{Query: "unsubscribe"},
		},
		{
			name:     "mailing list",
			template: TemplateMailingList,
			params: TemplateParams{
				ListIdentifier: "dev@lists.example.com",
				Archive:        true,
			},
			wantCriteria: FilterCriteria{Query: "list:dev@lists.example.com"},
		},
		{
			name:     "mailing list missing identifier",
			template: TemplateMailingList,
			params:   TemplateParams{Archive: true},
			wantErr:  "requires listIdentifier",
		},
		{
			name:     "unknown template",
			template: "bogus",
			params:   TemplateParams{Archive: true},
			wantErr:  "unknown filter template",
		},
		{
			name:     "no action",
			template: TemplateWithAttachments,
			params:   TemplateParams{},
			wantErr:  "at least one action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria, action, err := BuildTemplate(tt.template, tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCriteria, criteria)
			assert.Equal(t, tt.params.LabelIDs, action.AddLabelIDs)
			assert.Equal(t, tt.params.Archive, action.Archive)
			assert.Equal(t, tt.params.MarkAsRead, action.MarkAsRead)
			assert.Equal(t, tt.params.MarkImportant, action.MarkImportant)
		})
	}
}
