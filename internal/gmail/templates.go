package gmail

import (
	"fmt"
)

// Filter template names.
const (
	TemplateFromSender      = "fromSender"
	TemplateWithSubject     = "withSubject"
	TemplateWithAttachments = "withAttachments"
	TemplateLargeEmails     = "largeEmails"
	TemplateContainingText  = "containingText"
	TemplateMailingList     = "mailingList"
)

// TemplateParams carries the inputs for the filter templates. Only the
// fields the chosen template needs must be set.
type TemplateParams struct {
	SenderEmail    string
	SubjectText    string
	SearchText     string
	ListIdentifier string
	SizeInBytes    int64

	// Common actions applied on match.
	LabelIDs      []string
	Archive       bool
	MarkAsRead    bool
	MarkImportant bool
}

// defaultLargeEmailSize is 10 MB, the point where messages start
// crowding the mailbox quota.
const defaultLargeEmailSize = 10 * 1024 * 1024

// BuildTemplate expands a named template into filter criteria and
// actions ready for CreateFilter.
func BuildTemplate(name string, p TemplateParams) (FilterCriteria, FilterAction, error) {
	action := FilterAction{
		AddLabelIDs:   p.LabelIDs,
		Archive:       p.Archive,
		MarkAsRead:    p.MarkAsRead,
		MarkImportant: p.MarkImportant,
	}

	var criteria FilterCriteria
	switch name {
	case TemplateFromSender:
		if p.SenderEmail == "" {
			return criteria, action, fmt.Errorf("template %s requires senderEmail", name)
		}
		criteria.From = p.SenderEmail

	case TemplateWithSubject:
		if p.SubjectText == "" {
			return criteria, action, fmt.Errorf("template %s requires subjectText", name)
		}
		criteria.Subject = p.SubjectText

	case TemplateWithAttachments:
		criteria.HasAttachment = true

	case TemplateLargeEmails:
		size := p.SizeInBytes
		if size <= 0 {
			size = defaultLargeEmailSize
		}
		criteria.Size = size
		criteria.SizeComparison = "larger"

	case TemplateContainingText:
		if p.SearchText == "" {
			return criteria, action, fmt.Errorf("template %s requires searchText", name)
		}
		criteria.Query = p.SearchText

	case TemplateMailingList:
		if p.ListIdentifier == "" {
			return criteria, action, fmt.Errorf("template %s requires listIdentifier", name)
		}
		criteria.Query = fmt.Sprintf("list:%s", p.ListIdentifier)

	default:
		return criteria, action, fmt.Errorf("unknown filter template %q", name)
	}

	if len(action.AddLabelIDs) == 0 && !action.Archive && !action.MarkAsRead && !action.MarkImportant {
		return criteria, action, fmt.Errorf("template %s needs at least one action (labelIds, archive, markAsRead, markImportant)", name)
	}

	return criteria, action, nil
}
