package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestDecodeBody(t *testing.T) {
	payload := []byte("body with ?? and // characters \xfb\xff")

	tests := []struct {
		name string
		data string
	}{
		{name: "base64url", data: base64.URLEncoding.EncodeToString(payload)},
		{name: "standard base64", data: base64.StdEncoding.EncodeToString(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := decodeBody(tt.data)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestDecodeBody_Invalid(t *testing.T) {
	_, err := decodeBody("not base64 at all!!!")
	assert.Error(t, err)
}

func nestedMessage() *gmail.Message {
	return &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("plain body"))},
						},
						{
							MimeType: "text/html",
							Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("<p>html body</p>"))},
						},
					},
				},
				{
					MimeType: "application/pdf",
					Filename: "report.pdf",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1234},
				},
			},
		},
	}
}

func TestExtractBody(t *testing.T) {
	msg := nestedMessage()

	plain := ExtractBody(msg, "text/plain")
	assert.Equal(t, base64.URLEncoding.EncodeToString([]byte("plain body")), plain)

	html := ExtractBody(msg, "text/html")
	assert.Equal(t, base64.URLEncoding.EncodeToString([]byte("<p>html body</p>")), html)

	assert.Empty(t, ExtractBody(msg, "text/calendar"))
	assert.Empty(t, ExtractBody(nil, "text/plain"))
	assert.Empty(t, ExtractBody(&gmail.Message{}, "text/plain"))
}

func TestExtractBody_TopLevelPart(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("flat body"))},
		},
	}

	assert.Equal(t, base64.URLEncoding.EncodeToString([]byte("flat body")), ExtractBody(msg, "text/plain"))
}

func TestBodyText(t *testing.T) {
	msg := nestedMessage()

	assert.Equal(t, "plain body", BodyText(msg, "text/plain"))
	assert.Equal(t, "<p>html body</p>", BodyText(msg, "text/html"))
	assert.Empty(t, BodyText(msg, "text/calendar"))
}

func TestBodyText_UndecodableData(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: "!!not-base64!!"},
		},
	}

	assert.Empty(t, BodyText(msg, "text/plain"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name untouched", input: "report.pdf", want: "report.pdf"},
		{name: "path separators replaced", input: "dir/report.pdf", want: "dir_report.pdf"},
		{name: "windows separators replaced", input: `dir\report.pdf`, want: "dir_report.pdf"},
		{name: "parent traversal replaced", input: "../../etc/passwd", want: "____etc_passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}
