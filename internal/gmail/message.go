package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// emailAddressPattern is deliberately loose; Gmail does the
// authoritative validation, this only catches obvious typos early.
var emailAddressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmailAddress reports whether addr looks like an email address.
func ValidateEmailAddress(addr string) bool {
	return emailAddressPattern.MatchString(addr)
}

// Message describes an outgoing email. Body carries the plain-text
// part; HTMLBody, when set alongside Body, produces a
// multipart/alternative message. Attachments are local file paths.
type Message struct {
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string
	HTMLBody string

	// InReplyTo and References thread the message under an existing
	// conversation.
	InReplyTo  string
	References string

	Attachments []string
}

// Validate checks recipients and required fields before any API call.
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	for _, group := range [][]string{m.To, m.Cc, m.Bcc} {
		for _, addr := range group {
			if !ValidateEmailAddress(addr) {
				return fmt.Errorf("invalid email address: %s", addr)
			}
		}
	}
	if m.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if m.Body == "" && m.HTMLBody == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// Encode renders the message in RFC 2822 format and returns it
// base64url-encoded as the Gmail API expects for Message.Raw.
func (m *Message) Encode() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	m.writeHeaders(&b)

	if len(m.Attachments) > 0 {
		if err := m.writeMixed(&b); err != nil {
			return "", err
		}
	} else if err := m.writeContent(&b); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

func (m *Message) writeHeaders(b *strings.Builder) {
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	if len(m.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.Cc, ", ") + "\r\n")
	}
	if len(m.Bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(m.Bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(m.Subject) + "\r\n")
	if m.InReplyTo != "" {
		b.WriteString("In-Reply-To: " + m.InReplyTo + "\r\n")
	}
	if m.References != "" {
		b.WriteString("References: " + m.References + "\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
}

// writeContent writes the Content-Type header and body for a message
// without attachments.
func (m *Message) writeContent(b *strings.Builder) error {
	switch {
	case m.Body != "" && m.HTMLBody != "":
		w := multipart.NewWriter(b)
		b.WriteString("Content-Type: multipart/alternative; boundary=\"" + w.Boundary() + "\"\r\n\r\n")
		if err := writeTextPart(w, "text/plain", m.Body); err != nil {
			return err
		}
		if err := writeTextPart(w, "text/html", m.HTMLBody); err != nil {
			return err
		}
		return w.Close()
	case m.HTMLBody != "":
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.HTMLBody)
		return nil
	default:
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.Body)
		return nil
	}
}

// writeMixed writes a multipart/mixed message: the textual content
// first, then one part per attachment.
func (m *Message) writeMixed(b *strings.Builder) error {
	w := multipart.NewWriter(b)
	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + w.Boundary() + "\"\r\n\r\n")

	var content strings.Builder
	if err := m.writeContent(&content); err != nil {
		return err
	}
	// The nested content carries its own Content-Type header line, so
	// split it off and hand it to CreatePart verbatim.
	header, body, ok := strings.Cut(content.String(), "\r\n\r\n")
	if !ok {
		return fmt.Errorf("building message content")
	}
	contentHeader := textproto.MIMEHeader{}
	name, value, _ := strings.Cut(header, ": ")
	contentHeader.Set(name, value)
	part, err := w.CreatePart(contentHeader)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return err
	}

	for _, path := range m.Attachments {
		if err := writeAttachmentPart(w, path); err != nil {
			return err
		}
	}
	return w.Close()
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=\"UTF-8\"")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(body))
	return err
}

func writeAttachmentPart(w *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}
	if int64(len(data)) > MaxAttachmentSize {
		return fmt.Errorf("attachment %s exceeds the %d byte limit", path, MaxAttachmentSize)
	}

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", fmt.Sprintf("%s; name=%q", contentType, name))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	h.Set("Content-Transfer-Encoding", "base64")

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(wrapBase64(data))
	return err
}

// wrapBase64 encodes data and folds it to 76-character lines per
// RFC 2045.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return []byte(b.String())
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047
// This is necessary for non-ASCII characters (like German umlauts) in subjects
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
