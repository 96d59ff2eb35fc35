package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter(&buf, false)

	logger.Debug("hidden at info level")
	logger.Info("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden at info level") {
		t.Error("debug message leaked at info level")
	}
	if !strings.Contains(out, "visible message") {
		t.Error("info message missing")
	}

	buf.Reset()
	logger = SetupWithWriter(&buf, true)
	logger.Debug("debug enabled")
	if !strings.Contains(buf.String(), "debug enabled") {
		t.Error("debug message missing in debug mode")
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(logger, "refresh").Info("working")
	if !strings.Contains(buf.String(), "operation=refresh") {
		t.Errorf("missing operation attribute: %s", buf.String())
	}
}

func TestWithTool(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithTool(logger, "gmail_send_email").Info("working")
	if !strings.Contains(buf.String(), "tool=gmail_send_email") {
		t.Errorf("missing tool attribute: %s", buf.String())
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("failed", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("missing error attribute: %s", buf.String())
	}

	buf.Reset()
	logger.Info("fine", Err(nil))
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error must not emit an attribute: %s", buf.String())
	}
}

func TestAnonymizeEmail(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("empty email: got %q, want empty", got)
	}

	got := AnonymizeEmail("alice@example.com")
	if !strings.HasPrefix(got, "user:") {
		t.Errorf("got %q, want user: prefix", got)
	}
	if strings.Contains(got, "alice") || strings.Contains(got, "example.com") {
		t.Errorf("anonymized email %q leaks the address", got)
	}
	if again := AnonymizeEmail("alice@example.com"); again != got {
		t.Errorf("not deterministic: %q vs %q", got, again)
	}
	if other := AnonymizeEmail("bob@example.com"); other == got {
		t.Error("distinct emails hash to the same value")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: "<empty>"},
		{name: "short", token: "abc", want: "[token:3 chars]"},
		{name: "access token", token: "ya29.a0AfH6SMC-long-token-value", want: "[token:31 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token[:3]) {
				t.Error("sanitized token leaks content")
			}
		})
	}
}
