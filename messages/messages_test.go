package messages

import (
	"strings"
	"testing"
)

func TestExecuteString(t *testing.T) {
	m, err := NewMessageProvider()
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	got, err := m.ExecuteString("upload_too_big", map[string]any{"limit_mb": 32})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	if !strings.Contains(got, "32MB") {
		t.Errorf("got %q, want the limit in the message", got)
	}
}

func TestResultCaption(t *testing.T) {
	m, err := NewMessageProvider()
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	got, err := m.ExecuteString("result_caption", map[string]any{
		"audio_duration":  12.3,
		"processing_time": 1.5,
		"model":           "nemo-nvidia/parakeet-tdt-0.6b-v2",
	})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	for _, want := range []string{"12.3s", "1.5s", "parakeet"} {
		if !strings.Contains(got, want) {
			t.Errorf("caption %q missing %q", got, want)
		}
	}
}

func TestUnknownMessage(t *testing.T) {
	m, err := NewMessageProvider()
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	if _, err := m.ExecuteString("does_not_exist", map[string]any{}); err == nil {
		t.Error("expected an error for an unknown message key")
	}
}
