package nemo

import (
	"testing"
)

func TestParseRunnerOutput(t *testing.T) {
	data := []byte(`{"text": "hello world", "segments": [
		{"segment": "hello", "start": 0.0, "end": 0.8},
		{"segment": "world", "start": 0.96, "end": 1.52}
	]}`)

	parsed, err := parseRunnerOutput(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Text != "hello world" {
		t.Errorf("text = %q", parsed.Text)
	}
	if len(parsed.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(parsed.Segments))
	}
	if parsed.Segments[1].Start != 0.96 || parsed.Segments[1].End != 1.52 {
		t.Errorf("segment timestamps = %v", parsed.Segments[1])
	}
}

func TestParseRunnerOutputError(t *testing.T) {
	_, err := parseRunnerOutput([]byte(`{"error": "nemo toolkit not installed"}`))
	if err == nil {
		t.Fatal("expected an error")
	}

	_, err = parseRunnerOutput([]byte(`not json`))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseRunnerOutputProbe(t *testing.T) {
	parsed, err := parseRunnerOutput([]byte(`{"ok": true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Text != "" || len(parsed.Segments) != 0 {
		t.Errorf("probe output parsed as transcript: %+v", parsed)
	}
}

func TestNewNemoClientDefaults(t *testing.T) {
	c := NewNemoClient(NemoClientOptions{})
	if c.python != "python3" {
		t.Errorf("python = %q", c.python)
	}
	if c.model != DefaultModelName {
		t.Errorf("model = %q", c.model)
	}
	if c.device != "auto" {
		t.Errorf("device = %q", c.device)
	}
}
