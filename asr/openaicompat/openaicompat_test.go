package openaicompat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "hello world",
			"segments": [
				{"text": " hello", "start": 0.0, "end": 0.9},
				{"text": " world", "start": 0.9, "end": 1.7}
			]
		}`))
	}))
	defer srv.Close()

	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	c := NewOpenAIClient(OpenAIClientOptions{BaseURL: srv.URL, ModelName: "whisper-1"})
	output, err := c.Run(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if output.Text != "hello world" {
		t.Errorf("text = %q", output.Text)
	}
	if output.ModelName != "openai-whisper-1" {
		t.Errorf("model name = %q", output.ModelName)
	}
	if len(output.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(output.Segments))
	}
	if output.Segments[0].Text != "hello" {
		t.Errorf("segment text not trimmed: %q", output.Segments[0].Text)
	}
}

func TestRunServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	c := NewOpenAIClient(OpenAIClientOptions{BaseURL: srv.URL})
	if _, err := c.Run(context.Background(), audioPath); err == nil {
		t.Fatal("expected an error")
	}
}
