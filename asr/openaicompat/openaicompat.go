// Package openaicompat transcribes audio through any server exposing the
// OpenAI /v1/audio/transcriptions endpoint (whisper.cpp server,
// faster-whisper-server, the hosted API).
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/SUP3RMASS1VE/parakeet-web/asr"
)

const apiPrefix = "openai-"

type OpenAIClient struct {
	baseURL string
	token   string
	model   string

	http *http.Client
}

type OpenAIClientOptions struct {
	BaseURL   string `env:"BASE_URL" envDefault:"https://api.openai.com"`
	Token     string `env:"TOKEN"`
	ModelName string `env:"MODEL_NAME" envDefault:"whisper-1"`
}

func NewOpenAIClient(options OpenAIClientOptions) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimSuffix(options.BaseURL, "/"),
		token:   options.Token,
		model:   options.ModelName,
		http:    http.DefaultClient,
	}
}

type transcriptionResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (c *OpenAIClient) buildRequest(ctx context.Context, audioPath string) (*http.Request, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copying audio into form: %w", err)
	}

	_ = mw.WriteField("model", c.model)
	_ = mw.WriteField("response_format", "verbose_json")
	_ = mw.WriteField("timestamp_granularities[]", "segment")

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

func (c *OpenAIClient) Run(ctx context.Context, audioPath string) (*asr.ASROutput, error) {
	req, err := c.buildRequest(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("non-ok http response: [%d] %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response json: %w", err)
	}

	result := &asr.ASROutput{
		ModelName: apiPrefix + c.model,
		Text:      parsed.Text,
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, asr.Segment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}

	return result, nil
}

// Probe checks the server is reachable. The hosted API has no cheap
// unauthenticated health route, so any HTTP response counts.
func (c *OpenAIClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reaching server: %w", err)
	}
	resp.Body.Close()

	return nil
}
