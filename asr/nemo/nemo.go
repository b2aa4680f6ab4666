package nemo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	_ "embed"

	"github.com/SUP3RMASS1VE/parakeet-web/asr"
)

// used for the model name reported in results and the history store
const apiPrefix = "nemo-"

const DefaultModelName = "nvidia/parakeet-tdt-0.6b-v2"

//go:embed assets/nemo_transcribe.py
var runnerScript []byte

type NemoClient struct {
	python string
	model  string
	device string
}

type NemoClientOptions struct {
	PythonBinary string `env:"PYTHON" envDefault:"python3"`
	ModelName    string `env:"MODEL_NAME" envDefault:"nvidia/parakeet-tdt-0.6b-v2"`
	// auto, cpu, or cuda
	Device string `env:"DEVICE" envDefault:"auto"`
}

func NewNemoClient(options NemoClientOptions) *NemoClient {
	if options.PythonBinary == "" {
		options.PythonBinary = "python3"
	}
	if options.ModelName == "" {
		options.ModelName = DefaultModelName
	}
	if options.Device == "" {
		options.Device = "auto"
	}

	return &NemoClient{
		python: options.PythonBinary,
		model:  options.ModelName,
		device: options.Device,
	}
}

type runnerOutput struct {
	Error    string `json:"error"`
	Text     string `json:"text"`
	Segments []struct {
		Segment string  `json:"segment"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"segments"`
}

// writeRunner writes the embedded python helper to a temp file, returning
// the path. It is the caller's responsibility to clean it up.
func writeRunner() (string, error) {
	f, err := os.CreateTemp("", "parakeet-web-nemo-*.py")
	if err != nil {
		return "", fmt.Errorf("making temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(runnerScript); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing runner script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing runner script: %w", err)
	}

	return path, nil
}

func (c *NemoClient) runPython(ctx context.Context, args ...string) ([]byte, error) {
	scriptPath, err := writeRunner()
	if err != nil {
		return nil, err
	}
	defer os.Remove(scriptPath)

	cmd := exec.CommandContext(ctx, c.python, append([]string{scriptPath}, args...)...)
	cmd.Env = os.Environ()

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("running nemo runner: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("running nemo runner: %w", err)
	}

	return output, nil
}

func parseRunnerOutput(data []byte) (*runnerOutput, error) {
	var parsed runnerOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing runner json: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("runner error: %s", parsed.Error)
	}
	return &parsed, nil
}

func (c *NemoClient) Run(ctx context.Context, audioPath string) (*asr.ASROutput, error) {
	output, err := c.runPython(ctx, "--audio", audioPath, "--model", c.model, "--device", c.device)
	if err != nil {
		return nil, err
	}

	parsed, err := parseRunnerOutput(output)
	if err != nil {
		return nil, err
	}

	result := &asr.ASROutput{
		ModelName: apiPrefix + c.model,
		Text:      parsed.Text,
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, asr.Segment{
			Text:  strings.TrimSpace(s.Segment),
			Start: s.Start,
			End:   s.End,
		})
	}

	return result, nil
}

// Probe resolves the model once so the first request doesn't pay the hub
// download, and so a missing NeMo install fails at startup.
func (c *NemoClient) Probe(ctx context.Context) error {
	output, err := c.runPython(ctx, "--probe", "--model", c.model)
	if err != nil {
		return err
	}

	_, err = parseRunnerOutput(output)
	return err
}
