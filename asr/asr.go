package asr

import "context"

// SpeechRecognitionAPI runs a pretrained ASR model over a prepared audio
// file (16kHz mono WAV) and returns the transcript with segment timestamps.
type SpeechRecognitionAPI interface {
	Run(ctx context.Context, audioPath string) (*ASROutput, error)

	// Probe checks that the backend is usable (runtime present, model
	// loadable). Called once at startup; a failure is fatal.
	Probe(ctx context.Context) error
}

// Segment is a contiguous span of transcript text with start/end times in
// seconds relative to the source audio. Ordering and alignment are
// decoder-determined.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type ASROutput struct {
	Text      string
	ModelName string
	Segments  []Segment
}
