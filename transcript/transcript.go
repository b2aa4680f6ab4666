// Package transcript holds the result of one transcription and its
// derived forms (full text, CSV).
package transcript

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/SUP3RMASS1VE/parakeet-web/asr"
)

type Transcript struct {
	ID        string        `json:"id"`
	Model     string        `json:"model"`
	Text      string        `json:"text"`
	Segments  []asr.Segment `json:"segments"`
	Duration  float64       `json:"audio_duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// New builds a Transcript from a backend result. When the backend returned
// no concatenated text, it is derived by joining the segments.
func New(id string, output *asr.ASROutput, audioDuration float64) *Transcript {
	t := &Transcript{
		ID:        id,
		Model:     output.ModelName,
		Text:      output.Text,
		Segments:  output.Segments,
		Duration:  audioDuration,
		CreatedAt: time.Now().UTC(),
	}

	if t.Text == "" {
		t.Text = FullText(t.Segments)
	}

	return t
}

// FullText joins segment texts into one string.
func FullText(segments []asr.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks what the model is supposed to guarantee: timestamps are
// non-negative, each segment ends at or after it starts, and segments
// don't overlap or go backwards.
func Validate(segments []asr.Segment) error {
	prevEnd := 0.0
	for i, s := range segments {
		if s.Start < 0 {
			return fmt.Errorf("segment %d: negative start time %f", i, s.Start)
		}
		if s.End < s.Start {
			return fmt.Errorf("segment %d: end %f before start %f", i, s.End, s.Start)
		}
		if s.Start < prevEnd {
			return fmt.Errorf("segment %d: start %f overlaps previous end %f", i, s.Start, prevEnd)
		}
		prevEnd = s.End
	}
	return nil
}

// CSVHeader matches the original export format of this tool.
var CSVHeader = []string{"Start (s)", "End (s)", "Segment"}

// WriteCSV writes one row per segment with two-decimal timestamps.
func (t *Transcript) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range t.Segments {
		row := []string{
			strconv.FormatFloat(s.Start, 'f', 2, 64),
			strconv.FormatFloat(s.End, 'f', 2, 64),
			s.Text,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
