package store

import (
	"context"
	"fmt"
	"time"
)

type Transcription struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Filename       string    `json:"filename"`
	Model          string    `json:"model"`
	AudioDuration  float64   `json:"audio_duration"`
	ProcessingTime float64   `json:"processing_time"`
	SegmentCount   int       `json:"segment_count"`
	FullText       string    `json:"full_text"`
}

func (s *Store) CreateTranscription(ctx context.Context, t Transcription) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO transcriptions
			(id, filename, model, audio_duration, processing_time, segment_count, full_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Filename, t.Model, t.AudioDuration, t.ProcessingTime, t.SegmentCount, t.FullText,
	)
	if err != nil {
		return fmt.Errorf("inserting transcription: %w", err)
	}

	return nil
}

func (s *Store) ListRecentTranscriptions(ctx context.Context, limit int) ([]Transcription, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, created_at, filename, model, audio_duration, processing_time, segment_count, full_text
		FROM transcriptions
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transcriptions: %w", err)
	}
	defer rows.Close()

	var out []Transcription
	for rows.Next() {
		var t Transcription
		err := rows.Scan(
			&t.ID, &t.CreatedAt, &t.Filename, &t.Model,
			&t.AudioDuration, &t.ProcessingTime, &t.SegmentCount, &t.FullText,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning transcription: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}
