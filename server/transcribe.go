package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/SUP3RMASS1VE/parakeet-web/store"
	"github.com/SUP3RMASS1VE/parakeet-web/transcript"
	"github.com/SUP3RMASS1VE/parakeet-web/utils"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const transcriptionTimeout = time.Minute * 2

type transcribeResponse struct {
	*transcript.Transcript

	ProcessingTime float64 `json:"processing_time"`
	Caption        string  `json:"caption"`
	CSVURL         string  `json:"csv_url"`
}

func (s *Server) handleTranscribe(c *gin.Context) {
	ctx, log := utils.LogContextWith(c.Request.Context(), s.log, zap.String("request_id", xid.New().String()))

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		s.respondError(c, ExecutionError{
			Message: s.renderMessage("upload_missing", gin.H{}),
			Status:  http.StatusBadRequest,
			Err:     fmt.Errorf("reading form file: %w", err),
		})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, transcriptionTimeout)
	defer cancel()

	response, err := s.runTranscription(ctx, file, header.Filename)
	if err != nil {
		log.Error("failed to transcribe upload", zap.Error(err))

		var execErr ExecutionError
		if errors.As(err, &execErr) {
			s.respondError(c, execErr)
			return
		}

		message := s.renderMessage("transcribe_failed", gin.H{})
		if errors.Is(err, context.DeadlineExceeded) {
			message = s.renderMessage("transcribe_timeout", gin.H{})
		}
		s.respondError(c, ExecutionError{
			Message: message,
			Status:  http.StatusBadGateway,
			Err:     err,
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// runTranscription is the upload-to-transcript pipeline: spool the upload
// to a temp file, check the audio is readable and short enough, resample
// to what the model wants, run the backend, then record and cache the
// result.
func (s *Server) runTranscription(ctx context.Context, file multipart.File, filename string) (*transcribeResponse, error) {
	log := utils.GetLogFromContext(ctx, s.log)

	tempFile, err := os.CreateTemp("", "parakeet-web-upload-*")
	if err != nil {
		return nil, fmt.Errorf("making temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	_, err = utils.CopyLimit(tempFile, file, MaxInputFileSize)
	tempFile.Close()
	if errors.Is(err, utils.ErrIOLimitReached) {
		return nil, ExecutionError{
			Message: s.renderMessage("upload_too_big", gin.H{"limit_mb": MaxInputFileSize / 1024 / 1024}),
			Status:  http.StatusRequestEntityTooLarge,
			Err:     fmt.Errorf("upload too big: %w", err),
		}
	} else if err != nil {
		return nil, fmt.Errorf("spooling upload: %w", err)
	}

	start := time.Now()

	duration, err := s.ffmpeg.FFprobeDurationFromFile(ctx, tempPath)
	if err != nil {
		return nil, ExecutionError{
			Message: s.renderMessage("audio_unreadable", gin.H{}),
			Status:  http.StatusBadRequest,
			Err:     fmt.Errorf("duration: %w", err),
		}
	}
	if duration > MaxDuration {
		return nil, ExecutionError{
			Message: s.renderMessage("audio_too_long", gin.H{"limit": MaxDuration, "duration": duration}),
			Status:  http.StatusBadRequest,
			Err:     fmt.Errorf("file too long: %fs", duration),
		}
	}

	wavPath, err := s.ffmpeg.FFmpegResampleToWAV(ctx, tempPath)
	if err != nil {
		return nil, ExecutionError{
			Message: s.renderMessage("audio_unreadable", gin.H{}),
			Status:  http.StatusBadRequest,
			Err:     fmt.Errorf("resampling: %w", err),
		}
	}
	defer os.Remove(wavPath)

	output, err := s.asrAPI.Run(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("generating transcript: %w", err)
	}

	processingTime := time.Since(start).Seconds()

	if err := transcript.Validate(output.Segments); err != nil {
		// the model is supposed to guarantee ordering; don't fail the
		// request over it
		log.Warn("model returned unordered segments", zap.Error(err))
	}

	result := transcript.New(xid.New().String(), output, duration)
	s.sessions.Put(result)

	if s.store != nil {
		err := s.store.CreateTranscription(ctx, store.Transcription{
			ID:             result.ID,
			Filename:       filename,
			Model:          result.Model,
			AudioDuration:  duration,
			ProcessingTime: processingTime,
			SegmentCount:   len(result.Segments),
			FullText:       result.Text,
		})
		if err != nil {
			log.Error("failed to record transcription", zap.Error(err))
		}
	}

	log.With(
		zap.String("transcript_id", result.ID),
		zap.String("model", result.Model),
		zap.Float64("audio_duration", duration),
		zap.Float64("processing_time", processingTime),
		zap.Int("segments", len(result.Segments)),
	).Info("transcription done")

	return &transcribeResponse{
		Transcript:     result,
		ProcessingTime: processingTime,
		Caption: s.renderMessage("result_caption", gin.H{
			"audio_duration":  duration,
			"processing_time": processingTime,
			"model":           result.Model,
		}),
		CSVURL: fmt.Sprintf("/api/transcripts/%s/csv", result.ID),
	}, nil
}

// renderMessage renders a template from the messages package, falling back
// to a generic string so a bad template never breaks a response.
func (s *Server) renderMessage(name string, data any) string {
	rendered, err := s.messages.ExecuteString(name, data)
	if err != nil {
		s.log.Error("failed to render message", zap.String("message", name), zap.Error(err))
		return "Unknown error occurred"
	}
	return rendered
}

func (s *Server) respondError(c *gin.Context, execErr ExecutionError) {
	status := execErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": execErr.Message})
}
