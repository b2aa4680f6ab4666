package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SUP3RMASS1VE/parakeet-web/utils"
)

// app.py shipped with a LibriSpeech sample for trying the model out
const exampleAudioURL = "https://dldata-public.s3.us-east-2.amazonaws.com/2086-149220-0033.wav"
const maxExampleSize = 1024 * 1024 * 8

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"MaxDuration":    MaxDuration,
		"MaxUploadBytes": MaxInputFileSize,
	})
}

func (s *Server) handleGetTranscript(c *gin.Context) {
	t, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) handleTranscriptCSV(c *gin.Context) {
	t, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transcript.csv"))

	if err := t.WriteCSV(c.Writer); err != nil {
		s.log.Error("failed to write csv", zap.String("transcript_id", t.ID), zap.Error(err))
	}
}

var exampleOnce sync.Mutex

// handleExample serves a short known-good clip, downloading it on first
// use so the repo doesn't carry audio.
func (s *Server) handleExample(c *gin.Context) {
	path, err := s.ensureExampleAudio(c.Request.Context())
	if err != nil {
		s.log.Error("failed to fetch example audio", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": s.renderMessage("example_unavailable", gin.H{})})
		return
	}

	c.Header("Content-Type", "audio/wav")
	c.File(path)
}

func (s *Server) ensureExampleAudio(ctx context.Context) (string, error) {
	exampleOnce.Lock()
	defer exampleOnce.Unlock()

	if s.examplePath != "" {
		if _, err := os.Stat(s.examplePath); err == nil {
			return s.examplePath, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exampleAudioURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad http status: %s", resp.Status)
	}

	path := filepath.Join(os.TempDir(), "parakeet-web-example.wav")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("making example file: %w", err)
	}
	defer out.Close()

	if _, err := utils.CopyLimit(out, resp.Body, maxExampleSize); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing example file: %w", err)
	}

	s.examplePath = path
	return path, nil
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is not enabled"})
		return
	}

	recent, err := s.store.ListRecentTranscriptions(c.Request.Context(), 50)
	if err != nil {
		s.log.Error("failed to list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcriptions": recent})
}
