// Package server is the browser-facing surface: a single embedded page for
// uploading or recording audio, and a small JSON API that runs the clip
// through the ASR backend and hands back the transcript, segment table,
// and CSV export.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/SUP3RMASS1VE/parakeet-web/asr"
	"github.com/SUP3RMASS1VE/parakeet-web/media"
	"github.com/SUP3RMASS1VE/parakeet-web/messages"
	"github.com/SUP3RMASS1VE/parakeet-web/store"
	"github.com/SUP3RMASS1VE/parakeet-web/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// max upload size in bytes
const MaxInputFileSize = 1024 * 1024 * 32

// the hard limit for the number of seconds audio can be before it's not transcribed
const MaxDuration = 600

// how many finished transcripts stay downloadable per process
const SessionCacheSize = 16

//go:embed templates/*
var templatesFS embed.FS

type ExecutionError struct {
	// User-facing string, already rendered
	Message string
	Status  int
	Err     error
}

func (err ExecutionError) Error() string {
	if err.Err == nil {
		return err.Message
	}
	return err.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// audioProcessor is what the transcription flow needs from the media
// package.
type audioProcessor interface {
	FFprobeDurationFromFile(ctx context.Context, filePath string) (float64, error)
	FFmpegResampleToWAV(ctx context.Context, filePath string) (string, error)
}

type Server struct {
	log *zap.Logger

	engine *gin.Engine
	addr   string

	asrAPI   asr.SpeechRecognitionAPI
	store    *store.Store
	messages *messages.MessageProvider

	ffmpeg audioProcessor
	http   *http.Client

	sessions *sessionCache

	examplePath string
}

type ServerOptions struct {
	ParentLogger *zap.Logger
	ASR          asr.SpeechRecognitionAPI
	Messages     *messages.MessageProvider
	// nil disables history
	Store *store.Store

	Addr string
}

type ServerExtraOptions func(*Server)

func WithFFmpeg(ffmpeg *media.FFmpeg) ServerExtraOptions {
	return func(s *Server) {
		s.ffmpeg = ffmpeg
	}
}

func WithHTTPClient(client *http.Client) ServerExtraOptions {
	return func(s *Server) {
		s.http = client
	}
}

func NewServer(ctx context.Context, options ServerOptions, extraOptions ...ServerExtraOptions) (*Server, error) {
	s := &Server{
		log:  options.ParentLogger.Named("server"),
		addr: options.Addr,

		asrAPI:   options.ASR,
		store:    options.Store,
		messages: options.Messages,

		ffmpeg: media.NewFFmpeg(),
		http:   http.DefaultClient,

		sessions: newSessionCache(SessionCacheSize),
	}
	for _, option := range extraOptions {
		option(s)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(s.requestLogMiddleware(), gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.handleIndex)
	engine.POST("/api/transcribe", s.handleTranscribe)
	engine.GET("/api/transcripts/:id", s.handleGetTranscript)
	engine.GET("/api/transcripts/:id/csv", s.handleTranscriptCSV)
	engine.GET("/api/example", s.handleExample)
	engine.GET("/api/history", s.handleHistory)
	engine.GET("/healthz", s.handleHealthz)

	s.engine = engine

	return s, nil
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer utils.PanicRecovery(s.log)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	s.log.With(zap.String("addr", s.addr)).Info("listening")

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		).Debug("request")
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
