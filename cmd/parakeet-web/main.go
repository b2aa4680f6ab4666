package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SUP3RMASS1VE/parakeet-web/asr"
	"github.com/SUP3RMASS1VE/parakeet-web/asr/nemo"
	"github.com/SUP3RMASS1VE/parakeet-web/asr/openaicompat"
	"github.com/SUP3RMASS1VE/parakeet-web/messages"
	"github.com/SUP3RMASS1VE/parakeet-web/server"
	"github.com/SUP3RMASS1VE/parakeet-web/store"
	"github.com/caarlos0/env/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var CommitHash = ""

type config struct {
	Addr string `env:"ADDR" envDefault:"127.0.0.1:7860"`

	// optional; enables transcription history
	PostgresDSN string `env:"POSTGRES_DSN"`

	// nemo or openai
	ASRBackend string `env:"ASR_BACKEND" envDefault:"nemo"`

	NemoOptions   nemo.NemoClientOptions           `envPrefix:"ASR_NEMO_"`
	OpenAIOptions openaicompat.OpenAIClientOptions `envPrefix:"ASR_OPENAI_"`
}

const environmentPrefix = "PARAKEET_"
const logLevelEnvKey = environmentPrefix + "LOG_LEVEL"

// probing the nemo backend may download the model from the hub
const probeTimeout = time.Minute * 15

func createLog() *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = ""

	logLevelValue := os.Getenv(logLevelEnvKey)
	logLevel, logLevelErr := zapcore.ParseLevel(logLevelValue)

	if logLevelErr != nil {
		logLevel = zapcore.InfoLevel
	}

	rawLog := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		logLevel,
	)).Named("parakeet_web")

	if CommitHash != "" {
		rawLog = rawLog.With(zap.String("commit", CommitHash))
	}

	if logLevelErr != nil && logLevelValue != "" {
		rawLog.With(zap.String(logLevelEnvKey, logLevelValue)).Warn("unable to parse log level, using INFO")
	}

	return rawLog
}

func createASRClient(cfg config) (asr.SpeechRecognitionAPI, error) {
	switch cfg.ASRBackend {
	case "nemo":
		return nemo.NewNemoClient(cfg.NemoOptions), nil
	case "openai":
		return openaicompat.NewOpenAIClient(cfg.OpenAIOptions), nil
	default:
		return nil, fmt.Errorf("unknown asr backend %q", cfg.ASRBackend)
	}
}

func main() {
	parentLogger := createLog()
	defer parentLogger.Sync()

	log := parentLogger.Named("main")
	log.With(zap.String("min_log_level", parentLogger.Level().String())).Info("starting")

	cfg := config{}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: environmentPrefix,
	}); err != nil {
		log.Fatal("failed to parse config", zap.Error(err))
	}

	var s *store.Store
	if cfg.PostgresDSN != "" {
		s = store.NewStore(context.Background(), parentLogger)
		if err := s.Connect(context.Background(), cfg.PostgresDSN); err != nil {
			log.Fatal("failed to connect store", zap.Error(err))
		}
		defer s.Close()
	} else {
		log.Info("no postgres dsn configured, history disabled")
	}

	messageProvider, err := messages.NewMessageProvider()
	if err != nil {
		log.Fatal("failed to create message provider", zap.Error(err))
	}

	asrClient, err := createASRClient(cfg)
	if err != nil {
		log.Fatal("failed to create asr client", zap.Error(err))
	}

	probeCtx, probeCancel := context.WithTimeout(context.Background(), probeTimeout)
	log.With(zap.String("backend", cfg.ASRBackend)).Info("probing asr backend")
	if err := asrClient.Probe(probeCtx); err != nil {
		probeCancel()
		log.Fatal("asr backend unavailable", zap.Error(err))
	}
	probeCancel()
	log.Info("asr backend ready")

	srv, err := server.NewServer(context.Background(), server.ServerOptions{
		ParentLogger: parentLogger,
		ASR:          asrClient,
		Messages:     messageProvider,
		Store:        s,
		Addr:         cfg.Addr,
	})
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := errgroup.Group{}

	// HTTP server
	g.Go(func() error {
		defer cancel()

		return srv.Run(ctx)
	})

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdownSignal:
		cancel()
		log.Info("received signal, shutting down")
	case <-ctx.Done():
		log.Info("context done, shutting down")
	}

	err = g.Wait()
	if err != nil {
		log.Fatal("error group error", zap.Error(err))
	}
}
