package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mediajudge/pkg/config"
	"mediajudge/pkg/fetch"
	"mediajudge/pkg/frames"
	"mediajudge/pkg/judge"
	"mediajudge/pkg/pipeline"
	"mediajudge/pkg/server"
)

func main() {
	// Load config.yml for sampling tunables
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}
	if env.SaveDebugFrames != nil {
		cfg.Sampling.SaveDebugFrames = *env.SaveDebugFrames
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Credential check happens here, not on first request
	judgeClient, err := judge.NewClient(env.APIKey, env.JudgeBaseURL, env.JudgeModel, logger)
	if err != nil {
		logger.Fatal("failed to construct judge client", zap.Error(err))
	}

	fetcher := fetch.NewFetcher(
		time.Duration(cfg.Acquire.TimeoutSeconds)*time.Second,
		fetch.RetryPolicy{
			Attempts: cfg.Acquire.RetryAttempts,
			Wait:     time.Duration(cfg.Acquire.RetryWaitSeconds) * time.Second,
		},
		logger,
	)

	sampler := frames.NewSampler(frames.NewFFmpegReader(), frames.Options{
		MaxFrames:        cfg.Sampling.MaxFrames,
		SamplingFPS:      cfg.Sampling.SamplingFPS,
		TargetShortSide:  cfg.Sampling.TargetShortSide,
		MaxLongSide:      cfg.Sampling.MaxLongSide,
		JPEGQuality:      cfg.Sampling.JPEGQuality,
		DebugJPEGQuality: cfg.Sampling.DebugJPEGQuality,
		SaveDebugFrames:  cfg.Sampling.SaveDebugFrames,
		DebugFrameDir:    cfg.Sampling.DebugFrameDir,
	}, logger)

	workers := cfg.Sampling.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	p := pipeline.New(fetcher, sampler, judgeClient, pipeline.Prompts{
		System: cfg.Prompts.System,
		User:   cfg.Prompts.User,
	}, workers, logger)

	srv := &http.Server{
		Addr:    env.ListenAddr,
		Handler: server.NewRouter(p, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("media evaluation service listening",
			zap.String("addr", env.ListenAddr),
			zap.String("model", env.JudgeModel),
			zap.Int("sampling_workers", workers),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
