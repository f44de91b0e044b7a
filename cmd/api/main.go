package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"copysmith/internal/config"
	"copysmith/internal/llm"
	"copysmith/internal/llmclient"
	"copysmith/internal/pipeline"
	"copysmith/internal/server"
	"copysmith/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	client, err := newProviderClient(cfg, log)
	if err != nil {
		log.Fatal("provider client init failed", zap.Error(err))
	}
	defer func() { _ = client.Close() }()

	sink := telemetry.New(cfg.Telemetry, telemetry.WithLogger(log))
	if !sink.Enabled() {
		log.Info("telemetry disabled: endpoint or token not configured")
	}

	pipe := pipeline.New(client, sink, log, cfg.Scoring)
	pipe.ProviderTimeout = cfg.Provider.Timeout

	mux := http.NewServeMux()
	registerRoutes(mux, pipe, log)

	srv := server.New(cfg.Port, mux, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var log *zap.Logger
	var err error
	if env == "local" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

func newProviderClient(cfg *config.Config, log *zap.Logger) (llm.Client, error) {
	var base llm.Client
	switch cfg.Provider.Kind {
	case "gemini":
		cli, err := llmclient.NewGeminiClient(context.Background(), cfg.Provider.GeminiModel)
		if err != nil {
			return nil, err
		}
		base = cli
	case "openai":
		base = llmclient.NewOpenAIClient(cfg.Provider.OpenAIAPIKey, cfg.Provider.OpenAIModel, cfg.Provider.OpenAIBaseURL)
	default:
		base = llm.NewFakeClient()
	}
	return llm.Wrap(base,
		llm.Retry(3, 300*time.Millisecond),
		llm.WithLogging(log),
		llm.WithHooks(),
	), nil
}
