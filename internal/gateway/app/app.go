// Package app assembles the gateway: configuration, the model registry,
// the interpretation chain, stores, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"vizify/internal/entity"
	"vizify/internal/gateway/config"
	"vizify/internal/gateway/handler"
	"vizify/internal/gateway/server"
	"vizify/internal/history"
	"vizify/internal/imagegen"
	"vizify/internal/imagestore"
	"vizify/internal/interpret"
	"vizify/internal/llm"
	"vizify/internal/normalize"
)

type App struct {
	server  *server.Server
	records history.Store
}

func New() (*App, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Model clients. Every client the registry hands out respects the
	// global rate limit and is cut off at the configured deadline. Each
	// generation call goes upstream exactly once.
	catalog := llm.NewCatalog()
	clients := llm.NewRegistry(catalog, llm.RegistryOptions{
		ForceLocal: cfg.ForceLocalLLM,
		LocalModel: cfg.LocalLLMModel,
		Middleware: []llm.Middleware{
			llm.RateLimitFromEnv(),
			llm.Timeout(cfg.LLMTimeout),
		},
	})

	wiki := entity.NewWikipedia(entity.Options{
		Timeout:   cfg.WikiTimeout,
		MediaScan: cfg.WikiMediaScan,
	})
	normalizer := normalize.New(entity.NewCached(wiki, 0, 0))

	// Image generation is optional: without an API key the branch is
	// skipped, and without an S3 store specs keep data URLs.
	var images imagegen.Generator
	imgOpts := imagegen.Options{Timeout: cfg.ImageTimeout}
	if store, err := imagestore.FromEnv(); err != nil {
		log.Printf("[app] image mirror disabled: %v", err)
	} else if store != nil {
		imgOpts.Store = store
	}
	if gen, err := imagegen.NewOpenAI("", imgOpts); err != nil {
		log.Printf("[app] image generation disabled: %v", err)
	} else {
		images = gen
	}

	flags := interpret.Flags{
		ImageFirst:   cfg.ImageFirst,
		DisableRules: cfg.DisableRules,
		RequireAI:    cfg.RequireAI,
	}
	interp := interpret.New(interpret.Config{
		Clients:    clients,
		Catalog:    catalog,
		Normalizer: normalizer,
		Images:     images,
		Flags:      flags,
	})

	records := history.NewFromEnv()

	var transcriber llm.Transcriber
	if cli, err := llm.NewOpenAIClient("", "", llm.OpenAIOptions{}); err == nil {
		transcriber = cli
	} else {
		log.Printf("[app] voice transcription disabled: %v", err)
	}

	h := handler.New(handler.Options{
		Interpreter: interp,
		Catalog:     catalog,
		History:     records,
		Transcriber: transcriber,
		Flags:       flags,
		Health:      healthInfo(cfg, catalog, images != nil),
	})

	mux := server.NewMux(h, cfg.CORSOrigins)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:  srv,
		records: records,
	}, nil
}

func healthInfo(cfg *config.Config, catalog *llm.Catalog, imageReady bool) handler.HealthInfo {
	return handler.HealthInfo{
		LLMReady: cfg.ForceLocalLLM ||
			os.Getenv("OPENAI_API_KEY") != "" ||
			os.Getenv("GEMINI_API_KEY") != "" ||
			os.Getenv("GOOGLE_API_KEY") != "",
		ImageReady: imageReady,
		Model:      catalog.Resolve("").Model,
		ImageModel: firstNonEmpty(os.Getenv("OPENAI_IMAGE_MODEL"), "gpt-image-1"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.records != nil {
		if cerr := a.records.Close(); cerr != nil {
			log.Printf("[app] close history store: %v", cerr)
		}
	}
	return err
}
