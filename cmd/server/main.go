package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Satya7781/pdfintel/internal/api"
	"github.com/Satya7781/pdfintel/internal/collection"
	"github.com/Satya7781/pdfintel/internal/config"
	"github.com/Satya7781/pdfintel/internal/embed"
	"github.com/Satya7781/pdfintel/internal/jobs"
	"github.com/Satya7781/pdfintel/internal/ocr"
	"github.com/Satya7781/pdfintel/internal/outline"
	"github.com/Satya7781/pdfintel/internal/pipeline"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Embedding provider.
	stats := embed.NewStats(time.Hour)
	var embedder embed.Embedder
	switch cfg.EmbedProvider {
	case "gemini":
		g, err := embed.NewGemini(ctx, cfg.GeminiAPIKey, cfg.EmbedModel, cfg.EmbedDim, stats)
		if err != nil {
			log.Error("failed to create embedding client", "error", err)
			os.Exit(1)
		}
		embedder = g
	default:
		embedder = embed.NewHashing(cfg.EmbedDim)
	}
	defer embedder.Close()

	// OCR is optional enrichment.
	var recognizer pipeline.Recognizer
	if cfg.OCRURL != "" {
		ocrClient := ocr.NewClient(cfg.OCRURL, cfg.OCRAPIKey)
		defer ocrClient.Close()
		recognizer = ocrClient
	} else {
		log.Info("ocr disabled, image-only pages will stay empty")
	}

	outlineOpts := outline.DefaultOptions()
	outlineOpts.SizeRatio = cfg.HeadingSizeRatio
	outlineOpts.MaxLevels = cfg.MaxHeadingLevels

	pipe := pipeline.New(recognizer, log, outlineOpts)

	var refiner collection.Refiner
	if cfg.RefineProvider == "gemini" {
		g, err := collection.NewGeminiRefiner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Error("failed to create refinement client", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		refiner = g
	}

	analyzer := collection.NewAnalyzer(pipe, embedder, refiner, log, collection.Options{
		Workers:        cfg.WorkerCount,
		TopKPerDoc:     cfg.TopKPerDoc,
		MaxSubsections: cfg.MaxSubsections,
		DocTimeout:     cfg.DocTimeout,
	})

	orch := jobs.NewOrchestrator(analyzer, log, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL)
	orch.Start(ctx)

	srv := api.NewServer(pipe, orch, embedder, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting pdfintel", "port", cfg.Port, "embed_provider", cfg.EmbedProvider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
