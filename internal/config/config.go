package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	ServiceAPIKey string

	// Embedding
	EmbedProvider string // "hash" or "gemini"
	GeminiAPIKey  string
	EmbedModel    string
	EmbedDim      int

	// Refinement
	RefineProvider string // "excerpt" or "gemini"
	GeminiModel    string

	// OCR service (optional; empty URL disables the fallback)
	OCRURL    string
	OCRAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Per-document processing budget
	DocTimeout time.Duration

	// Outline tuning
	HeadingSizeRatio float64
	MaxHeadingLevels int

	// Collection ranking
	TopKPerDoc     int
	MaxSubsections int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ServiceAPIKey: os.Getenv("PDFINTEL_API_KEY"),

		EmbedProvider: envOr("EMBED_PROVIDER", "hash"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		EmbedModel:    envOr("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:      envInt("EMBED_DIM", 256),

		RefineProvider: envOr("REFINE_PROVIDER", "excerpt"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-1.5-flash"),

		OCRURL:    os.Getenv("OCR_URL"),
		OCRAPIKey: os.Getenv("OCR_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DocTimeout: envDuration("DOC_TIMEOUT", 2*time.Minute),

		HeadingSizeRatio: envFloat("HEADING_SIZE_RATIO", 1.15),
		MaxHeadingLevels: envInt("MAX_HEADING_LEVELS", 4),

		TopKPerDoc:     envInt("TOP_K_PER_DOC", 5),
		MaxSubsections: envInt("MAX_SUBSECTIONS", 5),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.EmbedDim <= 0 {
		cfg.EmbedDim = 256
	}
	if cfg.DocTimeout <= 0 {
		cfg.DocTimeout = 2 * time.Minute
	}
	if cfg.HeadingSizeRatio <= 1.0 {
		cfg.HeadingSizeRatio = 1.15
	}
	if cfg.MaxHeadingLevels <= 0 {
		cfg.MaxHeadingLevels = 4
	}
	if cfg.TopKPerDoc <= 0 {
		cfg.TopKPerDoc = 5
	}
	if cfg.MaxSubsections <= 0 {
		cfg.MaxSubsections = 5
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("PDFINTEL_API_KEY is required")
	}
	switch c.EmbedProvider {
	case "hash":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when EMBED_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q (want hash or gemini)", c.EmbedProvider)
	}
	switch c.RefineProvider {
	case "excerpt":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when REFINE_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown REFINE_PROVIDER %q (want excerpt or gemini)", c.RefineProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
