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

	// Groq chat completions
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// Embeddings (OpenAI-compatible endpoint)
	EmbedBaseURL string
	EmbedAPIKey  string
	EmbedModel   string
	EmbedDim     int

	// Qdrant
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Metric store
	MetricDBPath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int

	// Section detection
	HeaderWindow int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ServiceAPIKey: os.Getenv("IPOAGENT_API_KEY"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqModel:   envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL: envOr("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),

		EmbedBaseURL: envOr("EMBED_BASE_URL", "https://api.openai.com/v1"),
		EmbedAPIKey:  os.Getenv("EMBED_API_KEY"),
		EmbedModel:   envOr("EMBED_MODEL", "text-embedding-3-small"),
		EmbedDim:     envInt("EMBED_DIM", 1536),

		QdrantURL:        envOr("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: envOr("QDRANT_COLLECTION", "ipo_chunks"),

		MetricDBPath: envOr("METRIC_DB_PATH", "data/financials.db"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB, prospectuses are big

		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),

		HeaderWindow: envInt("HEADER_WINDOW", 1000),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 100
	}
	if cfg.HeaderWindow <= 0 {
		cfg.HeaderWindow = 1000
	}
	if cfg.EmbedDim <= 0 {
		cfg.EmbedDim = 1536
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("IPOAGENT_API_KEY is required")
	}
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.EmbedAPIKey == "" {
		return fmt.Errorf("EMBED_API_KEY is required")
	}
	if c.QdrantURL == "" {
		return fmt.Errorf("QDRANT_URL is required")
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
