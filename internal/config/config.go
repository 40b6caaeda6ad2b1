package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Budgets are the token ceilings the relevance engine works under. They are
// constructed once at startup and passed into every pipeline entry point;
// nothing inside the engine reads the environment.
type Budgets struct {
	// DocumentTokens caps the relevant text selected from a document
	// before chunking.
	DocumentTokens int
	// ChunkTokens caps each individual chunk sent to the model.
	ChunkTokens int
	// OverlapTokens is the approximate overlap between consecutive chunks.
	OverlapTokens int
	// AnswerTokens sizes the question-answering snippet on the first pass.
	AnswerTokens int
	// EscalationTokens sizes the larger snippet used when the first answer
	// comes back low-confidence.
	EscalationTokens int
	// MaxOutputTokens caps completion output per call.
	MaxOutputTokens int
}

type Config struct {
	Port string

	// Service auth
	APIKey string

	// Anthropic completion
	AnthropicAPIKey string
	AnthropicModel  string

	// Simulation runs the whole pipeline without any external calls:
	// heuristic token counting and canned completions.
	Simulation bool

	// Tokenizer selects the token counting adapter: "heuristic",
	// "encoder" (local tiktoken), or "remote".
	Tokenizer string

	// Worker pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentCalls  int
	MaxConcurrentCounts int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	Budgets Budgets
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCSIEVE_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		Simulation: envBool("SIMULATION", false),
		Tokenizer:  envOr("TOKENIZER", "heuristic"),

		WorkerCount:         envInt("WORKER_COUNT", 4),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentCalls:  envInt("MAX_CONCURRENT_CALLS", 5),
		MaxConcurrentCounts: envInt("MAX_CONCURRENT_COUNTS", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Budgets: Budgets{
			DocumentTokens:   envInt("DOC_TOKEN_BUDGET", 6000),
			ChunkTokens:      envInt("CHUNK_TOKENS", 1500),
			OverlapTokens:    envInt("OVERLAP_TOKENS", 150),
			AnswerTokens:     envInt("ANSWER_TOKENS", 1200),
			EscalationTokens: envInt("ESCALATION_TOKENS", 3500),
			MaxOutputTokens:  envInt("MAX_OUTPUT_TOKENS", 1024),
		},
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = 5
	}
	if cfg.MaxConcurrentCounts <= 0 {
		cfg.MaxConcurrentCounts = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.Budgets.DocumentTokens <= 0 {
		cfg.Budgets.DocumentTokens = 6000
	}
	if cfg.Budgets.ChunkTokens <= 0 {
		cfg.Budgets.ChunkTokens = 1500
	}
	if cfg.Budgets.OverlapTokens < 0 {
		cfg.Budgets.OverlapTokens = 150
	}
	if cfg.Budgets.AnswerTokens <= 0 {
		cfg.Budgets.AnswerTokens = 1200
	}
	if cfg.Budgets.EscalationTokens <= 0 {
		cfg.Budgets.EscalationTokens = 3500
	}
	if cfg.Budgets.MaxOutputTokens <= 0 {
		cfg.Budgets.MaxOutputTokens = 1024
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCSIEVE_API_KEY is required")
	}
	if !c.Simulation && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required unless SIMULATION=true")
	}
	switch c.Tokenizer {
	case "heuristic", "encoder", "remote":
	default:
		return fmt.Errorf("TOKENIZER must be heuristic, encoder, or remote, got %q", c.Tokenizer)
	}
	if c.Tokenizer == "remote" && !c.Simulation && c.AnthropicAPIKey == "" {
		return fmt.Errorf("TOKENIZER=remote requires ANTHROPIC_API_KEY")
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
