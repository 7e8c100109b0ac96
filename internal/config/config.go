package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	GenerationProvider string        `envconfig:"GENERATION_PROVIDER" default:"gemini"`
	GeminiAPIKey       string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel        string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel        string        `envconfig:"OPENAI_MODEL"`
	GenerateTimeout    time.Duration `envconfig:"GENERATE_TIMEOUT" default:"30s"`
	GenerateRetries    int           `envconfig:"GENERATE_RETRIES" default:"1"`

	NotionToken        string `envconfig:"NOTION_TOKEN"`
	NotionPageID       string `envconfig:"NOTION_PAGE_ID"`
	KnowledgeMaxDepth  int    `envconfig:"KNOWLEDGE_MAX_DEPTH" default:"8"`
	KnowledgeMaxBlocks int    `envconfig:"KNOWLEDGE_MAX_BLOCKS" default:"2000"`

	KnowledgeFetchTimeout time.Duration `envconfig:"KNOWLEDGE_FETCH_TIMEOUT" default:"1m"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
	TrustProxy     bool    `envconfig:"TRUST_PROXY" default:"false"`

	ProfilePath string `envconfig:"PROFILE_PATH"`
	AdminToken  string `envconfig:"ADMIN_TOKEN"`

	// Optional decision log
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DecisionRetention time.Duration `envconfig:"DECISION_RETENTION" default:"720h"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"roadmap-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ROADMAP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.GenerationProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.GenerationProvider)
	}

	return &cfg, nil
}

// HasGeneration reports whether the selected provider has a credential.
func (c *Config) HasGeneration() bool {
	if c.GenerationProvider == ProviderOpenAI {
		return c.OpenAIAPIKey != ""
	}
	return c.GeminiAPIKey != ""
}

func (c *Config) HasNotion() bool {
	return c.NotionToken != "" && c.NotionPageID != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
