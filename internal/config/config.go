package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Optional Postgres with pgvector. Without it the semantic index tier is
	// disabled and retrieval runs on the deterministic scorer.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Optional Redis for durable session context and history.
	RedisURL string `envconfig:"REDIS_URL"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`

	// Alternate OpenAI-compatible provider (Groq, Together, ...).
	AltBaseURL string `envconfig:"ALT_BASE_URL"`
	AltAPIKey  string `envconfig:"ALT_API_KEY"`
	AltModel   string `envconfig:"ALT_MODEL" default:"llama-3.1-8b-instant"`

	OllamaEnabled bool   `envconfig:"OLLAMA_ENABLED" default:"false"`
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"llama3.2"`

	HFEnabled bool   `envconfig:"HF_ENABLED" default:"true"`
	HFAPIKey  string `envconfig:"HF_API_KEY"`

	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxURLs      int           `envconfig:"MAX_URLS" default:"10"`
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// CORS origins for browser clients. Empty means allow all.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAGETALK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasPostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAnthropic() bool {
	return c.AnthropicAPIKey != ""
}

func (c *Config) HasAltProvider() bool {
	return c.AltBaseURL != "" && c.AltAPIKey != ""
}

// HasHostedProvider reports whether any paid chat provider is configured.
// Local and free strategies only run when this is false, matching the
// configured-providers-take-priority ordering.
func (c *Config) HasHostedProvider() bool {
	return c.HasOpenAI() || c.HasAnthropic() || c.HasAltProvider()
}
