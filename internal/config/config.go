package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"LK_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"LK_DB_MAX_CONNS" default:"8"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`
	VisionModel   string `envconfig:"VISION_MODEL" default:"gpt-4o-mini"`

	TranslationProvider string `envconfig:"TRANSLATION_PROVIDER" default:"openai"`
	TranslationModel    string `envconfig:"TRANSLATION_MODEL" default:"gpt-4o-mini"`

	GenerationTimeout      time.Duration `envconfig:"GENERATION_TIMEOUT" default:"90s"`
	TranslationTimeout     time.Duration `envconfig:"TRANSLATION_TIMEOUT" default:"60s"`
	TranslationConcurrency int           `envconfig:"TRANSLATION_CONCURRENCY" default:"3"`

	PersistQueueSize int `envconfig:"PERSIST_QUEUE_SIZE" default:"64"`

	VerifyEnglishOutput bool   `envconfig:"VERIFY_ENGLISH_OUTPUT" default:"true"`
	CORSAllowedOrigins  string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("LK_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("LK_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("LK_DB_MIN_CONNS (%d) cannot exceed LK_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.GenerationTimeout < time.Second {
		return fmt.Errorf("GENERATION_TIMEOUT must be >= 1s")
	}
	if c.TranslationTimeout < time.Second {
		return fmt.Errorf("TRANSLATION_TIMEOUT must be >= 1s")
	}
	if c.TranslationConcurrency < 1 {
		return fmt.Errorf("TRANSLATION_CONCURRENCY must be >= 1")
	}
	if c.PersistQueueSize < 1 {
		return fmt.Errorf("PERSIST_QUEUE_SIZE must be >= 1")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
