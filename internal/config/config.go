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
	DBMinConns  int32  `envconfig:"NF_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"NF_DB_MAX_CONNS" default:"8"`

	NewsAPIKey     string        `envconfig:"NEWS_API_KEY" default:""`
	NewsAPIBaseURL string        `envconfig:"NEWS_API_BASE_URL" default:"https://newsdata.io/api/1/latest"`
	NewsAPITimeout time.Duration `envconfig:"NEWS_API_TIMEOUT" default:"30s"`

	EmbedEndpoint       string        `envconfig:"EMBED_ENDPOINT" default:"http://127.0.0.1:8844/embed"`
	EmbedRequestTimeout time.Duration `envconfig:"EMBED_REQUEST_TIMEOUT" default:"45s"`

	QdrantHost       string `envconfig:"QDRANT_HOST" default:"127.0.0.1"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY" default:""`
	QdrantUseTLS     bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"news_posts"`

	MediaProcessorURL     string        `envconfig:"MEDIA_PROCESSOR_URL" default:"http://127.0.0.1:8851/process"`
	MediaProcessorTimeout time.Duration `envconfig:"MEDIA_PROCESSOR_TIMEOUT" default:"60s"`
	ImageProbeTimeout     time.Duration `envconfig:"IMAGE_PROBE_TIMEOUT" default:"5s"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
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
		return fmt.Errorf("NF_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("NF_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("NF_DB_MIN_CONNS (%d) cannot exceed NF_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.QdrantCollection) == "" {
		return fmt.Errorf("QDRANT_COLLECTION is required")
	}
	if c.QdrantPort <= 0 || c.QdrantPort > 65535 {
		return fmt.Errorf("QDRANT_PORT must be between 1 and 65535")
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
