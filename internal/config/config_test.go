package config

import "testing"

func validConfig() Config {
	return Config{
		Environment:      "local",
		LogLevel:         "info",
		DatabaseURL:      "postgres://localhost:5432/newsflow",
		DBMinConns:       1,
		DBMaxConns:       8,
		QdrantPort:       6334,
		QdrantCollection: "news_posts",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DatabaseURL = "   "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for blank DATABASE_URL")
	}
}

func TestValidateConnBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DBMinConns = 10
	cfg.DBMaxConns = 2
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when min conns exceed max conns")
	}

	cfg = validConfig()
	cfg.DBMaxConns = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero max conns")
	}
}

func TestValidateQdrantSettings(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.QdrantCollection = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for blank collection")
	}

	cfg = validConfig()
	cfg.QdrantPort = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/newsflow")
	t.Setenv("QDRANT_COLLECTION", "custom_collection")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QdrantCollection != "custom_collection" {
		t.Fatalf("unexpected collection: %q", cfg.QdrantCollection)
	}
	if cfg.NewsAPIBaseURL == "" || cfg.EmbedEndpoint == "" {
		t.Fatalf("expected defaults for provider and embed endpoints")
	}
}

func TestCORSAllowedOriginsList(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CORSAllowedOrigins = "https://a.example.com, https://b.example.com,,https://a.example.com"
	origins := cfg.CORSAllowedOriginsList()
	if len(origins) != 2 {
		t.Fatalf("expected deduplicated origins, got %v", origins)
	}
}
