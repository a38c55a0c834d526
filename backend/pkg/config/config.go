package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string // "" means the server default database

	// Optional services (probes report "unknown" when unset)
	RedisURL  string
	OllamaURL string

	// Vector indexes
	EmbeddingDimensions int
	SimilarityFunction  string

	// Reconstruction
	ReconstructionWorkers int
	QueryTimeout          time.Duration
	MaxRetries            int
	BatchSize             int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   getEnv("ENV", "development"),
		Neo4jURI:              getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:             getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:         getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:         getEnv("NEO4J_DATABASE", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		OllamaURL:             getEnv("OLLAMA_URL", ""),
		EmbeddingDimensions:   getEnvInt("EMBEDDING_DIMENSIONS", 1024),
		SimilarityFunction:    getEnv("SIMILARITY_FUNCTION", "cosine"),
		ReconstructionWorkers: getEnvInt("RECONSTRUCTION_WORKERS", 8),
		QueryTimeout:          getEnvDuration("QUERY_TIMEOUT", 15*time.Second),
		MaxRetries:            getEnvInt("MAX_RETRIES", 3),
		BatchSize:             getEnvInt("BATCH_SIZE", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.SimilarityFunction != "cosine" && c.SimilarityFunction != "euclidean" {
		return fmt.Errorf("SIMILARITY_FUNCTION must be cosine or euclidean, got %q", c.SimilarityFunction)
	}
	if c.ReconstructionWorkers < 1 {
		return fmt.Errorf("RECONSTRUCTION_WORKERS must be at least 1, got %d", c.ReconstructionWorkers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	// Redis and Ollama URLs are optional; the status probes degrade gracefully
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}
