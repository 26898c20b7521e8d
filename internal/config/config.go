package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI             string
	DBName               string
	RedisURL             string
	RedisPassword        string
	RedisDB              int
	JWTSecret            string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string
	GeminiTier           string
	Neo4jURI             string
	Neo4jUser            string
	Neo4jPassword        string
	Port                 string
	GinMode              string
	CORSOrigins          []string
	ChunkSize            int
	ChunkOverlap         int
	SimilarityTopK       int
	GraphEdgeLimit       int
	ReminderOffsets      []int
	EnrichmentTimeout    time.Duration
	RateLimitReqs        int
	RateLimitWindow      int
	OTLPEndpoint         string
	ReminderScanEvery    time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:             getEnv("MONGO_URI", ""),
		DBName:               getEnv("DB_NAME", "safebill"),
		RedisURL:             getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiTier:           getEnv("GEMINI_TIER", "free"),
		Neo4jURI:             getEnv("GRAPH_DB_URI", ""),
		Neo4jUser:            getEnv("GRAPH_DB_USER", ""),
		Neo4jPassword:        getEnv("GRAPH_DB_PASSWORD", ""),
		Port:                 getEnv("PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		CORSOrigins:          strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		ChunkSize:            getEnvInt("CHUNK_SIZE_WORDS", 900),
		ChunkOverlap:         getEnvInt("CHUNK_OVERLAP_WORDS", 80),
		SimilarityTopK:       getEnvInt("SIMILARITY_TOP_K", 3),
		GraphEdgeLimit:       getEnvInt("GRAPH_EDGE_LIMIT", 10),
		ReminderOffsets:      getEnvIntList("DEFAULT_REMINDER_OFFSETS", []int{30, 7, 3, 1}),
		EnrichmentTimeout:    time.Duration(getEnvInt("ENRICHMENT_TIMEOUT_SECONDS", 10)) * time.Second,
		RateLimitReqs:        getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:      getEnvInt("RATE_LIMIT_WINDOW", 60),
		OTLPEndpoint:         getEnv("OTLP_ENDPOINT", ""),
		ReminderScanEvery:    time.Duration(getEnvInt("REMINDER_SCAN_MINUTES", 15)) * time.Minute,
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP_WORDS must be smaller than CHUNK_SIZE_WORDS")
	}

	return cfg, nil
}

// GraphConfigured reports whether the optional graph backend is wired up.
func (c *Config) GraphConfigured() bool {
	return c.Neo4jURI != "" && c.Neo4jUser != "" && c.Neo4jPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
