// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	Sessions  SessionConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
}

// SessionConfig controls the in-memory session registry.
type SessionConfig struct {
	MaxSessions   int
	Timeout       time.Duration
	MaxTurns      int
	SweepInterval time.Duration
}

// LLMConfig holds settings for the Groq chat-completions client.
type LLMConfig struct {
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// RetrievalConfig controls knowledge base chunking and retrieval.
type RetrievalConfig struct {
	KnowledgePath string // empty = use the embedded knowledge base
	TopK          int
	ChunkSize     int
	ChunkOverlap  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/autostream.db"),
		Sessions: SessionConfig{
			MaxSessions:   getEnvInt("MAX_SESSIONS", 100),
			Timeout:       time.Duration(getEnvInt("SESSION_TIMEOUT_SECONDS", 3600)) * time.Second,
			MaxTurns:      getEnvInt("MAX_CONVERSATION_TURNS", 6),
			SweepInterval: time.Duration(getEnvInt("SESSION_SWEEP_SECONDS", 300)) * time.Second,
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			APIBase:     getEnv("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
			Model:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.4),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
		},
		Retrieval: RetrievalConfig{
			KnowledgePath: getEnv("KNOWLEDGE_BASE_PATH", ""),
			TopK:          getEnvInt("RAG_TOP_K", 3),
			ChunkSize:     getEnvInt("RAG_CHUNK_SIZE", 500),
			ChunkOverlap:  getEnvInt("RAG_CHUNK_OVERLAP", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be > 0")
	}
	if c.Sessions.Timeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT_SECONDS must be > 0")
	}
	if c.Sessions.MaxTurns <= 0 {
		return fmt.Errorf("MAX_CONVERSATION_TURNS must be > 0")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be > 0")
	}
	if c.Retrieval.ChunkSize <= 0 {
		return fmt.Errorf("RAG_CHUNK_SIZE must be > 0")
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("RAG_CHUNK_OVERLAP must be >= 0 and < RAG_CHUNK_SIZE")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
