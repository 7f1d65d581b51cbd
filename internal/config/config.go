// Package config loads labelcheck configuration from the environment and an
// optional YAML config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM generation
	LLMProvider Provider
	LLMModel    string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int

	// Provider credentials / endpoints
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Rule corpus
	CorpusPath string
	Collection string
	IndexDir   string // holds the build lock file

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// FileConfig is the optional YAML config file shape. Values present in the
// file override environment defaults.
type FileConfig struct {
	CorpusPath string `yaml:"corpus_path"`
	Collection string `yaml:"collection"`
	LLM        struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`
	Embedding struct {
		Provider  string `yaml:"provider"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embedding"`
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "labelcheck"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "products"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider: Provider(getEnv("LABELCHECK_LLM_PROVIDER", "ollama")),
		LLMModel:    getEnv("LABELCHECK_LLM_MODEL", "llama3.2"),

		EmbedProvider:  Provider(getEnv("LABELCHECK_EMBED_PROVIDER", "ollama")),
		EmbedModel:     getEnv("LABELCHECK_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("LABELCHECK_EMBED_DIMENSION", 384),

		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		CorpusPath: getEnv("LABELCHECK_CORPUS", "rules/legal-metrology.txt"),
		Collection: getEnv("LABELCHECK_COLLECTION", "legal_metrology"),
		IndexDir:   getEnv("LABELCHECK_INDEX_DIR", ".labelcheck"),

		LogFile:  getEnv("LABELCHECK_LOG_FILE", "/tmp/labelcheck.log"),
		LogLevel: parseLogLevel(getEnv("LABELCHECK_LOG_LEVEL", "INFO")),
	}
}

// LoadWithFile reads the environment first, then applies overrides from the
// YAML file at path. A missing file is not an error; an unreadable or
// malformed file is.
func LoadWithFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if fc.CorpusPath != "" {
		cfg.CorpusPath = fc.CorpusPath
	}
	if fc.Collection != "" {
		cfg.Collection = fc.Collection
	}
	if fc.LLM.Provider != "" {
		cfg.LLMProvider = Provider(fc.LLM.Provider)
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.Embedding.Provider != "" {
		cfg.EmbedProvider = Provider(fc.Embedding.Provider)
	}
	if fc.Embedding.Model != "" {
		cfg.EmbedModel = fc.Embedding.Model
	}
	if fc.Embedding.Dimension != 0 {
		cfg.EmbedDimension = fc.Embedding.Dimension
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
