// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/logger"
)

// Config is the full application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Index     IndexConfig     `yaml:"index"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Session   SessionConfig   `yaml:"session"`
	Log       logger.Config   `yaml:"log"`
}

type AppConfig struct {
	Port         string        `yaml:"port"`
	Environment  string        `yaml:"environment"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

type IndexConfig struct {
	Directory  string `yaml:"directory"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
}

type CorpusConfig struct {
	Directory    string `yaml:"directory"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

type EmbeddingConfig struct {
	Provider      string        `yaml:"provider"` // ollama, openai, onnx or mock
	Model         string        `yaml:"model"`
	OllamaBaseURL string        `yaml:"ollama_base_url"`
	OpenAIKey     string        `yaml:"-"`
	RPS           float64       `yaml:"rps"`
	Timeout       time.Duration `yaml:"timeout"`
	CacheSize     int           `yaml:"cache_size"`

	ONNXModelPath     string `yaml:"onnx_model_path"`
	ONNXTokenizerPath string `yaml:"onnx_tokenizer_path"`
	ONNXLibraryPath   string `yaml:"onnx_library_path"`
}

type LLMConfig struct {
	APIKey      string        `yaml:"-"`
	Model       string        `yaml:"model"`
	MaxTokens   int64         `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	RPS         float64       `yaml:"rps"`
	BaseURL     string        `yaml:"base_url"`
}

type SessionConfig struct {
	// TTL expires idle sessions. Zero keeps them for the process lifetime.
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:        "8080",
			Environment: "development",
		},
		Index: IndexConfig{
			Directory:  "./chroma_db",
			Collection: "icl-docs",
			TopK:       3,
		},
		Corpus: CorpusConfig{
			Directory:    "./Data",
			ChunkSize:    200,
			ChunkOverlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:      "ollama",
			Model:         "nomic-embed-text",
			OllamaBaseURL: "http://localhost:11434/api",
			RPS:           10,
			Timeout:       30 * time.Second,
			CacheSize:     1000,
		},
		LLM: LLMConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   500,
			Temperature: 0.1,
			Timeout:     60 * time.Second,
			MaxRetries:  2,
			RPS:         2,
		},
		Log: logger.Config{Level: "info"},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	if c.Index.TopK <= 0 {
		return fmt.Errorf("index top_k must be positive, got %d", c.Index.TopK)
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("index collection name is required")
	}
	if c.Corpus.ChunkSize <= 0 {
		return fmt.Errorf("corpus chunk_size must be positive, got %d", c.Corpus.ChunkSize)
	}
	switch c.Embedding.Provider {
	case "ollama", "openai", "onnx", "mock":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.App.Port = getEnv("PORT", cfg.App.Port)
	cfg.App.Environment = getEnv("GO_ENV", cfg.App.Environment)
	cfg.App.QueryTimeout = getEnvAsDuration("QUERY_TIMEOUT", cfg.App.QueryTimeout)

	cfg.Index.Directory = getEnv("INDEX_DIR", cfg.Index.Directory)
	cfg.Index.Collection = getEnv("INDEX_COLLECTION", cfg.Index.Collection)
	cfg.Index.TopK = getEnvAsInt("INDEX_TOP_K", cfg.Index.TopK)

	cfg.Corpus.Directory = getEnv("CORPUS_DIR", cfg.Corpus.Directory)
	cfg.Corpus.ChunkSize = getEnvAsInt("CHUNK_SIZE", cfg.Corpus.ChunkSize)
	cfg.Corpus.ChunkOverlap = getEnvAsInt("CHUNK_OVERLAP", cfg.Corpus.ChunkOverlap)

	cfg.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Model = getEnv("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", cfg.Embedding.OllamaBaseURL)
	cfg.Embedding.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.Embedding.OpenAIKey)
	cfg.Embedding.RPS = getEnvAsFloat("EMBEDDING_RPS", cfg.Embedding.RPS)
	cfg.Embedding.Timeout = getEnvAsDuration("EMBEDDING_TIMEOUT", cfg.Embedding.Timeout)
	cfg.Embedding.CacheSize = getEnvAsInt("EMBEDDING_CACHE_SIZE", cfg.Embedding.CacheSize)
	cfg.Embedding.ONNXModelPath = getEnv("ONNX_MODEL_PATH", cfg.Embedding.ONNXModelPath)
	cfg.Embedding.ONNXTokenizerPath = getEnv("ONNX_TOKENIZER_PATH", cfg.Embedding.ONNXTokenizerPath)
	cfg.Embedding.ONNXLibraryPath = getEnv("ONNX_LIBRARY_PATH", cfg.Embedding.ONNXLibraryPath)

	cfg.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.MaxTokens = int64(getEnvAsInt("LLM_MAX_TOKENS", int(cfg.LLM.MaxTokens)))
	cfg.LLM.Temperature = getEnvAsFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.MaxRetries = getEnvAsInt("LLM_MAX_RETRIES", cfg.LLM.MaxRetries)
	cfg.LLM.RPS = getEnvAsFloat("LLM_RPS", cfg.LLM.RPS)
	cfg.LLM.BaseURL = getEnv("ANTHROPIC_BASE_URL", cfg.LLM.BaseURL)

	cfg.Session.TTL = getEnvAsDuration("SESSION_TTL", cfg.Session.TTL)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Production = cfg.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
