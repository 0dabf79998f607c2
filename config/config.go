// Package config loads scholia's settings from defaults, an optional TOML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/scholia/ai"
)

// Config is the complete application configuration.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Server     ServerConfig     `toml:"server"`
	AI         AIConfig         `toml:"ai"`
	Ingestion  IngestionConfig  `toml:"ingestion"`
	Generation GenerationConfig `toml:"generation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type StorageConfig struct {
	Path     string `toml:"path" validate:"required_without=InMemory"` // BadgerDB directory
	InMemory bool   `toml:"in_memory"`                                 // Discard data on exit
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// AIConfig mirrors ai.Config with durations written as strings, e.g. "30s".
type AIConfig struct {
	Provider           string  `toml:"provider" validate:"oneof=openai gemini mock"`
	EmbeddingHost      string  `toml:"embedding_host" validate:"omitempty,url"`
	GenerationHost     string  `toml:"generation_host" validate:"omitempty,url"`
	EmbeddingModel     string  `toml:"embedding_model" validate:"required"`
	GenerationModel    string  `toml:"generation_model" validate:"required"`
	APIKey             string  `toml:"api_key"`
	EmbeddingDimension int     `toml:"embedding_dimension" validate:"min=0"`
	Temperature        float64 `toml:"temperature" validate:"min=0,max=2"`
	RequestTimeout     string  `toml:"request_timeout" validate:"duration"`
	MaxAttempts        int     `toml:"max_attempts" validate:"min=1"`
	RetryDelay         string  `toml:"retry_delay" validate:"duration"`
	RequestsPerSecond  float64 `toml:"requests_per_second" validate:"min=0"`
	LLMKnowledge       bool    `toml:"llm_knowledge"` // Extract knowledge with the generator instead of templates
}

type IngestionConfig struct {
	PoolSize       int    `toml:"pool_size" validate:"min=0"` // 0 selects NumCPU/2
	MaxChunkLength int    `toml:"max_chunk_length" validate:"min=1"`
	FetchTimeout   string `toml:"fetch_timeout" validate:"duration"`
	ExtractTimeout string `toml:"extract_timeout" validate:"duration"`
}

type GenerationConfig struct {
	TopK    int    `toml:"top_k" validate:"min=1"`
	Timeout string `toml:"timeout" validate:"duration"`
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file or environment
// variable overrides a value.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Storage: StorageConfig{Path: "scholia.db"},
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		AI: AIConfig{
			Provider:           aiDefaults.Provider,
			EmbeddingHost:      aiDefaults.EmbeddingHost,
			GenerationHost:     aiDefaults.GenerationHost,
			EmbeddingModel:     aiDefaults.EmbeddingModel,
			GenerationModel:    aiDefaults.GenerationModel,
			EmbeddingDimension: aiDefaults.EmbeddingDimension,
			Temperature:        aiDefaults.Temperature,
			RequestTimeout:     aiDefaults.RequestTimeout.String(),
			MaxAttempts:        aiDefaults.MaxAttempts,
			RetryDelay:         aiDefaults.RetryDelay.String(),
		},
		Ingestion: IngestionConfig{
			MaxChunkLength: 1000,
			FetchTimeout:   "30s",
			ExtractTimeout: "1m",
		},
		Generation: GenerationConfig{TopK: 5, Timeout: "2m"},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values from SCHOLIA_* variables. Provider API keys are
// read from GEMINI_API_KEY and OPENAI_API_KEY when no key is configured.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	str("SCHOLIA_DB_PATH", &c.Storage.Path)
	str("SCHOLIA_SERVER_HOST", &c.Server.Host)
	integer("SCHOLIA_SERVER_PORT", &c.Server.Port)
	str("SCHOLIA_AI_PROVIDER", &c.AI.Provider)
	str("SCHOLIA_EMBEDDING_HOST", &c.AI.EmbeddingHost)
	str("SCHOLIA_GENERATION_HOST", &c.AI.GenerationHost)
	str("SCHOLIA_EMBEDDING_MODEL", &c.AI.EmbeddingModel)
	str("SCHOLIA_GENERATION_MODEL", &c.AI.GenerationModel)
	str("SCHOLIA_API_KEY", &c.AI.APIKey)
	integer("SCHOLIA_POOL_SIZE", &c.Ingestion.PoolSize)
	str("SCHOLIA_LOG_LEVEL", &c.Logging.Level)

	if c.AI.APIKey == "" {
		switch strings.ToLower(c.AI.Provider) {
		case ai.ProviderGemini:
			str("GEMINI_API_KEY", &c.AI.APIKey)
		case ai.ProviderOpenAI:
			str("OPENAI_API_KEY", &c.AI.APIKey)
		}
	}
	return errors.Join(errs...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	c.AI.Provider = strings.ToLower(c.AI.Provider)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.AI.Provider == ai.ProviderOpenAI && (c.AI.EmbeddingHost == "" || c.AI.GenerationHost == "") {
		return errors.New("invalid configuration: openai provider requires embedding_host and generation_host")
	}
	return nil
}

// AIConfig converts the AI section to an ai.Config. Call it on a validated Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.AI.Provider),
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithEmbeddingDimension(c.AI.EmbeddingDimension),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithRequestTimeout(mustDuration(c.AI.RequestTimeout)),
		ai.WithRetry(c.AI.MaxAttempts, mustDuration(c.AI.RetryDelay)),
		ai.WithRequestsPerSecond(c.AI.RequestsPerSecond),
	)
}

// FetchTimeout returns the source fetch timeout.
func (c *Config) FetchTimeout() time.Duration { return mustDuration(c.Ingestion.FetchTimeout) }

// ExtractTimeout returns the text extraction timeout.
func (c *Config) ExtractTimeout() time.Duration { return mustDuration(c.Ingestion.ExtractTimeout) }

// GenerateTimeout returns the per-request generation timeout.
func (c *Config) GenerateTimeout() time.Duration { return mustDuration(c.Generation.Timeout) }

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// NewLogger returns an slog logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Logging.Level)}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to an slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
