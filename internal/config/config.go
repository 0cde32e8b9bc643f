package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tryluxor/server/internal/agent/model"
	"github.com/tryluxor/server/internal/core"
	"github.com/tryluxor/server/pkg/gemini"
	"github.com/tryluxor/server/pkg/mongodb"
	pkgredis "github.com/tryluxor/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL" default:"info"`

	HTTP HTTPConfig

	// Infrastructure
	Mongo   mongodb.Config
	Catalog CatalogConfig
	Redis   pkgredis.Config

	// LLM provider
	Gemini    gemini.Config
	Embedding EmbeddingConfig

	// Agent configs
	Agent      model.AgentConfig
	Prompt     model.PromptConfig
	Checkpoint model.CheckpointConfig
}

type HTTPConfig struct {
	Port            int      `envconfig:"HTTP_PORT" default:"8000"`
	CORSOrigins     []string `envconfig:"HTTP_CORS_ORIGINS" default:"*"`
	ShutdownTimeout int      `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10"`
}

type CatalogConfig struct {
	Collection  string `envconfig:"MONGO_PRODUCTS_COLLECTION" default:"products"`
	VectorIndex string `envconfig:"MONGO_VECTOR_INDEX" default:"vector_index"`
}

type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
}

// Load reads the .env file when present and processes the environment.
func Load(envFiles ...string) (AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate rejects combinations envconfig cannot express.
func (c *AppConfig) Validate() error {
	var errs []error

	switch strings.ToLower(c.Checkpoint.Backend) {
	case model.CheckpointMongo, model.CheckpointMemory:
	case model.CheckpointRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis checkpoint backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CHECKPOINT_BACKEND %q", c.Checkpoint.Backend))
	}

	if c.Agent.RecursionLimit < model.MinRecursionLimit {
		errs = append(errs, fmt.Errorf("AGENT_RECURSION_LIMIT must be at least %d", model.MinRecursionLimit))
	}
	if c.Agent.ToolMaxCalls < 1 {
		errs = append(errs, errors.New("AGENT_TOOL_MAX_CALLS must be positive"))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("EMBEDDING_DIMENSIONS must be positive"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d is out of range", c.HTTP.Port))
	}

	return errors.Join(errs...)
}
