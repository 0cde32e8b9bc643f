package model

import "time"

// ================ Config ================
type AgentConfig struct {
	Model          string  `envconfig:"AGENT_MODEL" default:"gemini-2.5-flash"`
	Temperature    float32 `envconfig:"AGENT_TEMPERATURE" default:"0.7"`
	MaxTokens      int     `envconfig:"AGENT_MAX_TOKENS" default:"2048"`
	ThinkingBudget int32   `envconfig:"AGENT_THINKING_BUDGET" default:"1024"`

	// RecursionLimit bounds the number of graph steps of a single turn.
	RecursionLimit int `envconfig:"AGENT_RECURSION_LIMIT" default:"10"`
	ToolMaxCalls   int `envconfig:"AGENT_TOOL_MAX_CALLS" default:"3"`
	MaxHistory     int `envconfig:"AGENT_MAX_HISTORY" default:"20"`
	LookupLimit    int `envconfig:"AGENT_LOOKUP_LIMIT" default:"10"`
}

type PromptConfig struct {
	Persona      string `envconfig:"PROMPT_PERSONA" default:"classic"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"Luxor"`
}

type CheckpointConfig struct {
	Backend    string        `envconfig:"CHECKPOINT_BACKEND" default:"mongo"`
	Collection string        `envconfig:"MONGO_CHECKPOINT_COLLECTION" default:"checkpoints"`
	TTL        time.Duration `envconfig:"CHECKPOINT_TTL" default:"0s"`
}

const (
	CheckpointMongo  = "mongo"
	CheckpointRedis  = "redis"
	CheckpointMemory = "memory"

	MinRecursionLimit = 5
)
