package model

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// AgentState stores per-invocation state for the Eino Graph.
// It is registered via compose.WithGenLocalState and must only be touched
// inside state handlers or compose.ProcessState, which serialize access.
type AgentState struct {
	ThreadID string

	// Messages is the full thread: checkpointed history followed by this turn.
	Messages []*schema.Message
	// PersistedCount is the number of leading Messages already in the checkpoint store.
	PersistedCount int

	Query        string // last extracted product_lookup query
	LLMResponse  string // last raw model output
	LookupResult string // last product_lookup tool output

	ToolCallCount        int
	ToolCallLimit        int
	ToolCallLimitReached bool

	TotalCostUSD float64
}

// ChatInput is the public input of one agent turn.
type ChatInput struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// ChatOutput is the result of one agent turn.
type ChatOutput struct {
	ThreadID  string  `json:"thread_id"`
	Message   string  `json:"message"`
	ToolCalls int     `json:"tool_calls"`
	CostUSD   float64 `json:"cost_usd"`
}

// StoredMessage is the persisted form of a thread message.
type StoredMessage struct {
	Role       string    `json:"role" bson:"role"`
	Content    string    `json:"content" bson:"content"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty" bson:"tool_call_id,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewStoredMessage converts a schema message into its stored form.
func NewStoredMessage(m *schema.Message, at time.Time) StoredMessage {
	name := m.Name
	if name == "" {
		name = m.ToolName
	}
	return StoredMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		Name:       name,
		ToolCallID: m.ToolCallID,
		CreatedAt:  at,
	}
}

// Message restores the schema message.
func (s StoredMessage) Message() *schema.Message {
	m := &schema.Message{
		Role:       schema.RoleType(s.Role),
		Content:    s.Content,
		ToolCallID: s.ToolCallID,
	}
	if m.Role == schema.Tool {
		m.ToolName = s.Name
	} else {
		m.Name = s.Name
	}
	return m
}

// ThreadStore persists conversation threads between turns.
type ThreadStore interface {
	// Load returns the thread's messages in order. Unknown threads yield an empty slice.
	Load(ctx context.Context, threadID string) ([]StoredMessage, error)

	// Append adds messages to the end of the thread, creating it when missing.
	Append(ctx context.Context, threadID string, msgs ...StoredMessage) error

	// Clear removes the thread.
	Clear(ctx context.Context, threadID string) error

	// Count returns the number of messages in the thread.
	Count(ctx context.Context, threadID string) (int, error)
}
