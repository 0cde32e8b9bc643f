package conversations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tryluxor/server/internal/agent/model"
)

// ToolResultPrefix introduces a tool result that is replayed to the model as plain text.
const ToolResultPrefix = "Tool %s returned:\n"

type MessagesManager struct {
	store      model.ThreadStore
	maxHistory int
	now        func() time.Time
}

func NewMessagesManager(store model.ThreadStore, maxHistory int) *MessagesManager {
	return &MessagesManager{
		store:      store,
		maxHistory: maxHistory,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// LoadHistory returns the checkpointed messages of a thread.
func (cm *MessagesManager) LoadHistory(ctx context.Context, threadID string) ([]*schema.Message, error) {
	stored, err := cm.store.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	msgs := make([]*schema.Message, 0, len(stored))
	for _, s := range stored {
		msgs = append(msgs, s.Message())
	}
	return msgs, nil
}

// SaveTurn appends the messages produced by one turn.
func (cm *MessagesManager) SaveTurn(ctx context.Context, threadID string, msgs []*schema.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	now := cm.now()
	stored := make([]model.StoredMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		stored = append(stored, model.NewStoredMessage(m, now))
	}
	if err := cm.store.Append(ctx, threadID, stored...); err != nil {
		return fmt.Errorf("save thread %s: %w", threadID, err)
	}
	return nil
}

func (cm *MessagesManager) Clear(ctx context.Context, threadID string) error {
	return cm.store.Clear(ctx, threadID)
}

func (cm *MessagesManager) Count(ctx context.Context, threadID string) (int, error) {
	return cm.store.Count(ctx, threadID)
}

// BuildProviderContext prepends the system prompt to the trimmed history and
// rewrites it into plain text turns. Tool results become user turns and tool
// call metadata is dropped since calls are expressed as text directives.
func (cm *MessagesManager) BuildProviderContext(systemPrompt string, history []*schema.Message) []*schema.Message {
	recent := trimTail(history, cm.maxHistory)

	messages := make([]*schema.Message, 0, len(recent)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))

	for _, msg := range recent {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.Tool:
			name := msg.ToolName
			if name == "" {
				name = msg.Name
			}
			messages = append(messages, schema.UserMessage(fmt.Sprintf(ToolResultPrefix, name)+msg.Content))
		case schema.System:
			messages = append(messages, schema.UserMessage(msg.Content))
		case schema.Assistant:
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}
	return messages
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
