package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryluxor/server/internal/agent/model"
	"github.com/tryluxor/server/internal/agent/repo"
)

type failingStore struct{ model.ThreadStore }

func (failingStore) Load(context.Context, string) ([]model.StoredMessage, error) {
	return nil, errors.New("down")
}

func TestSaveAndLoadTurn(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryThreadStore()
	mm := NewMessagesManager(store, 20)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mm.now = func() time.Time { return at }

	turn := []*schema.Message{
		schema.UserMessage("any sofas?"),
		schema.AssistantMessage(`TOOL_CALL: product_lookup(query="sofa")`, nil),
		{Role: schema.Tool, Content: "No products found", ToolCallID: "product_lookup_call", ToolName: "product_lookup"},
		nil,
		schema.AssistantMessage("Sorry, nothing right now.", nil),
	}
	require.NoError(t, mm.SaveTurn(ctx, "t1", turn))

	stored, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, "tool", stored[2].Role)
	assert.Equal(t, "product_lookup", stored[2].Name)
	assert.Equal(t, at, stored[0].CreatedAt)

	history, err := mm.LoadHistory(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, schema.Tool, history[2].Role)
	assert.Equal(t, "product_lookup_call", history[2].ToolCallID)

	n, err := mm.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLoadHistoryError(t *testing.T) {
	_, err := NewMessagesManager(failingStore{}, 5).LoadHistory(context.Background(), "t1")
	assert.ErrorContains(t, err, "load thread t1")
}

func TestBuildProviderContext(t *testing.T) {
	mm := NewMessagesManager(repo.NewMemoryThreadStore(), 3)

	history := []*schema.Message{
		schema.UserMessage("old question"),
		schema.AssistantMessage("old answer", nil),
		schema.UserMessage("any sofas?"),
		schema.AssistantMessage(`TOOL_CALL: product_lookup(query="sofa")`, []schema.ToolCall{{ID: "product_lookup_call"}}),
		{Role: schema.Tool, Content: `{"products":[]}`, ToolName: "product_lookup"},
	}

	msgs := mm.BuildProviderContext("be nice", history)
	require.Len(t, msgs, 4)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "be nice", msgs[0].Content)

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "any sofas?", msgs[1].Content)

	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Empty(t, msgs[2].ToolCalls)

	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "Tool product_lookup returned:\n{\"products\":[]}", msgs[3].Content)
}

func TestBuildProviderContextSystemNotice(t *testing.T) {
	mm := NewMessagesManager(repo.NewMemoryThreadStore(), 0)

	msgs := mm.BuildProviderContext("sys", []*schema.Message{
		schema.UserMessage("hi"),
		schema.SystemMessage("SYSTEM NOTICE: wrap up"),
		schema.AssistantMessage("", nil),
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.User, msgs[2].Role)
	assert.Equal(t, "SYSTEM NOTICE: wrap up", msgs[2].Content)
}

func TestTrimTail(t *testing.T) {
	msgs := []*schema.Message{schema.UserMessage("1"), schema.UserMessage("2"), schema.UserMessage("3")}

	assert.Len(t, trimTail(msgs, 2), 2)
	assert.Equal(t, "2", trimTail(msgs, 2)[0].Content)
	assert.Len(t, trimTail(msgs, 5), 3)
	assert.Len(t, trimTail(msgs, 0), 3)
}
