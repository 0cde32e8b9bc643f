package model

import (
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	c := ComputeCost("gemini-2.5-flash", &schema.TokenUsage{
		PromptTokens:     1_000_000,
		CompletionTokens: 200_000,
		TotalTokens:      1_200_000,
	})
	assert.InDelta(t, 0.30, c.InputCost, 1e-9)
	assert.InDelta(t, 0.50, c.OutputCost, 1e-9)
	assert.InDelta(t, 0.80, c.TotalCost, 1e-9)
	assert.Equal(t, 1_200_000, c.TotalTokens)

	assert.Zero(t, ComputeCost("unknown-model", &schema.TokenUsage{PromptTokens: 10}).TotalCost)
	assert.Zero(t, ComputeCost("gemini-2.5-flash", nil).TotalCost)
}

func TestStoredMessageRoundTrip(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := &schema.Message{
		Role:       schema.Tool,
		Content:    `{"products":[]}`,
		ToolCallID: "product_lookup_call",
		ToolName:   "product_lookup",
	}

	stored := NewStoredMessage(msg, at)
	assert.Equal(t, "tool", stored.Role)
	assert.Equal(t, "product_lookup", stored.Name)
	assert.Equal(t, at, stored.CreatedAt)

	back := stored.Message()
	assert.Equal(t, schema.Tool, back.Role)
	assert.Equal(t, msg.Content, back.Content)
	assert.Equal(t, "product_lookup_call", back.ToolCallID)
	assert.Equal(t, "product_lookup", back.ToolName)
}
