package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tryluxor/server/internal/agent/graph/conversations"
	"github.com/tryluxor/server/internal/agent/graph/parsers"
	"github.com/tryluxor/server/internal/agent/graph/prompts"
	"github.com/tryluxor/server/internal/agent/graph/tools"
	"github.com/tryluxor/server/internal/agent/model"
	logx "github.com/tryluxor/server/pkg/logger"
)

const (
	NodeLoadHistory   = "load_history"
	NodeCallLLM       = "call_llm"
	NodeProductLookup = "product_lookup"

	// ToolCallID is the id given to every product_lookup call.
	ToolCallID = "product_lookup_call"

	FallbackAnswer = "Sorry, I couldn't come up with an answer just now. Could you rephrase your question?"

	ExtraCostTotal = "usage_cost_total_usd"
	ExtraToolCalls = "tool_calls"
)

// NewLoadHistoryNode loads the thread checkpoint into state and emits the new user message.
func NewLoadHistoryNode(mm *conversations.MessagesManager, toolLimit int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.ChatInput) ([]*schema.Message, error) {
		history, err := mm.LoadHistory(ctx, in.ThreadID)
		if err != nil {
			return nil, err
		}

		err = compose.ProcessState(ctx, func(_ context.Context, state *model.AgentState) error {
			state.ThreadID = in.ThreadID
			state.Messages = history
			state.PersistedCount = len(history)
			state.ToolCallCount = 0
			state.ToolCallLimit = toolLimit
			state.ToolCallLimitReached = false
			state.TotalCostUSD = 0
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("thread_id", in.ThreadID).Int("history", len(history)).Msg("thread loaded")
		return []*schema.Message{schema.UserMessage(in.Message)}, nil
	})
}

// NewCallLLMPreHandler records the node input and builds the provider context.
func NewCallLLMPreHandler(
	mm *conversations.MessagesManager,
	promptCfg model.PromptConfig,
	now func() time.Time,
) func(context.Context, []*schema.Message, *model.AgentState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AgentState) ([]*schema.Message, error) {
		state.Messages = append(state.Messages, in...)
		for _, m := range in {
			if m != nil && m.Role == schema.Tool {
				state.LookupResult = m.Content
			}
		}

		system, err := prompts.RenderSystem(ctx, promptCfg, now())
		if err != nil {
			return nil, err
		}
		msgs := mm.BuildProviderContext(system, state.Messages)

		// the notice only steers this call and is not part of the thread
		if checkAndMarkToolLimit(state) {
			logx.Warn().
				Str("thread_id", state.ThreadID).
				Int("tool_call_count", state.ToolCallCount).
				Msg("Tool call limit reached - asking model to wrap up")
			msgs = append(msgs, schema.UserMessage(fmt.Sprintf(
				"SYSTEM NOTICE: You have reached the maximum number of product lookups (%d). "+
					"Answer the customer now using the results you already have and do not call any tool.",
				state.ToolCallLimit,
			)))
		}

		logx.Debug().Str("thread_id", state.ThreadID).Msg("AI thinking...")
		return msgs, nil
	}
}

// NewCallLLMPostHandler computes cost, turns a TOOL_CALL directive into a tool
// call and, when the turn is over, cleans the answer and persists the turn.
func NewCallLLMPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AgentState) (*schema.Message, error) {
		if out == nil {
			out = schema.AssistantMessage("", nil)
		}
		state.LLMResponse = out.Content

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			cost := model.ComputeCost(modelName, out.ResponseMeta.Usage)
			state.TotalCostUSD += cost.TotalCost
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = cost
			logx.Debug().
				Str("thread_id", state.ThreadID).
				Str("node", NodeCallLLM).
				Str("model", modelName).
				Int("prompt_tokens", cost.PromptTokens).
				Int("completion_tokens", cost.CompletionTokens).
				Float64("total_cost_usd", cost.TotalCost).
				Msg("LLM usage")
		}

		call, found := parsers.ParseToolCall(out.Content)
		if found && !state.ToolCallLimitReached {
			state.Query = call.Query
			out.ToolCalls = []schema.ToolCall{{
				ID:   ToolCallID,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      call.Name,
					Arguments: tools.LookupArguments(call.Query),
				},
			}}
			state.Messages = append(state.Messages, out)
			logx.Debug().Str("thread_id", state.ThreadID).Str("query", call.Query).Msg("Calling product_lookup")
			return out, nil
		}
		if found {
			logx.Warn().Str("thread_id", state.ThreadID).Str("query", call.Query).Msg("Tool call ignored - limit reached")
		}

		answer := parsers.StripToolCalls(out.Content)
		if answer == "" {
			answer = FallbackAnswer
		}
		out.Content = answer
		out.ToolCalls = nil
		state.Messages = append(state.Messages, out)

		if out.Extra == nil {
			out.Extra = map[string]any{}
		}
		out.Extra[ExtraCostTotal] = state.TotalCostUSD
		out.Extra[ExtraToolCalls] = state.ToolCallCount

		if err := mm.SaveTurn(ctx, state.ThreadID, state.Messages[state.PersistedCount:]); err != nil {
			logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("Error saving turn")
			return nil, err
		}
		state.PersistedCount = len(state.Messages)

		logx.Debug().Str("thread_id", state.ThreadID).Msg("AI response ready")
		return out, nil
	}
}

// NewProductLookupCondition routes to the tools node when the model asked for a lookup.
func NewProductLookupCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		if input != nil && len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to product_lookup")
			return NodeProductLookup, nil
		}
		return compose.END, nil
	}
}

// NewProductLookupPreHandler counts tool calls.
func NewProductLookupPreHandler() func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AgentState) (*schema.Message, error) {
		state.ToolCallCount++
		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Int("tool_call_limit", state.ToolCallLimit).
			Str("thread_id", state.ThreadID).
			Msg("Tool execution attempt")
		return in, nil
	}
}

// UnknownToolHandler answers tool calls for names the tools node does not know.
func UnknownToolHandler(ctx context.Context, name, input string) (string, error) {
	logx.Warn().Str("tool_name", name).Str("arguments", input).Msg("Unknown tool call; returning fallback result")
	return fmt.Sprintf("Error: unknown tool %q", strings.TrimSpace(name)), nil
}
