package nodes

import (
	"github.com/tryluxor/server/internal/agent/model"
)

const DefaultMaxToolCalls = 3

// EffectiveToolLimit bounds the configured tool calls by what the recursion
// limit leaves room for. Each tool round costs two graph steps on top of
// load_history and the final model call.
func EffectiveToolLimit(maxToolCalls, recursionLimit int) int {
	if maxToolCalls <= 0 {
		maxToolCalls = DefaultMaxToolCalls
	}
	if recursionLimit < model.MinRecursionLimit {
		recursionLimit = model.MinRecursionLimit
	}
	byRecursion := (recursionLimit - 3) / 2
	if byRecursion < maxToolCalls {
		maxToolCalls = byRecursion
	}
	if maxToolCalls < 1 {
		maxToolCalls = 1
	}
	return maxToolCalls
}

// checkAndMarkToolLimit marks the state once no further tool call is allowed.
// Returns true when marked now.
func checkAndMarkToolLimit(state *model.AgentState) bool {
	if !state.ToolCallLimitReached && state.ToolCallCount >= state.ToolCallLimit {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}
