package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tryluxor/server/internal/agent/graph/conversations"
	"github.com/tryluxor/server/internal/agent/graph/nodes"
	"github.com/tryluxor/server/internal/agent/graph/observers"
	"github.com/tryluxor/server/internal/agent/graph/tools"
	"github.com/tryluxor/server/internal/agent/model"
	errx "github.com/tryluxor/server/internal/core/error"
	logx "github.com/tryluxor/server/pkg/logger"
)

const graphName = "shop_assistant"

// Runner executes one chat turn and exposes the stored thread.
type Runner interface {
	Chat(ctx context.Context, in model.ChatInput) (model.ChatOutput, error)
	History(ctx context.Context, threadID string) ([]*schema.Message, error)
	Clear(ctx context.Context, threadID string) error
}

// Config holds everything needed to compose the agent graph.
type Config struct {
	ChatModel einomodel.BaseChatModel
	ModelName string
	Finder    tools.ProductFinder
	Store     model.ThreadStore
	Agent     model.AgentConfig
	Prompt    model.PromptConfig

	// Now is the clock used for the prompt time. Defaults to time.Now.
	Now func() time.Time
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config    *Config
	mm        *conversations.MessagesManager
	toolLimit int
	graph     *compose.Graph[model.ChatInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.ChatInput, *schema.Message]
	mm       *conversations.MessagesManager
}

func (r *graphRunner) Chat(ctx context.Context, in model.ChatInput) (model.ChatOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return model.ChatOutput{}, errx.BadRequest(nil, "message must not be empty")
	}
	if in.ThreadID == "" {
		return model.ChatOutput{}, errx.BadRequest(nil, "thread id must not be empty")
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("thread_id", in.ThreadID).Msg("agent run failed")
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			return model.ChatOutput{}, err
		}
		return model.ChatOutput{}, errx.WrapLLM(err)
	}

	res := model.ChatOutput{ThreadID: in.ThreadID, Message: nodes.FallbackAnswer}
	if out == nil {
		return res, nil
	}
	res.Message = out.Content
	if v, ok := out.Extra[nodes.ExtraCostTotal].(float64); ok {
		res.CostUSD = v
	}
	if v, ok := out.Extra[nodes.ExtraToolCalls].(int); ok {
		res.ToolCalls = v
	}

	logx.Info().
		Str("thread_id", in.ThreadID).
		Int("tool_calls", res.ToolCalls).
		Float64("cost_usd", res.CostUSD).
		Msg("chat turn completed")
	return res, nil
}

func (r *graphRunner) History(ctx context.Context, threadID string) ([]*schema.Message, error) {
	return r.mm.LoadHistory(ctx, threadID)
}

func (r *graphRunner) Clear(ctx context.Context, threadID string) error {
	return r.mm.Clear(ctx, threadID)
}

// BuildAgentGraph builds the compiled agent graph and returns a Runner.
func BuildAgentGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Finder == nil {
		return nil, fmt.Errorf("product finder is nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("thread store is nil")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Agent.RecursionLimit < model.MinRecursionLimit {
		cfg.Agent.RecursionLimit = model.MinRecursionLimit
	}

	builder := &GraphBuilder{
		config:    &cfg,
		mm:        conversations.NewMessagesManager(cfg.Store, cfg.Agent.MaxHistory),
		toolLimit: nodes.EffectiveToolLimit(cfg.Agent.ToolMaxCalls, cfg.Agent.RecursionLimit),
		graph: compose.NewGraph[model.ChatInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AgentState {
				return &model.AgentState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}
	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().
		Int("recursion_limit", cfg.Agent.RecursionLimit).
		Int("tool_limit", builder.toolLimit).
		Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable, mm: builder.mm}, nil
}

// setupTools adds the product_lookup tools node
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	lookup := tools.NewProductLookupTool(b.config.Finder, b.config.Agent.LookupLimit)

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               []tool.BaseTool{lookup},
		ExecuteSequentially: true,
		UnknownToolsHandler: nodes.UnknownToolHandler,
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return tools.SanitizeArguments(name, arguments), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	if err := b.graph.AddToolsNode(nodes.NodeProductLookup, toolsNode,
		compose.WithNodeName(nodes.NodeProductLookup),
		compose.WithStatePreHandler(nodes.NewProductLookupPreHandler()),
	); err != nil {
		return fmt.Errorf("add tools node: %w", err)
	}
	return nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeLoadHistory,
		nodes.NewLoadHistoryNode(b.mm, b.toolLimit),
		compose.WithNodeName(nodes.NodeLoadHistory),
	); err != nil {
		return fmt.Errorf("add load_history node: %w", err)
	}

	if err := b.graph.AddChatModelNode(nodes.NodeCallLLM,
		b.config.ChatModel,
		compose.WithNodeName(nodes.NodeCallLLM),
		compose.WithStatePreHandler(nodes.NewCallLLMPreHandler(b.mm, b.config.Prompt, b.config.Now)),
		compose.WithStatePostHandler(nodes.NewCallLLMPostHandler(b.mm, b.config.ModelName)),
	); err != nil {
		return fmt.Errorf("add call_llm node: %w", err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeLoadHistory},
		{nodes.NodeLoadHistory, nodes.NodeCallLLM},
		{nodes.NodeProductLookup, nodes.NodeCallLLM},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	lookupBranch := compose.NewGraphBranch(
		nodes.NewProductLookupCondition(),
		map[string]bool{
			nodes.NodeProductLookup: true,
			compose.END:             true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeCallLLM, lookupBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding product lookup branch")
		return fmt.Errorf("error adding product lookup branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.ChatInput, *schema.Message], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName(graphName),
		compose.WithMaxRunSteps(b.config.Agent.RecursionLimit),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
