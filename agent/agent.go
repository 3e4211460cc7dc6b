// Package agent implements the bounded conversational loop that drives
// message exchange with a chat-completion API, dispatches requested tools,
// and terminates when the model produces a final textual answer.
//
// Agents initialize from configuration via New; functional options override
// the chat client, tool registry, and observer.
//
//	a, err := agent.New(&agent.Config{Model: "gpt-4"}, agent.WithTools(registry))
//	result, err := a.Run(ctx, "What's the weather in Boston?")
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DrewRidley/aiform/conversation"
	"github.com/DrewRidley/aiform/core/protocol"
	"github.com/DrewRidley/aiform/observability"
	"github.com/DrewRidley/aiform/openai"
	"github.com/DrewRidley/aiform/tools"
)

// ChatClient is the transport collaborator. It consumes a model identifier,
// the ordered conversation, and the current tool definitions, and returns
// either a textual completion or the model's tool-call requests. Retry,
// backoff, and auth policy belong to the implementation, not the loop.
type ChatClient interface {
	Complete(ctx context.Context, req protocol.ChatRequest) (*protocol.ChatResponse, error)
}

// Result holds the outcome of a completed run.
type Result struct {
	Response   string           // Final text response from the model.
	Iterations int              // Number of loop cycles completed.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

// ToolCallRecord is one executed tool call and its result.
type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Loop cycle in which the call occurred.
	Result    string // Tool execution output.
}

// Option configures an Agent after config-driven initialization.
type Option func(*Agent)

// WithClient overrides the default environment-configured chat client.
func WithClient(c ChatClient) Option {
	return func(a *Agent) { a.client = c }
}

// WithTools attaches a tool registry. Without one the agent can only answer
// directly; any tool-call request from the model fails the run.
func WithTools(r *tools.Registry) Option {
	return func(a *Agent) { a.tools = r }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(a *Agent) { a.observer = o }
}

// Agent runs the bounded model-call / tool-dispatch cycle. An Agent is
// immutable after New and safe to share, but a single conversation must not
// be driven by two concurrent executions; see Conversation.
type Agent struct {
	client        ChatClient
	model         string
	systemPrompt  string
	tools         *tools.Registry
	maxIterations int
	observer      observability.Observer
}

// New creates an Agent from configuration. Returns ErrInvalidConfiguration
// when Model is empty or MaxIterations is negative. Options applied after
// initialization can override any collaborator; when no client is supplied,
// an OpenAI-compatible client configured from the environment is used.
func New(cfg *Config, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrInvalidConfiguration)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model must be specified", ErrInvalidConfiguration)
	}
	if cfg.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive", ErrInvalidConfiguration)
	}

	maxIterations := cfg.MaxIterations
	if maxIterations == 0 {
		maxIterations = DefaultMaxIterations
	}

	a := &Agent{
		model:         cfg.Model,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIterations,
		observer:      observability.NewSlogObserver(slog.Default()),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.client == nil {
		a.client = openai.NewClientFromEnv()
	}

	return a, nil
}

// Run executes the loop for a single user message in a fresh conversation
// seeded from the agent's system prompt. Returns a Result with the final
// response, iteration count, and tool call log.
func (a *Agent) Run(ctx context.Context, message string) (*Result, error) {
	conv := a.newConversation()
	conv.AddUser(message)
	return a.execute(ctx, conv)
}

// RunConversation executes the loop against an existing conversation,
// allowing multi-turn exchanges that reference earlier messages. The
// conversation is mutated in place: the assistant's replies and any tool
// results are appended as the loop progresses.
func (a *Agent) RunConversation(ctx context.Context, conv *conversation.Conversation) (*Result, error) {
	return a.execute(ctx, conv)
}

// CallAsTool runs the agent against a brand-new private conversation and
// returns only the final text. Intermediate reasoning and tool calls never
// touch any other conversation, which is what keeps each agent's context
// isolated when one agent invokes another as a tool.
func (a *Agent) CallAsTool(ctx context.Context, message string) (string, error) {
	conv := a.newConversation()
	conv.AddUser(message)

	result, err := a.execute(ctx, conv)
	if err != nil {
		return "", err
	}
	return result.Response, nil
}

func (a *Agent) newConversation() *conversation.Conversation {
	if a.systemPrompt != "" {
		return conversation.WithSystem(a.systemPrompt)
	}
	return conversation.New()
}

func (a *Agent) definitions() []protocol.Tool {
	if a.tools == nil {
		return nil
	}
	return a.tools.Definitions()
}

// execute drives the state machine: send the conversation, inspect the
// response, dispatch requested tools in order, repeat. Every failure aborts
// the run immediately and surfaces to the caller as a typed error.
func (a *Agent) execute(ctx context.Context, conv *conversation.Conversation) (*Result, error) {
	result := &Result{}

	a.observer.OnEvent(ctx, observability.NewEvent(
		EventRunStart, observability.LevelInfo, "agent.Run", map[string]any{
			"conversation":   conv.ID(),
			"model":          a.model,
			"max_iterations": a.maxIterations,
			"tools":          len(a.definitions()),
		},
	))

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		a.observer.OnEvent(ctx, observability.NewEvent(
			EventIterationStart, observability.LevelVerbose, "agent.Run",
			map[string]any{"iteration": iteration + 1},
		))

		resp, err := a.client.Complete(ctx, protocol.ChatRequest{
			Model:    a.model,
			Messages: conv.Messages(),
			Tools:    a.definitions(),
		})
		if err != nil {
			a.observer.OnEvent(ctx, observability.NewEvent(
				EventError, observability.LevelError, "agent.Run",
				map[string]any{"iteration": iteration + 1, "error": err.Error()},
			))
			return result, &UpstreamError{Err: err}
		}

		if len(resp.ToolCalls) > 0 {
			conv.AddAssistantToolCalls(resp.Content, resp.ToolCalls)

			if a.tools == nil {
				return result, ErrNoToolsConfigured
			}

			if err := a.dispatchAll(ctx, conv, resp.ToolCalls, iteration, result); err != nil {
				return result, err
			}

			result.Iterations = iteration + 1
			continue
		}

		if resp.Content != "" {
			conv.AddAssistant(resp.Content)
			result.Response = resp.Content
			result.Iterations = iteration + 1

			a.observer.OnEvent(ctx, observability.NewEvent(
				EventResponse, observability.LevelInfo, "agent.Run", map[string]any{
					"iteration":       iteration + 1,
					"response_length": len(resp.Content),
				},
			))

			return result, nil
		}

		return result, ErrEmptyResponse
	}

	a.observer.OnEvent(ctx, observability.NewEvent(
		EventError, observability.LevelWarning, "agent.Run",
		map[string]any{"error": "max iterations reached", "iterations": a.maxIterations},
	))

	return result, fmt.Errorf("%w: %d", ErrMaxIterations, a.maxIterations)
}

// dispatchAll executes one batch of tool calls strictly in the order
// received, appending each result keyed by its request id. The first
// failure aborts the batch and the run.
func (a *Agent) dispatchAll(
	ctx context.Context,
	conv *conversation.Conversation,
	calls []protocol.ToolCall,
	iteration int,
	result *Result,
) error {
	for _, tc := range calls {
		a.observer.OnEvent(ctx, observability.NewEvent(
			EventToolCall, observability.LevelVerbose, "agent.Run",
			map[string]any{"iteration": iteration + 1, "name": tc.Name},
		))

		out, err := a.tools.Dispatch(ctx, tc.Name, json.RawMessage(tc.Arguments))
		if err != nil {
			a.observer.OnEvent(ctx, observability.NewEvent(
				EventError, observability.LevelError, "agent.Run",
				map[string]any{"iteration": iteration + 1, "name": tc.Name, "error": err.Error()},
			))
			return err
		}

		conv.AddToolResult(tc.ID, out)
		result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
			ToolCall:  tc,
			Iteration: iteration + 1,
			Result:    out,
		})

		a.observer.OnEvent(ctx, observability.NewEvent(
			EventToolComplete, observability.LevelVerbose, "agent.Run",
			map[string]any{"iteration": iteration + 1, "name": tc.Name},
		))
	}

	return nil
}
