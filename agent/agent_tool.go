package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DrewRidley/aiform/schema"
	"github.com/DrewRidley/aiform/tools"
)

// AgentTool exposes an Agent as a dispatchable tool so that one agent can
// delegate a sub-task to another. Each invocation runs in the wrapped
// agent's own private conversation; the caller only sees the final text.
//
// A mutex serializes invocations so a shared wrapped agent never interleaves
// two delegated requests.
type AgentTool struct {
	name        string
	description string

	mu    sync.Mutex
	agent *Agent
}

// NewAgentTool wraps an agent under the given tool name and description.
func NewAgentTool(name, description string, a *Agent) *AgentTool {
	return &AgentTool{name: name, description: description, agent: a}
}

// Tool returns the registry entry for this wrapper. The argument shape is a
// single required message string, which becomes the delegated user prompt.
func (at *AgentTool) Tool() tools.Tool {
	return tools.Tool{
		Name:        at.name,
		Description: at.description,
		Args: schema.Record("AgentCallArgs",
			schema.NewField("message", schema.String()).
				Describe("The request to forward to the delegated agent."),
		),
		Handler: at.handle,
	}
}

func (at *AgentTool) handle(ctx context.Context, args json.RawMessage) (string, error) {
	var call struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(args, &call); err != nil {
		return "", fmt.Errorf("decoding agent call arguments: %w", err)
	}

	at.mu.Lock()
	defer at.mu.Unlock()

	return at.agent.CallAsTool(ctx, call.Message)
}
