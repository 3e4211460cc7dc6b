package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DrewRidley/aiform/core/protocol"
	"github.com/DrewRidley/aiform/tools"
)

func TestAgentToolDelegation(t *testing.T) {
	// Inner agent answers directly; outer agent delegates to it and then
	// summarizes.
	innerClient := &scriptedClient{responses: []*protocol.ChatResponse{
		textResponse("The haiku is: silence, pond, splash."),
	}}
	inner, err := New(&Config{Model: "gpt-4", SystemPrompt: "You write haiku."},
		WithClient(innerClient))
	if err != nil {
		t.Fatalf("New inner failed: %v", err)
	}

	reg := tools.NewRegistry()
	if err := reg.Register(NewAgentTool("poet", "Writes haiku on request.", inner).Tool()); err != nil {
		t.Fatalf("registering agent tool: %v", err)
	}

	outerClient := &scriptedClient{responses: []*protocol.ChatResponse{
		toolCallResponse(protocol.NewToolCall("call_1", "poet", `{"message":"Write a haiku about frogs."}`)),
		textResponse("Here is your haiku: silence, pond, splash."),
	}}
	outer, err := New(&Config{Model: "gpt-4"}, WithClient(outerClient), WithTools(reg))
	if err != nil {
		t.Fatalf("New outer failed: %v", err)
	}

	result, err := outer.Run(context.Background(), "I'd like a frog haiku.")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Response != "Here is your haiku: silence, pond, splash." {
		t.Errorf("response = %q", result.Response)
	}

	// The delegated prompt ran in the inner agent's own conversation: its
	// single request carries only its system prompt and the forwarded message.
	if len(innerClient.requests) != 1 {
		t.Fatalf("expected 1 inner request, got %d", len(innerClient.requests))
	}
	innerMsgs := innerClient.requests[0].Messages
	if len(innerMsgs) != 2 {
		t.Fatalf("expected 2 inner messages, got %d", len(innerMsgs))
	}
	if innerMsgs[1].Content != "Write a haiku about frogs." {
		t.Errorf("forwarded message = %q", innerMsgs[1].Content)
	}

	// The outer conversation only sees the final text result.
	if got := result.ToolCalls[0].Result; got != "The haiku is: silence, pond, splash." {
		t.Errorf("tool result = %q", got)
	}
}

func TestAgentToolSchemaRequiresMessage(t *testing.T) {
	inner, err := New(&Config{Model: "gpt-4"}, WithClient(&scriptedClient{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reg := tools.NewRegistry()
	if err := reg.Register(NewAgentTool("helper", "Delegates.", inner).Tool()); err != nil {
		t.Fatalf("registering agent tool: %v", err)
	}

	defs := reg.Definitions()
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	required, ok := defs[0].Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "message" {
		t.Errorf("required = %v, want [message]", defs[0].Parameters["required"])
	}

	// Dispatch with a missing message field fails validation before the
	// wrapped agent is invoked.
	_, err = reg.Dispatch(context.Background(), "helper", json.RawMessage(`{}`))
	if !errors.Is(err, tools.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestAgentToolPropagatesFailure(t *testing.T) {
	inner, err := New(&Config{Model: "gpt-4"},
		WithClient(&scriptedClient{errs: []error{errors.New("down")}}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reg := tools.NewRegistry()
	if err := reg.Register(NewAgentTool("helper", "Delegates.", inner).Tool()); err != nil {
		t.Fatalf("registering agent tool: %v", err)
	}

	_, err = reg.Dispatch(context.Background(), "helper", json.RawMessage(`{"message":"hi"}`))
	var execErr *tools.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Errorf("expected wrapped UpstreamError, got %v", err)
	}
}
