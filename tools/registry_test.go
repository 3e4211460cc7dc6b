package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DrewRidley/aiform/schema"
	"github.com/DrewRidley/aiform/tools"
)

func addArgs() *schema.ArgumentType {
	return schema.Record("AddArgs",
		schema.NewField("a", schema.Integer()),
		schema.NewField("b", schema.Integer()),
	)
}

func echoHandler(_ context.Context, args json.RawMessage) (string, error) {
	return string(args), nil
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		tool    tools.Tool
		wantErr error
	}{
		{
			name: "valid tool",
			tool: tools.Tool{Name: "echo", Description: "Echo args", Handler: echoHandler},
		},
		{
			name:    "empty name",
			tool:    tools.Tool{Handler: echoHandler},
			wantErr: tools.ErrEmptyName,
		},
		{
			name:    "nil handler",
			tool:    tools.Tool{Name: "broken"},
			wantErr: tools.ErrNilHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tools.NewRegistry().Register(tt.tool)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Register() unexpected error: %v", err)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := tools.NewRegistry()
	tool := tools.Tool{Name: "dup", Description: "first", Handler: echoHandler}

	if err := r.Register(tool); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}

	err := r.Register(tool)
	if !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want %v", err, tools.ErrAlreadyExists)
	}
}

func TestRegister_CompilesSchema(t *testing.T) {
	r := tools.NewRegistry()
	err := r.Register(tools.Tool{
		Name:        "add",
		Description: "Add two integers",
		Args:        addArgs(),
		Handler:     echoHandler,
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	defs := r.Definitions()
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Parameters["type"] != "object" {
		t.Errorf("parameters type = %v, want %q", defs[0].Parameters["type"], "object")
	}
	required, ok := defs[0].Parameters["required"].([]string)
	if !ok || len(required) != 2 {
		t.Errorf("required = %v, want [a b]", defs[0].Parameters["required"])
	}
}

func TestDefinitions_RegistrationOrder(t *testing.T) {
	r := tools.NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(tools.Tool{Name: name, Handler: echoHandler}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	defs := r.Definitions()
	want := []string{"zeta", "alpha", "mid"}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("definitions[%d] = %q, want %q", i, defs[i].Name, name)
		}
	}
}

func TestDefinitions_Fresh(t *testing.T) {
	r := tools.NewRegistry()
	if err := r.Register(tools.Tool{Name: "first", Handler: echoHandler}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	before := r.Definitions()
	if err := r.Register(tools.Tool{Name: "second", Handler: echoHandler}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	after := r.Definitions()

	if len(before) != 1 {
		t.Errorf("earlier snapshot mutated: %d definitions", len(before))
	}
	if len(after) != 2 {
		t.Errorf("got %d definitions, want 2", len(after))
	}
}

func TestDispatch(t *testing.T) {
	r := tools.NewRegistry()
	err := r.Register(tools.Tool{
		Name:        "add",
		Description: "Add two integers",
		Args:        addArgs(),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var parsed struct {
				A int `json:"a"`
				B int `json:"b"`
			}
			if err := json.Unmarshal(args, &parsed); err != nil {
				return "", err
			}
			return "4", nil
		},
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	result, err := r.Dispatch(context.Background(), "add", json.RawMessage(`{"a":2,"b":2}`))
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if result != "4" {
		t.Errorf("got result %q, want %q", result, "4")
	}
}

func TestDispatch_NotFound(t *testing.T) {
	r := tools.NewRegistry()

	_, err := r.Dispatch(context.Background(), "missing", json.RawMessage(`{}`))
	if !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Dispatch() error = %v, want %v", err, tools.ErrNotFound)
	}
}

func TestDispatch_InvalidArguments(t *testing.T) {
	r := tools.NewRegistry()
	invoked := false
	err := r.Register(tools.Tool{
		Name: "add",
		Args: addArgs(),
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			invoked = true
			return "", nil
		},
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []struct {
		name string
		args string
	}{
		{"malformed json", `{"a":`},
		{"missing field", `{"a":2}`},
		{"wrong type", `{"a":"two","b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), "add", json.RawMessage(tt.args))
			if !errors.Is(err, tools.ErrInvalidArguments) {
				t.Errorf("Dispatch() error = %v, want %v", err, tools.ErrInvalidArguments)
			}
		})
	}

	if invoked {
		t.Error("handler must not run when arguments are invalid")
	}
}

func TestDispatch_ExecutionError(t *testing.T) {
	r := tools.NewRegistry()
	cause := errors.New("service unavailable")
	err := r.Register(tools.Tool{
		Name: "flaky",
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			return "", cause
		},
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err = r.Dispatch(context.Background(), "flaky", json.RawMessage(`{}`))

	var execErr *tools.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Dispatch() error = %T, want *tools.ExecutionError", err)
	}
	if execErr.Name != "flaky" {
		t.Errorf("got tool name %q, want %q", execErr.Name, "flaky")
	}
	if !errors.Is(err, cause) {
		t.Error("execution error should wrap the handler's cause")
	}
}

// Dispatch must hand the handler the exact payload that validated, so a
// schema-shaped value round-trips from raw JSON through validation into the
// handler's decode unchanged.
func TestDispatch_RoundTrip(t *testing.T) {
	type move struct {
		To struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"to"`
		Tags []string `json:"tags"`
	}

	r := tools.NewRegistry()
	if err := r.Types().Define(schema.Record("Point",
		schema.NewField("x", schema.Number()),
		schema.NewField("y", schema.Number()),
	)); err != nil {
		t.Fatalf("Define failed: %v", err)
	}

	var got move
	err := r.Register(tools.Tool{
		Name: "move",
		Args: schema.Record("MoveArgs",
			schema.NewField("to", schema.Ref("Point")),
			schema.NewField("tags", schema.Array(schema.String())),
		),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			if err := json.Unmarshal(args, &got); err != nil {
				return "", err
			}
			return "ok", nil
		},
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	payload := `{"to":{"x":1.5,"y":-2},"tags":["fast","dry-run"]}`
	if _, err := r.Dispatch(context.Background(), "move", json.RawMessage(payload)); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	if got.To.X != 1.5 || got.To.Y != -2 {
		t.Errorf("got point (%v, %v), want (1.5, -2)", got.To.X, got.To.Y)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "fast" || got.Tags[1] != "dry-run" {
		t.Errorf("got tags %v, want [fast dry-run]", got.Tags)
	}
}
