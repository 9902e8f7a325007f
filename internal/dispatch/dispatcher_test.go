package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"quill/internal/domain"
	"quill/internal/tooling"
)

// =============================================================================
// fakeSchemaTool — test double shared by dispatcher and loop tests
// =============================================================================

type fakeSchemaTool struct {
	name     string
	desc     string
	schema   string
	result   *domain.ToolResult
	err      error
	calls    int
	lastArgs string
}

func (f *fakeSchemaTool) Name() string        { return f.name }
func (f *fakeSchemaTool) Description() string { return f.desc }
func (f *fakeSchemaTool) Definition() string  { return f.schema }
func (f *fakeSchemaTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	f.calls++
	f.lastArgs = string(args)
	return f.result, f.err
}

func textSchema() string {
	return `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`
}

func newFakeTool(name string) *fakeSchemaTool {
	return &fakeSchemaTool{
		name:   name,
		desc:   name + " description",
		schema: textSchema(),
		result: &domain.ToolResult{Data: name + "-result"},
	}
}

func newRegistryWith(t *testing.T, tools ...*fakeSchemaTool) *tooling.Registry {
	t.Helper()
	reg := tooling.NewRegistry()
	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("Register %q: %v", tool.name, err)
		}
	}
	return reg
}

// =============================================================================
// NewDispatcher
// =============================================================================

func TestNewDispatcher_WhenRegistryNil_ShouldPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil registry")
		}
	}()
	NewDispatcher(nil)
}

func TestDispatcher_Definitions_ShouldListRegisteredTools(t *testing.T) {
	d := NewDispatcher(newRegistryWith(t, newFakeTool("echo"), newFakeTool("calc")))
	defs := d.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
}

// =============================================================================
// Handle
// =============================================================================

func TestHandle_ShouldValidateAndExecute(t *testing.T) {
	tool := newFakeTool("echo")
	d := NewDispatcher(newRegistryWith(t, tool))

	res, err := d.Handle(context.Background(), domain.ToolCall{
		ID: "call_1", Name: "echo", Arguments: `{"text":"hi"}`,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Data != "echo-result" {
		t.Errorf("unexpected result: %+v", res)
	}
	if tool.calls != 1 {
		t.Errorf("expected 1 tool call, got %d", tool.calls)
	}
	if tool.lastArgs != `{"text":"hi"}` {
		t.Errorf("unexpected args: %q", tool.lastArgs)
	}
}

func TestHandle_WhenUnknownTool_ShouldReturnErrUnknownTool(t *testing.T) {
	d := NewDispatcher(newRegistryWith(t, newFakeTool("echo")))
	_, err := d.Handle(context.Background(), domain.ToolCall{Name: "ghost", Arguments: `{}`})
	if !errors.Is(err, tooling.ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestHandle_WhenArgsFailValidation_ShouldNotExecuteTool(t *testing.T) {
	tool := newFakeTool("echo")
	d := NewDispatcher(newRegistryWith(t, tool))

	_, err := d.Handle(context.Background(), domain.ToolCall{
		Name: "echo", Arguments: `{"text":42}`,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if tool.calls != 0 {
		t.Errorf("tool must not run on invalid args, ran %d times", tool.calls)
	}
}

func TestHandle_WhenToolFails_ShouldPropagateError(t *testing.T) {
	tool := newFakeTool("echo")
	tool.err = errors.New("backend down")
	d := NewDispatcher(newRegistryWith(t, tool))

	_, err := d.Handle(context.Background(), domain.ToolCall{
		Name: "echo", Arguments: `{"text":"hi"}`,
	})
	if err == nil || err.Error() != "backend down" {
		t.Errorf("expected unmodified tool error, got %v", err)
	}
}
