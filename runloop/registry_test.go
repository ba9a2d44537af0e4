package runloop

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/agencyboard/agentrun/modelio"
)

type searchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func newSearchRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.Register(RegisteredTool{
		Definition: modelio.ToolDefinition{Name: "search", Description: "search boards"},
		Decode:     Payload[searchPayload](),
		Run: func(_ context.Context, payload any, _ ExecContext) (Result, error) {
			p := payload.(searchPayload)
			return Result{OK: true, Message: "query=" + p.Query}, nil
		},
	})
	return reg
}

func TestRegistryTypedDecode(t *testing.T) {
	reg := newSearchRegistry(t)
	res, err := reg.Execute(context.Background(),
		modelio.ToolCall{ID: "c1", Name: "search", Input: json.RawMessage(`{"query":"roadmap","limit":5}`)},
		ExecContext{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.OK || res.Message != "query=roadmap" {
		t.Errorf("result = %+v", res)
	}
}

func TestRegistryRejectsUnknownFields(t *testing.T) {
	reg := newSearchRegistry(t)
	res, err := reg.Execute(context.Background(),
		modelio.ToolCall{ID: "c1", Name: "search", Input: json.RawMessage(`{"query":"x","bogus":true}`)},
		ExecContext{})
	if err != nil {
		t.Fatalf("decode failure must be a failed result, not a fault: %v", err)
	}
	if res.OK {
		t.Error("unknown field accepted")
	}
	if !strings.Contains(res.Message, "invalid input for search") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := newSearchRegistry(t)
	res, err := reg.Execute(context.Background(),
		modelio.ToolCall{ID: "c1", Name: "teleport", Input: nil}, ExecContext{})
	if err != nil {
		t.Fatalf("unknown tool must be a failed result, not a fault: %v", err)
	}
	if res.OK || !strings.Contains(res.Message, "unknown tool: teleport") {
		t.Errorf("result = %+v", res)
	}
}

func TestRegistryGenericDecodeFallback(t *testing.T) {
	reg := NewRegistry()
	var got map[string]any
	reg.Register(RegisteredTool{
		Definition: modelio.ToolDefinition{Name: "freeform"},
		Run: func(_ context.Context, payload any, _ ExecContext) (Result, error) {
			got = payload.(map[string]any)
			return Result{OK: true, Message: "ok"}, nil
		},
	})
	if _, err := reg.Execute(context.Background(),
		modelio.ToolCall{Name: "freeform", Input: json.RawMessage(`{"anything":"goes"}`)},
		ExecContext{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got["anything"] != "goes" {
		t.Errorf("payload = %v", got)
	}
}

func TestRegistryEmptyInput(t *testing.T) {
	reg := newSearchRegistry(t)
	res, err := reg.Execute(context.Background(),
		modelio.ToolCall{Name: "search", Input: nil}, ExecContext{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.OK || res.Message != "query=" {
		t.Errorf("result = %+v, want zero-value payload", res)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	reg := newSearchRegistry(t)
	defs := reg.Definitions()
	if len(defs) != 1 || defs[0].Name != "search" {
		t.Errorf("definitions = %+v", defs)
	}
	if reg.Count() != 1 {
		t.Errorf("count = %d", reg.Count())
	}
}
