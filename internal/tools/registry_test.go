package tools

import (
	"context"
	"errors"
	"testing"

	"nansc/internal/intent"
	"nansc/internal/telemetry"
)

func noop(ctx context.Context, args map[string]any) (string, error) { return "", nil }

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	tool := &Tool{
		Name:        "lookup_airport",
		Description: "Look up an ICAO code",
		Category:    CategoryAirport,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "success", nil
		},
	}

	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("lookup_airport")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Priority != 50 {
		t.Errorf("default priority = %d, want 50", got.Priority)
	}
	if !reg.Has("lookup_airport") || reg.Has("missing") {
		t.Error("Has reported the wrong membership")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()

	tool := &Tool{Name: "dupe", Category: CategoryAirport, Execute: noop}

	if err := reg.Register(tool); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := reg.Register(tool)
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{name: "empty name", tool: &Tool{Name: "", Execute: noop}, wantErr: ErrToolNameEmpty},
		{name: "nil execute", tool: &Tool{Name: "test", Execute: nil}, wantErr: ErrToolExecuteNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetByCategory(t *testing.T) {
	reg := NewRegistry()

	for _, tool := range []*Tool{
		{Name: "web_search", Category: CategoryResearch, Priority: 80, Execute: noop},
		{Name: "web_fetch", Category: CategoryResearch, Priority: 60, Execute: noop},
		{Name: "lookup_airport", Category: CategoryAirport, Execute: noop},
	} {
		reg.MustRegister(tool)
	}

	research := reg.GetByCategory(CategoryResearch)
	if len(research) != 2 {
		t.Fatalf("expected 2 research tools, got %d", len(research))
	}
	if research[0].Name != "web_search" {
		t.Errorf("expected web_search first (priority 80), got %s", research[0].Name)
	}

	names := reg.Names()
	if len(names) != 3 || names[0] != "lookup_airport" {
		t.Errorf("Names() = %v", names)
	}
}

func TestExecute(t *testing.T) {
	reg := NewRegistry()

	reg.MustRegister(&Tool{
		Name:     "echo",
		Category: CategoryAirport,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			msg, err := StringArg(args, "message")
			if err != nil {
				return "", err
			}
			return "Echo: " + msg, nil
		},
		Schema: ToolSchema{
			Required:   []string{"message"},
			Properties: map[string]Property{"message": {Type: "string"}},
		},
	})

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"message": " hello "})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Result != "Echo: hello" {
		t.Errorf("got result %q, want %q", result.Result, "Echo: hello")
	}
	if !result.IsSuccess() {
		t.Error("expected IsSuccess to be true")
	}

	result, err = reg.Execute(context.Background(), "echo", map[string]any{})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Errorf("expected ErrMissingRequiredArg, got %v", err)
	}
	if result == nil || result.IsSuccess() {
		t.Error("missing argument must produce a failed result")
	}

	_, err = reg.Execute(context.Background(), "echo", map[string]any{"message": 42})
	if !errors.Is(err, ErrInvalidArgType) {
		t.Errorf("expected ErrInvalidArgType, got %v", err)
	}

	_, err = reg.Execute(context.Background(), "nonexistent", map[string]any{})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestIntArg(t *testing.T) {
	n, err := IntArg(map[string]any{"k": float64(3)}, "k", 1)
	if err != nil || n != 3 {
		t.Errorf("float64 arg: got %d, %v", n, err)
	}
	n, err = IntArg(map[string]any{}, "k", 7)
	if err != nil || n != 7 {
		t.Errorf("absent arg: got %d, %v", n, err)
	}
	n, err = IntArg(map[string]any{"k": " 5"}, "k", 1)
	if err != nil || n != 5 {
		t.Errorf("numeric string arg: got %d, %v", n, err)
	}
	if _, err := IntArg(map[string]any{"k": "three"}, "k", 1); !errors.Is(err, ErrInvalidArgType) {
		t.Errorf("string arg: expected ErrInvalidArgType, got %v", err)
	}
	if _, err := IntArg(map[string]any{"k": true}, "k", 1); !errors.Is(err, ErrInvalidArgType) {
		t.Errorf("bool arg: expected ErrInvalidArgType, got %v", err)
	}
}

func TestForCandidates(t *testing.T) {
	reg := NewRegistry()

	for _, tool := range []*Tool{
		{Name: "lookup_airport", Category: CategoryAirport, Execute: noop},
		{Name: "bridge_aftn_to_amhs", Category: CategoryAddressing, Execute: noop},
		{Name: "web_search", Category: CategoryResearch, Execute: noop},
	} {
		reg.MustRegister(tool)
	}

	got := reg.ForCandidates([]intent.Candidate{
		{Kind: intent.KindLegacyAddress, Token: "HECAYFYX"},
		{Kind: intent.KindAirportCode, Token: "OJAI"},
		{Kind: intent.KindLegacyAddress, Token: "OJAIZTZX"},
	})
	if len(got) != 2 || got[0].Name != "bridge_aftn_to_amhs" || got[1].Name != "lookup_airport" {
		t.Errorf("ForCandidates returned wrong tools: %v", got)
	}

	if all := reg.ForCandidates(nil); len(all) != 3 {
		t.Errorf("no candidates should return every tool, got %d", len(all))
	}
}

func TestExecuteRecordsTelemetry(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{Name: "lookup_airport", Category: CategoryAirport, Execute: noop})

	svc := telemetry.NewService(nil)
	ctx := telemetry.NewContext(context.Background(), svc)

	if _, err := reg.Execute(ctx, "lookup_airport", map[string]any{}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := svc.Metrics().ToolUsage; got != 1 {
		t.Errorf("ToolUsage = %d, want 1", got)
	}

	// No service in the context means nothing is recorded.
	if _, err := reg.Execute(context.Background(), "lookup_airport", map[string]any{}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := svc.Metrics().ToolUsage; got != 1 {
		t.Errorf("ToolUsage = %d, want 1", got)
	}
}
