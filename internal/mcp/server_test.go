package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/prefs"
)

type mockProvider struct {
	reply string
	last  llm.CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.last = req
	return &llm.CompletionResponse{Content: m.reply, FinishReason: "stop"}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()
	store, err := prefs.NewStore(prefs.StoreTypeMemory)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	cat := catalog.New([]catalog.Product{
		{ID: 1, Name: "Hydrating Cleanser", Brand: "CeraVe", Category: "cleanser", Description: "Gentle cleanser."},
		{ID: 2, Name: "Revitalift Serum", Brand: "L'Oreal Paris", Category: "skincare", Description: "Serum with pure hyaluronic acid."},
	})
	a := advisor.New(advisor.Options{
		Load:     func(context.Context) (*catalog.Catalog, error) { return cat, nil },
		Prefs:    store,
		Provider: provider,
	})
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewServer(a)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := r.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", r.Content[0])
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_products", searchProductsTool, "search_products"},
		{"list_selection", listSelectionTool, "list_selection"},
		{"toggle_product", toggleProductTool, "toggle_product"},
		{"generate_routine", generateRoutineTool, "generate_routine"},
		{"ask_advisor", askAdvisorTool, "ask_advisor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.advisor == nil {
		t.Error("advisor not set")
	}
}

func TestHandleSearchProducts(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("by query", func(t *testing.T) {
		result, err := srv.handleSearchProducts(ctx, call(map[string]any{"query": "serum"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "[2] Revitalift Serum") || strings.Contains(text, "Cleanser") {
			t.Errorf("unexpected result %q", text)
		}
	})

	t.Run("no filters", func(t *testing.T) {
		result, _ := srv.handleSearchProducts(ctx, call(map[string]any{}))
		if got := resultText(t, result); got != catalog.PlaceholderNoFilter {
			t.Errorf("expected placeholder, got %q", got)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		result, _ := srv.handleSearchProducts(ctx, call(map[string]any{"category": "makeup"}))
		if got := resultText(t, result); got != catalog.PlaceholderNoMatches {
			t.Errorf("expected no-matches placeholder, got %q", got)
		}
	})
}

func TestHandleToggleAndList(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	result, err := srv.handleToggleProduct(ctx, call(map[string]any{"id": float64(1)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError || !strings.HasPrefix(resultText(t, result), "Selected product 1.") {
		t.Errorf("unexpected toggle result %q", resultText(t, result))
	}

	result, _ = srv.handleListSelection(ctx, call(nil))
	if text := resultText(t, result); !strings.Contains(text, "1 product selected") || !strings.Contains(text, "Hydrating Cleanser") {
		t.Errorf("unexpected selection %q", text)
	}

	result, _ = srv.handleToggleProduct(ctx, call(map[string]any{"id": float64(1)}))
	if !strings.HasPrefix(resultText(t, result), "Deselected product 1.") {
		t.Errorf("unexpected toggle result %q", resultText(t, result))
	}

	result, _ = srv.handleToggleProduct(ctx, call(map[string]any{"id": float64(42)}))
	if !result.IsError {
		t.Error("expected error for unknown product")
	}

	result, _ = srv.handleToggleProduct(ctx, call(map[string]any{}))
	if !result.IsError {
		t.Error("expected error for missing id")
	}
}

func TestHandleGenerateRoutine(t *testing.T) {
	provider := &mockProvider{reply: "AM: cleanse, then serum."}
	srv := newTestServer(t, provider)
	ctx := context.Background()

	result, _ := srv.handleGenerateRoutine(ctx, call(nil))
	if got := resultText(t, result); got != "["+advisor.MsgEmptySelection+"]" {
		t.Errorf("expected empty-selection notice, got %q", got)
	}

	srv.handleToggleProduct(ctx, call(map[string]any{"id": float64(2)}))
	result, _ = srv.handleGenerateRoutine(ctx, call(nil))
	if got := resultText(t, result); got != "AM: cleanse, then serum." {
		t.Errorf("unexpected routine %q", got)
	}
	if !strings.Contains(provider.last.Messages[1].Content, "1. Revitalift Serum (Skincare)") {
		t.Errorf("routine request missing product line: %q", provider.last.Messages[1].Content)
	}
}

func TestHandleAskAdvisor(t *testing.T) {
	srv := newTestServer(t, &mockProvider{reply: "Apply at night."})
	ctx := context.Background()

	result, err := srv.handleAskAdvisor(ctx, call(map[string]any{"message": "When should I use retinol?"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, result); got != "Apply at night." {
		t.Errorf("unexpected reply %q", got)
	}

	result, _ = srv.handleAskAdvisor(ctx, call(map[string]any{}))
	if !result.IsError {
		t.Error("expected error for missing message")
	}
}

func TestHandleAskAdvisorUnconfigured(t *testing.T) {
	srv := newTestServer(t, llm.Unconfigured{})

	result, _ := srv.handleAskAdvisor(context.Background(), call(map[string]any{"message": "hi"}))
	if got := resultText(t, result); got != "["+advisor.MsgUnconfigured+"]" {
		t.Errorf("expected unconfigured notice, got %q", got)
	}
}
