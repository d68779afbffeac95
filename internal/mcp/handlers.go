package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/catalog"
)

func (s *Server) handleSearchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := request.GetString("category", "")
	query := request.GetString("query", "")

	res := s.advisor.ApplyFilters(category, query)
	if len(res.Products) == 0 {
		return mcp.NewToolResultText(res.Placeholder), nil
	}
	return mcp.NewToolResultText(formatProducts(res.Products)), nil
}

func (s *Server) handleListSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := s.advisor.Selection()
	if len(view.Products) == 0 {
		return mcp.NewToolResultText(view.Summary), nil
	}
	return mcp.NewToolResultText(view.Summary + "\n\n" + formatProducts(view.Products)), nil
}

func (s *Server) handleToggleProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	view, err := s.advisor.ToggleProduct(ctx, id)
	if errors.Is(err, advisor.ErrUnknownProduct) {
		return mcp.NewToolResultError(fmt.Sprintf("no product with id %d", id)), nil
	}

	state := "Deselected"
	if view.Selected {
		state = "Selected"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s product %d. %s", state, id, view.Summary)), nil
}

func (s *Server) handleGenerateRoutine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatReply(s.advisor.GenerateRoutine(ctx))), nil
}

func (s *Server) handleAskAdvisor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	return mcp.NewToolResultText(formatReply(s.advisor.SendChat(ctx, message))), nil
}

func formatProducts(products []catalog.Product) string {
	var sb strings.Builder
	for i, p := range products {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%d] %s (%s, %s)", p.ID, p.Name, p.Brand, p.Category)
		if p.Description != "" {
			sb.WriteString(" - " + p.Description)
		}
	}
	return sb.String()
}

// formatReply drops the echoed user message and joins the rest. Notices
// are bracketed so clients can tell them from advisor text.
func formatReply(msgs []advisor.ChatMessage) string {
	var parts []string
	for _, m := range msgs {
		switch m.Role {
		case "user":
			continue
		case "system":
			parts = append(parts, "["+m.Text+"]")
		default:
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
