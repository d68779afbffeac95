package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchProductsTool defines the search_products MCP tool.
var searchProductsTool = mcp.NewTool("search_products",
	mcp.WithDescription("Browse the product catalog by category and/or free-text search over name, brand and description."),
	mcp.WithString("category",
		mcp.Description("Exact category to filter by, e.g. skincare"),
	),
	mcp.WithString("query",
		mcp.Description("Case-insensitive search text"),
	),
)

// listSelectionTool defines the list_selection MCP tool.
var listSelectionTool = mcp.NewTool("list_selection",
	mcp.WithDescription("List the products currently selected for routine generation."),
)

// toggleProductTool defines the toggle_product MCP tool.
var toggleProductTool = mcp.NewTool("toggle_product",
	mcp.WithDescription("Select a product, or deselect it if it is already selected."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Product id from search_products"),
	),
)

// generateRoutineTool defines the generate_routine MCP tool.
var generateRoutineTool = mcp.NewTool("generate_routine",
	mcp.WithDescription("Build a personalized AM routine from the selected products. Starts a new conversation."),
)

// askAdvisorTool defines the ask_advisor MCP tool.
var askAdvisorTool = mcp.NewTool("ask_advisor",
	mcp.WithDescription("Send a follow-up message to the beauty advisor. Reply YES after a routine to get the PM routine."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Message for the advisor"),
	),
)
