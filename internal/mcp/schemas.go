package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchBrowsersTool returns the tool definition for search_browsers
func searchBrowsersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_browsers",
		Description: "Search local browser bookmarks and history, ranked by fuzzy title match and visit freshness",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query. Join terms with '&' to require all of them or '|' to accept any. Empty matches everything.",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Which stores to search",
					"enum":        []string{"all", "bookmarks", "history"},
					"default":     "all",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     30,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// listSourcesTool returns the tool definition for list_sources
func listSourcesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_sources",
		Description: "List the enabled browsers and the bookmark and history files found for each",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
