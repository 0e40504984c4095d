package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/collector"
	"github.com/dshills/browser-search/internal/searcher"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeCanceled      = -32001 // The search was canceled before it finished
)

const maxLimit = 100

// handleSearchBrowsers handles the search_browsers tool invocation
func (s *Server) handleSearchBrowsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query := getStringDefault(args, "query", "")

	kind, err := collector.ParseKind(getStringDefault(args, "kind", "all"))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
			"param":   "kind",
			"reason":  err.Error(),
			"allowed": []string{"all", "bookmarks", "history"},
		})
	}

	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > maxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.Request{Query: query, Kind: kind, Limit: limit})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, newMCPError(ErrorCodeCanceled, "search canceled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		item := map[string]interface{}{
			"title":    r.Title,
			"url":      r.URL,
			"subtitle": r.Subtitle,
			"origin":   r.Origin.String(),
			"source":   r.Source,
		}
		if r.HasVisits() {
			item["visit_count"] = r.VisitCount
			item["last_visit"] = r.LastVisit.Format(time.RFC3339)
		}
		results = append(results, item)
	}

	response := map[string]interface{}{
		"query":         query,
		"kind":          resp.Kind.String(),
		"results":       results,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
	}

	if stats := resp.Stats; stats != nil {
		response["sources_scanned"] = stats.SourcesScanned
		response["sources_failed"] = stats.SourcesFailed
		if len(stats.ErrorMessages) > 0 {
			// Include first few errors
			errorCount := len(stats.ErrorMessages)
			if errorCount > 5 {
				response["errors"] = stats.ErrorMessages[:5]
				response["error_count"] = errorCount
			} else {
				response["errors"] = stats.ErrorMessages
			}
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListSources handles the list_sources tool invocation
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := s.registry.Discover()

	sources := make([]map[string]interface{}, 0, len(found))
	for _, src := range browser.Sources(found) {
		paths := found[src]
		sources = append(sources, map[string]interface{}{
			"name":      src.Name(),
			"key":       src.Key(),
			"bookmarks": describeFile(paths.Bookmarks),
			"history":   describeFile(paths.History),
		})
	}

	response := map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// describeFile reports a store path and its size, or nil when absent
func describeFile(path string) interface{} {
	if path == "" {
		return nil
	}
	out := map[string]interface{}{"path": path}
	if info, err := os.Stat(path); err == nil {
		out["size"] = humanize.Bytes(uint64(info.Size()))
	}
	return out
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
