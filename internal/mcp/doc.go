// Package mcp implements the Model Context Protocol (MCP) server for browser
// search.
//
// The server exposes two tools:
//   - search_browsers: Search bookmarks and history across enabled browsers
//   - list_sources: Show which browser stores were found
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport. Stdout carries protocol
// messages only; logs go to stderr.
//
//	browsersearch serve
//
// # Tool: search_browsers
//
//	Request:
//	{
//	  "name": "search_browsers",
//	  "arguments": {"query": "golang&blog", "kind": "history", "limit": 10}
//	}
//
//	Response:
//	{
//	  "query": "golang&blog",
//	  "kind": "history",
//	  "results": [
//	    {
//	      "title": "The Go Blog",
//	      "url": "https://go.dev/blog/",
//	      "subtitle": "Last visit: 06.05.2024 (Visits: 12)",
//	      "origin": "history",
//	      "source": "Google Chrome",
//	      "visit_count": 12,
//	      "last_visit": "2024-05-06T07:08:09Z"
//	    }
//	  ],
//	  "total_results": 1,
//	  "sources_scanned": 3,
//	  "sources_failed": 0,
//	  "cache_hit": false,
//	  "duration_ms": 84
//	}
//
// A source that fails is reported in "errors" and does not fail the call.
//
// # Tool: list_sources
//
//	Response:
//	{
//	  "sources": [
//	    {
//	      "name": "Firefox",
//	      "key": "firefox",
//	      "bookmarks": {"path": ".../places.sqlite", "size": "5.2 MB"},
//	      "history": {"path": ".../places.sqlite", "size": "5.2 MB"}
//	    }
//	  ],
//	  "count": 1
//	}
//
// # Error Codes
//
//   - -32602 Invalid params (bad kind or limit)
//   - -32603 Internal error
//   - -32001 Search canceled
package mcp
