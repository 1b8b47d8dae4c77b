// Package server exposes outfit analysis over two transports: an MCP
// (Model Context Protocol) server on stdio and an HTTP API.
//
// # Protocol
//
// The MCP server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Full pipeline:
//   - outfit_analyze: Colors, style, category and outfit recommendations
//
// Feature extraction:
//   - outfit_dominant_colors: Extract the color palette
//   - outfit_name_color: Map a hex color to a color name and swatch
//   - outfit_style_features: Edge-based pattern features and texture
//   - outfit_detect_category: Aspect-ratio category
//
// Catalog:
//   - outfit_search_products: Query the product catalog directly
//
// # Image Caching
//
// The MCP server keeps decoded images in memory, keyed by path, so that
// several tool calls on one file decode it once. Analysis results are never
// cached.
//
// # HTTP API
//
//	POST /api/analyze-image   multipart form: file (image), gender (women|men)
//	GET  /api/health          {"status":"healthy"}
//
// Non-image uploads and unknown genders yield 400, analysis failures 500,
// both as {"detail": "..."}. CORS is restricted to configured origins.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Config{Searcher: searcher})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
