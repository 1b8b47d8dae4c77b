package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/outfit-analyzer/internal/catalog"
	"github.com/ironsheep/outfit-analyzer/internal/imaging"
	"github.com/ironsheep/outfit-analyzer/internal/outfit"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
	"github.com/ironsheep/outfit-analyzer/internal/style"
)

// Name is reported as serverInfo.name during initialize.
const Name = "outfit-analyzer"

// Server handles MCP protocol communication
type Server struct {
	cache     *imaging.ImageCache
	analyzer  *outfit.Analyzer
	searcher  catalog.Searcher
	quantizer *palette.Quantizer
	namer     *palette.Namer
	style     *style.Analyzer
	numColors int
	version   string
	logger    hclog.Logger
}

// Config configures a Server.
type Config struct {
	// Searcher backs outfit_search_products and the recommendations of
	// outfit_analyze. If nil, catalog.FallbackSearcher is used.
	Searcher catalog.Searcher

	// Analyzer runs outfit_analyze. If nil, one is built around Searcher.
	Analyzer *outfit.Analyzer

	// NumColors is the default count for outfit_dominant_colors.
	NumColors int

	// Version is reported as serverInfo.version.
	Version string

	Logger hclog.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	searcher := cfg.Searcher
	if searcher == nil {
		searcher = catalog.NewFallbackSearcher(nil)
	}
	numColors := cfg.NumColors
	if numColors <= 0 {
		numColors = palette.DefaultColorCount
	}
	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = outfit.New(outfit.Config{
			Searcher:  searcher,
			NumColors: numColors,
			Logger:    logger.Named("analyzer"),
		})
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		cache:     imaging.NewImageCache(),
		analyzer:  analyzer,
		searcher:  searcher,
		quantizer: palette.NewQuantizer(),
		namer:     palette.NewNamer(nil),
		style:     style.NewAnalyzer(),
		numColors: numColors,
		version:   version,
		logger:    logger,
	}
}

// Run serves MCP on stdin and stdout until stdin is closed.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited requests from r and writes responses to w.
// It returns when r is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": s.version,
			},
		},
	}
}
