package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/lexrag/internal/index"
	"github.com/Aman-CERP/lexrag/internal/output"
	"github.com/Aman-CERP/lexrag/internal/search"
	"github.com/Aman-CERP/lexrag/pkg/version"
)

// Tool names.
const (
	ToolSearchDocuments = "search_documents"
	ToolIndexStatus     = "index_status"
)

// MaxLimit caps the number of hits a client may request.
const MaxLimit = 50

// Retriever is the engine surface the server needs.
type Retriever interface {
	Search(ctx context.Context, query string, k int, threshold float64) ([]search.Hit, error)
	Expand(ctx context.Context, query string) ([]string, error)
	Stats(ctx context.Context) (index.Stats, error)
}

// SearchInput defines the input schema for the search_documents tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the question or keywords to search for"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum score between 0 and 1"`
	Explain   bool     `json:"explain,omitempty" jsonschema:"include the expanded query terms"`
}

// SearchOutput defines the output schema for the search_documents tool.
type SearchOutput struct {
	Query string           `json:"query"`
	Terms []string         `json:"terms,omitempty" jsonschema:"expanded query terms, when explain is set"`
	Hits  []output.HitView `json:"hits" jsonschema:"matching chunks, best first"`
}

// IndexStatusInput defines the input schema for the index_status tool.
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Status         string  `json:"status" jsonschema:"ready when at least one chunk is indexed, otherwise empty"`
	Generation     uint64  `json:"generation" jsonschema:"index build counter"`
	Documents      int     `json:"documents"`
	Chunks         int     `json:"chunks"`
	Terms          int     `json:"terms" jsonschema:"vocabulary size"`
	AvgChunkLength float64 `json:"avg_chunk_length" jsonschema:"mean stems per chunk"`
	BuiltAt        string  `json:"built_at,omitempty" jsonschema:"RFC3339 build time"`
	BuildMillis    int64   `json:"build_ms"`
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        ToolSearchDocuments,
		Description: "Searches the indexed FAQ and support documents. Handles accents, plurals, synonyms and typos. Returns the best matching passages with their scores.",
	},
	{
		Name:        ToolIndexStatus,
		Description: "Reports how many documents, chunks and terms are indexed and when the index was last built.",
	},
}

// Server bridges MCP clients and the retrieval engine.
type Server struct {
	mcp       *mcp.Server
	retriever Retriever
	defaults  search.Config
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server over r. defaults supplies top-k and
// threshold when a client omits them.
func NewServer(r Retriever, defaults search.Config, opts ...Option) (*Server, error) {
	if r == nil {
		return nil, errors.New("retriever is required")
	}

	s := &Server{
		retriever: r,
		defaults:  defaults,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    version.Name,
		Version: version.Get().Version,
	}, nil)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[1].Name,
		Description: tools[1].Description,
	}, s.mcpIndexStatusHandler)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", len(tools)))
}

// SearchDocuments runs one search. A zero limit or nil threshold falls back
// to the server defaults; limits above MaxLimit are clamped.
func (s *Server) SearchDocuments(ctx context.Context, input SearchInput) (SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return SearchOutput{}, NewInvalidParamsError("query parameter is required and must be non-empty")
	}
	if input.Limit < 0 {
		return SearchOutput{}, NewInvalidParamsError("limit must be positive")
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.defaults.TopK
	}
	limit = min(limit, MaxLimit)

	threshold := s.defaults.Threshold
	if input.Threshold != nil {
		threshold = *input.Threshold
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return SearchOutput{}, NewInvalidParamsError("threshold must be between 0 and 1")
		}
	}

	start := time.Now()
	requestID := generateRequestID()

	hits, err := s.retriever.Search(ctx, query, limit, threshold)
	if err != nil {
		s.logger.Error("mcp_search_failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return SearchOutput{}, MapError(err)
	}

	out := SearchOutput{Query: query, Hits: output.Views(hits)}
	if input.Explain {
		if out.Terms, err = s.retriever.Expand(ctx, query); err != nil {
			return SearchOutput{}, MapError(err)
		}
	}

	s.logger.Info("mcp_search_completed",
		slog.String("request_id", requestID),
		slog.Int("limit", limit),
		slog.Float64("threshold", threshold),
		slog.Int("result_count", len(hits)),
		slog.Duration("duration", time.Since(start)))

	return out, nil
}

// IndexStatus reports statistics for the current index, building it if stale.
func (s *Server) IndexStatus(ctx context.Context) (IndexStatusOutput, error) {
	st, err := s.retriever.Stats(ctx)
	if err != nil {
		return IndexStatusOutput{}, MapError(err)
	}
	out := IndexStatusOutput{
		Status:         "empty",
		Generation:     st.Generation,
		Documents:      st.Documents,
		Chunks:         st.Chunks,
		Terms:          st.Terms,
		AvgChunkLength: st.AvgChunkLength,
		BuildMillis:    st.Duration.Milliseconds(),
	}
	if st.Chunks > 0 {
		out.Status = "ready"
	}
	if !st.BuiltAt.IsZero() {
		out.BuiltAt = st.BuiltAt.Format(time.RFC3339)
	}
	return out, nil
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	out, err := s.SearchDocuments(ctx, input)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSearchResults(out)}},
	}, out, nil
}

func (s *Server) mcpIndexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	out, err := s.IndexStatus(ctx)
	if err != nil {
		return nil, IndexStatusOutput{}, err
	}
	return nil, out, nil
}

// Serve runs the server on stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_started", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return fmt.Errorf("mcp server: %w", err)
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}

// generateRequestID creates a short request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
