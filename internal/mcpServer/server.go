package mcpServer

import (
	"context"
	"net/http"

	"github.com/akolanti/intelliagent/internal/rag"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

// Server exposes the document pipeline as MCP tools, over stdio for the CLI and over
// streamable HTTP next to the REST API.
type Server struct {
	service rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(service rag.Service) *Server {
	s := &Server{
		service: service,
		server:  mcp.NewServer(&mcp.Implementation{Name: "intelliagent", Version: Version}, nil),
		logger:  logger_i.NewLogger("mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
