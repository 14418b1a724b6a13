package mcpServer

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/intelliagent/internal/adapter"
	"github.com/akolanti/intelliagent/internal/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the indexed document"`
}

type AskOutput struct {
	Answer       string            `json:"answer"`
	Cached       bool              `json:"cached"`
	Verification *api.Verification `json:"verification,omitempty"`
	Sources      []api.Source      `json:"sources"`
}

type ClearInput struct{}

type ClearOutput struct {
	Message string `json:"message"`
}

type StatusInput struct{}

type StatusOutput struct {
	Indexed  bool                  `json:"indexed"`
	Document *api.DocumentResponse `json:"document,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using only the currently indexed document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_document",
		Description: "Remove the indexed document from the knowledge base",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Describe the currently indexed document, if any",
	}, s.handleStatus)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question must not be empty")
	}
	answer, err := s.service.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, s.toolError(ctx, "ask_document", err)
	}

	res := adapter.ToQueryResponse(answer)
	sources := res.Sources
	if sources == nil {
		sources = []api.Source{}
	}
	return nil, AskOutput{
		Answer:       res.Answer,
		Cached:       res.Cached,
		Verification: res.Verification,
		Sources:      sources,
	}, nil
}

func (s *Server) handleClear(ctx context.Context, _ *mcp.CallToolRequest, _ ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.service.Clear(ctx); err != nil {
		return nil, ClearOutput{}, s.toolError(ctx, "clear_document", err)
	}
	return nil, ClearOutput{Message: "Knowledge base cleared."}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	doc, ok := s.service.CurrentDocument(ctx)
	if !ok {
		return nil, StatusOutput{}, nil
	}
	return nil, StatusOutput{Indexed: true, Document: adapter.ToDocumentResponse(doc)}, nil
}

// toolError logs the cause and hands the client the same generic text the REST API uses.
func (s *Server) toolError(ctx context.Context, tool string, err error) error {
	s.logger.WithContext(ctx).Error("tool failed", "tool", tool, "error", err)
	_, body := adapter.ToErrorResponse(err)
	return errors.New(body.Detail)
}
