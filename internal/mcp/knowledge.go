package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/radexhq/radex/internal/engine"
	"github.com/radexhq/radex/internal/reformulate"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"The question to answer from the knowledge base"`
}

// SearchInput is the input schema for the search_knowledge tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"The search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 5)"`
}

// StatsInput is the input schema for the folder_stats tool.
type StatsInput struct{}

func (s *Server) registerAsk() error {
	schema, err := jsonschema.For[AskInput](nil)
	if err != nil {
		return fmt.Errorf("schema for ask tool: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question from the documents the current user can access. " +
			"Routes automatically between tabular computation and document retrieval.",
		InputSchema: schema,
	}, s.Ask)
	return nil
}

func (s *Server) registerSearch() error {
	schema, err := jsonschema.For[SearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for search tool: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "search_knowledge",
		Description: "Search document chunks by semantic similarity within the current user's " +
			"accessible folders. Returns the raw matching excerpts with sources.",
		InputSchema: schema,
	}, s.SearchKnowledge)
	return nil
}

func (s *Server) registerStats() error {
	schema, err := jsonschema.For[StatsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for stats tool: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "folder_stats",
		Description: "List the folders the current user can query, with document and chunk counts.",
		InputSchema: schema,
	}, s.FolderStats)
	return nil
}

// Ask handles the ask MCP tool call.
func (s *Server) Ask(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Question) == "" {
		return errorResult("question must not be empty"), nil, nil
	}

	turns := []reformulate.Turn{{Role: reformulate.RoleUser, Content: input.Question}}
	answer, err := s.engine.Ask(ctx, s.user, turns)
	if err != nil {
		return nil, nil, fmt.Errorf("ask failed: %w", err)
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\nSources:\n")
		for _, src := range answer.Sources {
			fmt.Fprintf(&b, "- %s (%s, chunk %d, similarity %.2f)\n",
				src.Filename, src.FolderName, src.Ordinal, src.Similarity)
		}
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil, nil
}

// SearchKnowledge handles the search_knowledge MCP tool call.
func (s *Server) SearchKnowledge(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query must not be empty"), nil, nil
	}

	matches, err := s.engine.Search(ctx, s.user, input.Query, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("search failed: %w", err)
	}
	if len(matches) == 0 {
		return textResult(engine.NoResultsMessage), nil, nil
	}

	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] %s (%s, similarity %.2f)\n%s\n\n",
			i+1, m.Filename, m.FolderName, m.Similarity, m.Chunk.Content)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil, nil
}

// FolderStats handles the folder_stats MCP tool call.
func (s *Server) FolderStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, any, error) {
	stats, err := s.engine.Stats(ctx, s.user)
	if err != nil {
		return nil, nil, fmt.Errorf("folder stats failed: %w", err)
	}
	if len(stats) == 0 {
		return textResult("No accessible folders."), nil, nil
	}

	var b strings.Builder
	for _, fs := range stats {
		fmt.Fprintf(&b, "%s: %d documents, %d chunks\n", fs.FolderName, fs.Documents, fs.Chunks)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil, nil
}
