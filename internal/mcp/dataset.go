package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/radexhq/radex/internal/router"
)

// DatasetInput identifies one tabular document by filename.
type DatasetInput struct {
	Filename string `json:"filename" jsonschema:"The tabular document's filename, e.g. sales.csv"`
}

// AggregateInput is the input schema for the dataset_aggregate tool.
type AggregateInput struct {
	Filename  string `json:"filename" jsonschema:"The tabular document's filename"`
	Operation string `json:"operation" jsonschema:"One of sum, average, count, min, max"`
	Column    string `json:"column,omitempty" jsonschema:"The column to aggregate (optional for count)"`
	GroupBy   string `json:"group_by,omitempty" jsonschema:"Optional column to group results by"`
}

func (s *Server) registerDatasetTools() error {
	datasetSchema, err := jsonschema.For[DatasetInput](nil)
	if err != nil {
		return fmt.Errorf("schema for dataset tools: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "dataset_head",
		Description: "Show the first rows of a tabular document the current user can access.",
		InputSchema: datasetSchema,
	}, s.DatasetHead)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "dataset_describe",
		Description: "Summarize a tabular document: row count plus min, max, and mean " +
			"for every numeric column.",
		InputSchema: datasetSchema,
	}, s.DatasetDescribe)

	aggregateSchema, err := jsonschema.For[AggregateInput](nil)
	if err != nil {
		return fmt.Errorf("schema for aggregate tool: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "dataset_aggregate",
		Description: "Run a deterministic aggregation (sum, average, count, min, max) over one " +
			"column of a tabular document, optionally grouped by another column.",
		InputSchema: aggregateSchema,
	}, s.DatasetAggregate)

	return nil
}

// DatasetHead handles the dataset_head MCP tool call.
func (s *Server) DatasetHead(ctx context.Context, _ *mcp.CallToolRequest, input DatasetInput) (*mcp.CallToolResult, any, error) {
	return s.runDatasetPlan(ctx, input.Filename, router.Plan{Operation: "head"})
}

// DatasetDescribe handles the dataset_describe MCP tool call.
func (s *Server) DatasetDescribe(ctx context.Context, _ *mcp.CallToolRequest, input DatasetInput) (*mcp.CallToolResult, any, error) {
	return s.runDatasetPlan(ctx, input.Filename, router.Plan{Operation: "describe"})
}

// DatasetAggregate handles the dataset_aggregate MCP tool call.
func (s *Server) DatasetAggregate(ctx context.Context, _ *mcp.CallToolRequest, input AggregateInput) (*mcp.CallToolResult, any, error) {
	return s.runDatasetPlan(ctx, input.Filename, router.Plan{
		Operation: strings.ToLower(strings.TrimSpace(input.Operation)),
		Column:    input.Column,
		GroupBy:   input.GroupBy,
	})
}

// runDatasetPlan resolves the dataset by filename within the user's scope
// and executes the plan against it. Invalid computations come back as tool
// errors the agent can recover from, not protocol failures.
func (s *Server) runDatasetPlan(ctx context.Context, filename string, plan router.Plan) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(filename) == "" {
		return errorResult("filename must not be empty"), nil, nil
	}

	datasets, err := s.engine.Datasets(ctx, s.user)
	if err != nil {
		return nil, nil, fmt.Errorf("listing datasets: %w", err)
	}

	var target *router.Dataset
	for i := range datasets {
		if strings.EqualFold(datasets[i].Filename, filename) {
			target = &datasets[i]
			break
		}
	}
	if target == nil {
		if len(datasets) == 0 {
			return errorResult("no tabular documents accessible"), nil, nil
		}
		names := make([]string, len(datasets))
		for i, ds := range datasets {
			names[i] = ds.Filename
		}
		return errorResult("no tabular document named %q; available: %s",
			filename, strings.Join(names, ", ")), nil, nil
	}

	plan.File = target.Filename
	text, err := router.Execute(plan, *target)
	if err != nil {
		if errors.Is(err, router.ErrComputationInvalid) {
			return errorResult("%v", err), nil, nil
		}
		return nil, nil, fmt.Errorf("executing plan: %w", err)
	}
	return textResult(text), nil, nil
}
