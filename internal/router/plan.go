package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Plan is a validated computation over one dataset. Operation is one of the
// opX constants; Column is empty only for count and head and describe;
// GroupBy is optional.
type Plan struct {
	File      string `json:"file"`
	Column    string `json:"column"`
	Operation string `json:"operation"`
	GroupBy   string `json:"group_by"`
}

// Supported operations.
const (
	opSum      = "sum"
	opAverage  = "average"
	opCount    = "count"
	opMin      = "min"
	opMax      = "max"
	opHead     = "head"
	opDescribe = "describe"
)

const planTimeout = 20 * time.Second

const planSystemPrompt = `You translate a question into a single JSON computation plan for a table.
Schema: {"file": "<filename>", "column": "<column name>", "operation": "<op>", "group_by": "<column name or empty>"}
Operations: sum, average, count, min, max, head, describe.
Use "head" to show sample rows and "describe" for a column summary.
Column names must be copied exactly from the provided list.
Return only the JSON object, no markdown fences, no commentary.`

// GeneratePlan asks the completion service for a computation plan against
// ds and validates it.
//
// A plan naming a different file than the selected dataset is retargeted to
// ds rather than rejected. An unknown operation or a column absent from the
// dataset is recoverable and reported as ErrComputationInvalid.
func (r *Router) GeneratePlan(ctx context.Context, question string, ds Dataset) (Plan, error) {
	prompt := fmt.Sprintf("Question: %q\n\nFile: %s\nColumns: %s\n\nPlan:",
		question, ds.Filename, strings.Join(ds.Columns, ", "))

	callCtx, cancel := context.WithTimeout(ctx, planTimeout)
	defer cancel()

	raw, err := r.completer.Complete(callCtx, planSystemPrompt, prompt)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: plan generation failed: %v", ErrComputationInvalid, err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return Plan{}, err
	}

	if !strings.EqualFold(plan.File, ds.Filename) {
		r.logger.Debug("plan named a different file, retargeting",
			"planned", plan.File, "selected", ds.Filename)
		plan.File = ds.Filename
	}

	if err := validatePlan(plan, ds); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// parsePlan decodes the completion output, tolerating markdown fences the
// service sometimes wraps JSON in.
func parsePlan(raw string) (Plan, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return Plan{}, fmt.Errorf("%w: malformed plan: %v", ErrComputationInvalid, err)
	}
	return plan, nil
}

func validatePlan(plan Plan, ds Dataset) error {
	switch plan.Operation {
	case opSum, opAverage, opMin, opMax:
		if plan.Column == "" {
			return fmt.Errorf("%w: operation %q requires a column", ErrComputationInvalid, plan.Operation)
		}
	case opCount, opHead, opDescribe:
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrComputationInvalid, plan.Operation)
	}

	if plan.Column != "" {
		if _, ok := columnIndex(ds, plan.Column); !ok {
			return fmt.Errorf("%w: column %q not in %s", ErrComputationInvalid, plan.Column, ds.Filename)
		}
	}
	if plan.GroupBy != "" {
		if _, ok := columnIndex(ds, plan.GroupBy); !ok {
			return fmt.Errorf("%w: group_by column %q not in %s", ErrComputationInvalid, plan.GroupBy, ds.Filename)
		}
	}
	return nil
}

// columnIndex resolves a column name case-insensitively.
func columnIndex(ds Dataset, name string) (int, bool) {
	for i, col := range ds.Columns {
		if strings.EqualFold(col, name) {
			return i, true
		}
	}
	return 0, false
}
