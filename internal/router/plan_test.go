package router

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGeneratePlan(t *testing.T) {
	completer := &mockCompleter{response: `{"file": "sales.csv", "column": "revenue", "operation": "sum", "group_by": ""}`}
	r := newTestRouter(t, completer, nil)

	plan, err := r.GeneratePlan(context.Background(), "total revenue", salesDataset)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.Operation != opSum || plan.Column != "revenue" {
		t.Errorf("plan = %+v, want sum over revenue", plan)
	}
	if !strings.Contains(completer.lastPrompt, "region, revenue, quarter") {
		t.Errorf("prompt missing column list, got %q", completer.lastPrompt)
	}
}

func TestGeneratePlanFencedJSON(t *testing.T) {
	completer := &mockCompleter{response: "```json\n{\"file\": \"sales.csv\", \"column\": \"revenue\", \"operation\": \"average\"}\n```"}
	r := newTestRouter(t, completer, nil)

	plan, err := r.GeneratePlan(context.Background(), "average revenue", salesDataset)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.Operation != opAverage {
		t.Errorf("plan.Operation = %q, want average", plan.Operation)
	}
}

func TestGeneratePlanRetargetsWrongFile(t *testing.T) {
	completer := &mockCompleter{response: `{"file": "other.csv", "column": "revenue", "operation": "max"}`}
	r := newTestRouter(t, completer, nil)

	plan, err := r.GeneratePlan(context.Background(), "highest revenue", salesDataset)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.File != "sales.csv" {
		t.Errorf("plan.File = %q, want retarget to sales.csv", plan.File)
	}
}

func TestGeneratePlanInvalid(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "completion error", err: errors.New("service down")},
		{name: "not json", response: "sum the revenue column"},
		{name: "unknown operation", response: `{"file": "sales.csv", "column": "revenue", "operation": "median"}`},
		{name: "unknown column", response: `{"file": "sales.csv", "column": "profit", "operation": "sum"}`},
		{name: "unknown group_by", response: `{"file": "sales.csv", "column": "revenue", "operation": "sum", "group_by": "country"}`},
		{name: "missing column for sum", response: `{"file": "sales.csv", "operation": "sum"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{response: tt.response, err: tt.err}
			r := newTestRouter(t, completer, nil)

			_, err := r.GeneratePlan(context.Background(), "some question", salesDataset)
			if !errors.Is(err, ErrComputationInvalid) {
				t.Errorf("GeneratePlan error = %v, want ErrComputationInvalid", err)
			}
		})
	}
}
