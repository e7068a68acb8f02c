package router

import (
	"errors"
	"strings"
	"testing"
)

func TestExecuteAggregates(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want string
	}{
		{
			name: "sum",
			plan: Plan{Operation: opSum, Column: "revenue"},
			want: "sum of \"revenue\" in sales.csv: 400.5 (over 3 values)",
		},
		{
			name: "average",
			plan: Plan{Operation: opAverage, Column: "revenue"},
			want: "average of \"revenue\" in sales.csv: 133.5 (over 3 values)",
		},
		{
			name: "min",
			plan: Plan{Operation: opMin, Column: "revenue"},
			want: "min of \"revenue\" in sales.csv: 50 (over 3 values)",
		},
		{
			name: "max",
			plan: Plan{Operation: opMax, Column: "revenue"},
			want: "max of \"revenue\" in sales.csv: 250.5 (over 3 values)",
		},
		{
			name: "count rows",
			plan: Plan{Operation: opCount},
			want: "sales.csv has 3 rows.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Execute(tt.plan, salesDataset)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteGrouped(t *testing.T) {
	got, err := Execute(Plan{Operation: opSum, Column: "revenue", GroupBy: "region"}, salesDataset)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, "north: 150") {
		t.Errorf("grouped sum missing north total, got %q", got)
	}
	if !strings.Contains(got, "south: 250.5") {
		t.Errorf("grouped sum missing south total, got %q", got)
	}
}

func TestExecuteGroupedCount(t *testing.T) {
	got, err := Execute(Plan{Operation: opCount, GroupBy: "region"}, salesDataset)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, "north: 2") || !strings.Contains(got, "south: 1") {
		t.Errorf("grouped count = %q, want north: 2 and south: 1", got)
	}
}

func TestExecuteHead(t *testing.T) {
	got, err := Execute(Plan{Operation: opHead}, salesDataset)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, "region | revenue | quarter") {
		t.Errorf("head missing header row, got %q", got)
	}
	if !strings.Contains(got, "(3 rows total)") {
		t.Errorf("head missing row count, got %q", got)
	}
}

func TestExecuteDescribe(t *testing.T) {
	got, err := Execute(Plan{Operation: opDescribe}, salesDataset)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, "revenue: count=3 min=50 max=250.5 mean=133.5") {
		t.Errorf("describe missing numeric summary, got %q", got)
	}
	if !strings.Contains(got, "region: non-numeric, 3 values") {
		t.Errorf("describe missing non-numeric summary, got %q", got)
	}
}

func TestExecuteInvalid(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
	}{
		{name: "non-numeric column", plan: Plan{Operation: opSum, Column: "region"}},
		{name: "unknown column", plan: Plan{Operation: opSum, Column: "profit"}},
		{name: "unknown operation", plan: Plan{Operation: "pivot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Execute(tt.plan, salesDataset)
			if !errors.Is(err, ErrComputationInvalid) {
				t.Errorf("Execute error = %v, want ErrComputationInvalid", err)
			}
		})
	}
}
