package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/radexhq/radex/internal/log"
)

type mockCompleter struct {
	response   string
	err        error
	callCount  int
	lastSystem string
	lastPrompt string
}

func (m *mockCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	m.callCount++
	m.lastSystem = system
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type fixedMaterializer struct {
	datasets map[string]Dataset
	err      error
	calls    int
}

func (m *fixedMaterializer) Materialize(_ context.Context, _, filename string) (Dataset, error) {
	m.calls++
	if m.err != nil {
		return Dataset{}, m.err
	}
	ds, ok := m.datasets[filename]
	if !ok {
		return Dataset{}, errors.New("no such dataset")
	}
	return ds, nil
}

func newTestRouter(t *testing.T, completer *mockCompleter, mat Materializer, opts ...Option) *Router {
	t.Helper()
	if mat == nil {
		mat = &fixedMaterializer{}
	}
	r, err := New(completer, mat, log.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

var salesDataset = Dataset{
	Filename: "sales.csv",
	Columns:  []string{"region", "revenue", "quarter"},
	Rows: [][]string{
		{"north", "100", "Q1"},
		{"south", "250.5", "Q1"},
		{"north", "50", "Q2"},
	},
}

func TestClassifyDocIntentOverridesDatasets(t *testing.T) {
	completer := &mockCompleter{response: "STRUCTURED"}
	r := newTestRouter(t, completer, nil)

	got := r.Classify(context.Background(), "explain the sales report format", []Dataset{salesDataset})
	if got != RouteUnstructured {
		t.Errorf("Classify = %v, want %v for doc-intent question", got, RouteUnstructured)
	}
	if completer.callCount != 0 {
		t.Errorf("completer called %d times on the keyword fast path, want 0", completer.callCount)
	}
}

func TestClassifyNoDatasets(t *testing.T) {
	completer := &mockCompleter{response: "STRUCTURED"}
	r := newTestRouter(t, completer, nil)

	got := r.Classify(context.Background(), "sum of all revenue", nil)
	if got != RouteUnstructured {
		t.Errorf("Classify = %v, want %v with no datasets", got, RouteUnstructured)
	}
	if completer.callCount != 0 {
		t.Error("completer should not be consulted with no datasets")
	}
}

func TestClassifyLLMDecision(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Route
	}{
		{name: "structured label", response: "STRUCTURED", want: RouteStructured},
		{name: "structured with whitespace", response: "  structured\n", want: RouteStructured},
		{name: "document label", response: "DOCUMENT", want: RouteUnstructured},
		{name: "unexpected label", response: "MAYBE", want: RouteUnstructured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{response: tt.response}
			r := newTestRouter(t, completer, nil)

			got := r.Classify(context.Background(), "total revenue per region", []Dataset{salesDataset})
			if got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
			if !strings.Contains(completer.lastPrompt, "sales.csv: 3 columns") {
				t.Errorf("prompt missing file description, got %q", completer.lastPrompt)
			}
		})
	}
}

func TestClassifyFallbackKeywords(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Route
	}{
		{name: "aggregation term", question: "total revenue last year", want: RouteStructured},
		{name: "group by term", question: "revenue group by region", want: RouteStructured},
		{name: "no data term", question: "tell me about the project", want: RouteUnstructured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{err: errors.New("service down")}
			r := newTestRouter(t, completer, nil)

			got := r.Classify(context.Background(), tt.question, []Dataset{salesDataset})
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}
