package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/radexhq/radex/internal/knowledge"
	"github.com/radexhq/radex/internal/log"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, &fixedMaterializer{}, log.NewNop()); err == nil {
		t.Error("New should reject a nil completer")
	}
	if _, err := New(&mockCompleter{}, nil, log.NewNop()); err == nil {
		t.Error("New should reject a nil materializer")
	}
}

func TestAnswerStructuredQuestion(t *testing.T) {
	completer := &mockCompleter{response: `{"file": "sales.csv", "column": "revenue", "operation": "sum"}`}
	mat := &fixedMaterializer{datasets: map[string]Dataset{"sales.csv": salesDataset}}
	r := newTestRouter(t, completer, mat)

	docs := []knowledge.Document{{
		FolderID:  uuid.New(),
		Filename:  "sales.csv",
		ObjectKey: "folder/sales.csv",
	}}

	got, err := r.Answer(context.Background(), uuid.New(), "total revenue", docs)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(got, "400.5") {
		t.Errorf("Answer = %q, want the revenue sum 400.5", got)
	}
}

func TestAnswerSkipsUnreadableDatasets(t *testing.T) {
	mat := &fixedMaterializer{err: errors.New("blob missing")}
	r := newTestRouter(t, &mockCompleter{}, mat)

	docs := []knowledge.Document{{
		FolderID:  uuid.New(),
		Filename:  "sales.csv",
		ObjectKey: "folder/sales.csv",
	}}

	_, err := r.Answer(context.Background(), uuid.New(), "total revenue", docs)
	if !errors.Is(err, ErrComputationInvalid) {
		t.Errorf("Answer error = %v, want ErrComputationInvalid when nothing is readable", err)
	}
}
