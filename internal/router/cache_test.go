package router

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radexhq/radex/internal/knowledge"
)

func TestDatasetCacheTTL(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	mat := &fixedMaterializer{datasets: map[string]Dataset{"sales.csv": salesDataset}}
	r := newTestRouter(t, &mockCompleter{}, mat, WithDatasetTTL(5*time.Minute), WithClock(clock))

	userID := uuid.New()
	doc := knowledge.Document{
		FolderID:  uuid.New(),
		Filename:  "sales.csv",
		ObjectKey: "folder/sales.csv",
	}

	if _, err := r.Dataset(context.Background(), userID, doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if mat.calls != 1 {
		t.Fatalf("materializer calls = %d, want 1", mat.calls)
	}

	// Inside the TTL the cached copy is served.
	now = now.Add(4 * time.Minute)
	if _, err := r.Dataset(context.Background(), userID, doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if mat.calls != 1 {
		t.Errorf("materializer calls = %d after cache hit, want 1", mat.calls)
	}

	// Past the TTL the entry expires and the blob is re-read.
	now = now.Add(2 * time.Minute)
	if _, err := r.Dataset(context.Background(), userID, doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if mat.calls != 2 {
		t.Errorf("materializer calls = %d after expiry, want 2", mat.calls)
	}
}

func TestDatasetCacheScopedPerUser(t *testing.T) {
	mat := &fixedMaterializer{datasets: map[string]Dataset{"sales.csv": salesDataset}}
	r := newTestRouter(t, &mockCompleter{}, mat)

	doc := knowledge.Document{
		FolderID:  uuid.New(),
		Filename:  "sales.csv",
		ObjectKey: "folder/sales.csv",
	}

	if _, err := r.Dataset(context.Background(), uuid.New(), doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if _, err := r.Dataset(context.Background(), uuid.New(), doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if mat.calls != 2 {
		t.Errorf("materializer calls = %d for two users, want 2", mat.calls)
	}
}

func TestInvalidateDropsEntry(t *testing.T) {
	mat := &fixedMaterializer{datasets: map[string]Dataset{"sales.csv": salesDataset}}
	r := newTestRouter(t, &mockCompleter{}, mat)

	userID := uuid.New()
	doc := knowledge.Document{
		FolderID:  uuid.New(),
		Filename:  "sales.csv",
		ObjectKey: "folder/sales.csv",
	}

	if _, err := r.Dataset(context.Background(), userID, doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	r.Invalidate(userID, doc.FolderID, doc.Filename)
	if _, err := r.Dataset(context.Background(), userID, doc); err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if mat.calls != 2 {
		t.Errorf("materializer calls = %d after invalidation, want 2", mat.calls)
	}
}
