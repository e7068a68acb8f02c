package router

import "testing"

func TestSelectDataset(t *testing.T) {
	sales := Dataset{
		Filename: "sales.csv",
		Columns:  []string{"region", "revenue", "quarter"},
	}
	inventory := Dataset{
		Filename: "inventory.csv",
		Columns:  []string{"sku", "warehouse", "stock"},
	}

	tests := []struct {
		name     string
		question string
		datasets []Dataset
		want     string
	}{
		{
			name:     "column match wins",
			question: "what is the total revenue per region",
			datasets: []Dataset{inventory, sales},
			want:     "sales.csv",
		},
		{
			name:     "filename match contributes",
			question: "show me the inventory numbers",
			datasets: []Dataset{sales, inventory},
			want:     "inventory.csv",
		},
		{
			name:     "no match falls back to first",
			question: "zzz qqq xxx",
			datasets: []Dataset{inventory, sales},
			want:     "inventory.csv",
		},
		{
			name:     "single dataset returned directly",
			question: "anything at all",
			datasets: []Dataset{sales},
			want:     "sales.csv",
		},
		{
			name:     "tie resolves to first",
			question: "count everything please",
			datasets: []Dataset{sales, inventory},
			want:     "sales.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectDataset(tt.question, tt.datasets)
			if !ok {
				t.Fatal("SelectDataset returned no dataset")
			}
			if got.Filename != tt.want {
				t.Errorf("SelectDataset = %q, want %q", got.Filename, tt.want)
			}
		})
	}
}

func TestSelectDatasetEmpty(t *testing.T) {
	if _, ok := SelectDataset("any question", nil); ok {
		t.Error("SelectDataset should report no dataset for an empty slice")
	}
}

func TestScoreDataset(t *testing.T) {
	sales := Dataset{
		Filename: "sales.csv",
		Columns:  []string{"region", "revenue", "quarter"},
	}

	// "revenue" matches a column (+10), "region" matches a column (+10).
	tokens := selectionTokens("what is the total revenue per region")
	if got := scoreDataset(tokens, sales); got != 20 {
		t.Errorf("scoreDataset = %d, want 20", got)
	}

	// "sales" matches only the filename (+2).
	tokens = selectionTokens("open the sales file")
	if got := scoreDataset(tokens, sales); got != 2 {
		t.Errorf("scoreDataset = %d, want 2", got)
	}
}

func TestSelectionTokens(t *testing.T) {
	tokens := selectionTokens("What is the average Revenue, per region?")
	want := map[string]bool{"average": true, "revenue": true, "per": true, "region": true}
	if len(tokens) != len(want) {
		t.Fatalf("selectionTokens = %v, want %d tokens", tokens, len(want))
	}
	for _, tok := range tokens {
		if !want[tok] {
			t.Errorf("unexpected token %q", tok)
		}
	}
}
