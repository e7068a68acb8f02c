package knowledge

import (
	"strings"
	"testing"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 1000, overlap: 200},
		{name: "zero overlap", size: 10, overlap: 0},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 10, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 10, overlap: 10, wantErr: true},
		{name: "overlap exceeds size", size: 10, overlap: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	c, err := NewChunker(10, 4)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty text", func(t *testing.T) {
		if got := c.Split(""); got != nil {
			t.Errorf("Split(\"\") = %v, want nil", got)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		if got := c.Split(" \t\n "); got != nil {
			t.Errorf("Split(whitespace) = %v, want nil", got)
		}
	})

	t.Run("short text single chunk", func(t *testing.T) {
		got := c.Split("hello")
		if len(got) != 1 || got[0] != "hello" {
			t.Errorf("Split(short) = %v, want [hello]", got)
		}
	})

	t.Run("whitespace normalized", func(t *testing.T) {
		got := c.Split("a  b\t\nc")
		if len(got) != 1 || got[0] != "a b c" {
			t.Errorf("Split = %v, want [a b c]", got)
		}
	})

	t.Run("stride is size minus overlap", func(t *testing.T) {
		// 26 letters, size 10, overlap 4 -> stride 6.
		text := "abcdefghijklmnopqrstuvwxyz"
		got := c.Split(text)
		want := []string{"abcdefghij", "ghijklmnop", "mnopqrstuv", "stuvwxyz"}
		if len(got) != len(want) {
			t.Fatalf("Split = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("reproducible", func(t *testing.T) {
		text := strings.Repeat("lorem ipsum dolor ", 20)
		a := c.Split(text)
		b := c.Split(text)
		if len(a) != len(b) {
			t.Fatalf("non-deterministic chunk count: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("chunk %d differs between runs", i)
			}
		}
	})

	t.Run("consecutive chunks overlap", func(t *testing.T) {
		text := strings.Repeat("x", 30)
		got := c.Split(text)
		for i := 1; i < len(got); i++ {
			prev := []rune(got[i-1])
			tail := string(prev[len(prev)-4:])
			if !strings.HasPrefix(got[i], tail) {
				t.Errorf("chunk %d does not start with previous chunk's overlap", i)
			}
		}
	})
}

func TestSplitMultibyte(t *testing.T) {
	c, err := NewChunker(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Split("日本語のテキスト")
	joined := strings.Join(got, "")
	// Every chunk boundary must fall on a rune boundary.
	for i, chunk := range got {
		if !strings.Contains("日本語のテキスト", chunk) {
			t.Errorf("chunk %d = %q is not a substring (broken rune boundary?)", i, chunk)
		}
	}
	if len(joined) == 0 {
		t.Fatal("no chunks for multibyte text")
	}
}
