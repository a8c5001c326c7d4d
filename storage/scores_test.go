package storage

import (
	"context"
	"path/filepath"
	"testing"
)

// testScoreStore creates a temporary score database and registers cleanup.
func testScoreStore(t *testing.T) *ScoreStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.db")
	s, err := NewScoreStore(context.Background(), path)
	if err != nil {
		t.Fatalf("NewScoreStore(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func easyScore(seconds int) Score {
	return Score{Difficulty: "Easy", Seconds: seconds, Width: 9, Height: 9, Mines: 10}
}

func TestScoreStore_AddAndTop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testScoreStore(t)

	for _, secs := range []int{50, 20, 35} {
		high, err := s.Add(ctx, easyScore(secs))
		if err != nil {
			t.Fatalf("Add(%d): %v", secs, err)
		}
		if !high {
			t.Errorf("Add(%d) = false, want a high score while the table has room", secs)
		}
	}
	if _, err := s.Add(ctx, Score{Difficulty: "Hard", Seconds: 5, Width: 30, Height: 16, Mines: 99}); err != nil {
		t.Fatal(err)
	}

	top, err := s.Top(ctx, "Easy", TopScores)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	want := []int{20, 35, 50}
	if len(top) != len(want) {
		t.Fatalf("Top returned %d scores, want %d", len(top), len(want))
	}
	for i, sc := range top {
		if sc.Seconds != want[i] {
			t.Errorf("top[%d].Seconds = %d, want %d", i, sc.Seconds, want[i])
		}
		if sc.Width != 9 || sc.Mines != 10 || sc.AchievedAt.IsZero() {
			t.Errorf("top[%d] = %+v", i, sc)
		}
	}
}

func TestScoreStore_KeepsTopTen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testScoreStore(t)

	for secs := 10; secs < 20; secs++ {
		if _, err := s.Add(ctx, easyScore(secs)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		seconds int
		want    bool
	}{
		{"slower than every entry", 99, false},
		{"ties the slowest entry", 19, false},
		{"beats the slowest entry", 15, true},
	}
	for _, tt := range tests {
		high, err := s.Add(ctx, easyScore(tt.seconds))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if high != tt.want {
			t.Errorf("%s: Add(%d) = %v, want %v", tt.name, tt.seconds, high, tt.want)
		}
	}

	top, err := s.Top(ctx, "Easy", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != TopScores {
		t.Fatalf("kept %d scores, want %d", len(top), TopScores)
	}
	if last := top[len(top)-1].Seconds; last != 18 {
		t.Errorf("slowest kept score = %d, want 18", last)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Seconds < top[i-1].Seconds {
			t.Fatalf("scores out of order at %d: %d after %d", i, top[i].Seconds, top[i-1].Seconds)
		}
	}
}

func TestScoreStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	s1, err := NewScoreStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s1.Add(ctx, easyScore(42)); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := NewScoreStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	top, err := s2.Top(ctx, "Easy", TopScores)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Seconds != 42 {
		t.Errorf("Top after reopen = %+v", top)
	}
}
