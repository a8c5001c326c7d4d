package models

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

// playedBoard returns a seeded board with a few moves applied.
func playedBoard(t *testing.T, seed uint64) *Board {
	t.Helper()
	b := NewBoard(16, 16, 40, WithSeed(seed), WithLabel(Medium))
	if _, err := b.Reveal(8, 8); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	b.ToggleFlag(0, 0)
	b.ToggleFlag(15, 15)
	b.SetElapsed(42)
	return b
}

func sameBoards(t *testing.T, want, got *Board) {
	t.Helper()
	if got.Status() != want.Status() {
		t.Fatalf("Status() = %q, want %q", got.Status(), want.Status())
	}
	if got.MinesRemaining() != want.MinesRemaining() {
		t.Fatalf("MinesRemaining() = %d, want %d", got.MinesRemaining(), want.MinesRemaining())
	}
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			wc, _ := want.CellAt(x, y)
			gc, _ := got.CellAt(x, y)
			if wc != gc {
				t.Fatalf("cell (%d,%d) = %+v, want %+v", x, y, gc, wc)
			}
		}
	}
}

func TestSnapshot_Fields(t *testing.T) {
	t.Parallel()

	b := playedBoard(t, 9)
	st := b.Snapshot()

	if st.Version != StateVersion {
		t.Errorf("Version = %d, want %d", st.Version, StateVersion)
	}
	if st.Width != 16 || st.Height != 16 || st.MineCount != 40 {
		t.Errorf("dimensions = %dx%d/%d, want 16x16/40", st.Width, st.Height, st.MineCount)
	}
	if len(st.CellValue) != 16 || len(st.CellValue[0]) != 16 {
		t.Errorf("cellValue shape = %dx%d, want 16x16", len(st.CellValue), len(st.CellValue[0]))
	}
	if !st.MinesPlaced || len(st.MinePositions) != 40 {
		t.Errorf("mines placed = %v with %d positions, want true with 40", st.MinesPlaced, len(st.MinePositions))
	}
	if len(st.Revealed) != b.RevealedCount() {
		t.Errorf("len(Revealed) = %d, want %d", len(st.Revealed), b.RevealedCount())
	}
	if st.MinesRemaining != b.MinesRemaining() {
		t.Errorf("MinesRemaining = %d, want %d", st.MinesRemaining, b.MinesRemaining())
	}
	if st.ElapsedTime != 42 || st.DifficultyLabel != Medium || st.Status != InProgress {
		t.Errorf("elapsed/label/status = %d/%q/%q", st.ElapsedTime, st.DifficultyLabel, st.Status)
	}

	// Mutating the snapshot must not reach the board.
	st.CellValue[8][8] = MineValue
	if v, _ := b.ValueAt(8, 8); v == MineValue {
		t.Error("snapshot shares cellValue with the board")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		board func(t *testing.T) *Board
	}{
		{"fresh board", func(t *testing.T) *Board { return NewBoard(9, 9, 10, WithLabel(Easy)) }},
		{"flags before placement", func(t *testing.T) *Board {
			b := NewBoard(9, 9, 10)
			b.ToggleFlag(1, 1)
			return b
		}},
		{"game in progress", func(t *testing.T) *Board { return playedBoard(t, 3) }},
		{"lost game", func(t *testing.T) *Board {
			b := playedBoard(t, 4)
			m := b.Mines()[0]
			b.ToggleFlag(m.X, m.Y)
			b.ToggleFlag(m.X, m.Y)
			b.Reveal(m.X, m.Y)
			return b
		}},
		{"degraded placement", func(t *testing.T) *Board {
			b := NewBoard(5, 5, 100, WithSeed(1))
			b.Reveal(0, 0)
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := tt.board(t)
			restored, err := Restore(b.Snapshot())
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			sameBoards(t, b, restored)
			if restored.PlacedMines() != b.PlacedMines() || restored.MinesPlaced() != b.MinesPlaced() {
				t.Errorf("placement = %v/%d, want %v/%d", restored.MinesPlaced(), restored.PlacedMines(), b.MinesPlaced(), b.PlacedMines())
			}
			if restored.Elapsed() != b.Elapsed() || restored.Label() != b.Label() {
				t.Errorf("elapsed/label = %d/%q, want %d/%q", restored.Elapsed(), restored.Label(), b.Elapsed(), b.Label())
			}
		})
	}
}

func TestRestore_BehavesLikeSnapshottedBoard(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 20; seed++ {
		orig := playedBoard(t, seed)
		data, err := json.Marshal(orig.Snapshot())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		st, err := DecodeState(data)
		if err != nil {
			t.Fatalf("DecodeState: %v", err)
		}
		restored, err := Restore(st)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}

		moves := rand.New(rand.NewPCG(seed, 11))
		for step := 0; step < 120; step++ {
			x, y := moves.IntN(16), moves.IntN(16)
			if moves.IntN(4) == 0 {
				a, _ := orig.ToggleFlag(x, y)
				b, _ := restored.ToggleFlag(x, y)
				if a != b {
					t.Fatalf("seed %d step %d: ToggleFlag(%d,%d) = %v vs %v", seed, step, x, y, a, b)
				}
				continue
			}
			a, _ := orig.Reveal(x, y)
			b, _ := restored.Reveal(x, y)
			if len(a) != len(b) {
				t.Fatalf("seed %d step %d: Reveal(%d,%d) opened %d vs %d", seed, step, x, y, len(a), len(b))
			}
		}
		sameBoards(t, orig, restored)
	}
}

func TestRestore_UnplacedBoardPlacesOnFirstReveal(t *testing.T) {
	t.Parallel()

	b, err := Restore(NewBoard(9, 9, 10).Snapshot(), WithSeed(5))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if b.MinesPlaced() {
		t.Fatal("restored fresh board already has mines")
	}
	if _, err := b.Reveal(0, 0); err != nil {
		t.Fatal(err)
	}
	if b.PlacedMines() != 10 {
		t.Errorf("PlacedMines() = %d, want 10", b.PlacedMines())
	}
}

func TestRestore_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(st *BoardState)
	}{
		{"future version", func(st *BoardState) { st.Version = StateVersion + 1 }},
		{"zero width", func(st *BoardState) { st.Width = 0 }},
		{"negative mine count", func(st *BoardState) { st.MineCount = -1 }},
		{"negative elapsed", func(st *BoardState) { st.ElapsedTime = -5 }},
		{"unknown status", func(st *BoardState) { st.Status = "Paused" }},
		{"missing row", func(st *BoardState) { st.CellValue = st.CellValue[1:] }},
		{"short row", func(st *BoardState) { st.CellValue[3] = st.CellValue[3][:5] }},
		{"height mismatch", func(st *BoardState) { st.Height++ }},
		{"value out of range", func(st *BoardState) { st.CellValue[0][0] = 9 }},
		{"dropped mine position", func(st *BoardState) { st.MinePositions = st.MinePositions[1:] }},
		{"repeated mine position", func(st *BoardState) { st.MinePositions[1] = st.MinePositions[0] }},
		{"mine position not a mine", func(st *BoardState) { st.MinePositions[0] = [2]int{8, 8} }},
		{"wrong adjacency", func(st *BoardState) {
			for y, row := range st.CellValue {
				for x, v := range row {
					if v > 0 && v < 8 {
						st.CellValue[y][x] = v + 1
						return
					}
				}
			}
		}},
		{"more mines than mineCount", func(st *BoardState) { st.MineCount = 30 }},
		{"too few mines", func(st *BoardState) { st.MineCount = 60 }},
		{"revealed out of bounds", func(st *BoardState) { st.Revealed = append(st.Revealed, [2]int{16, 0}) }},
		{"revealed repeated", func(st *BoardState) { st.Revealed = append(st.Revealed, st.Revealed[0]) }},
		{"revealed and flagged", func(st *BoardState) {
			st.Flagged = append(st.Flagged, st.Revealed[0])
			st.MinesRemaining--
		}},
		{"minesRemaining mismatch", func(st *BoardState) { st.MinesRemaining = 40 }},
		{"status claims win", func(st *BoardState) { st.Status = Won }},
		{"status hides loss", func(st *BoardState) {
			st.Revealed = append(st.Revealed, st.MinePositions[2])
		}},
		{"unplaced with revealed cells", func(st *BoardState) {
			st.MinesPlaced = false
			for y := range st.CellValue {
				for x := range st.CellValue[y] {
					st.CellValue[y][x] = 0
				}
			}
			st.MinePositions = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := playedBoard(t, 21).Snapshot()
			tt.mutate(&st)
			b, err := Restore(st)
			if !errors.Is(err, ErrCorruptState) {
				t.Fatalf("Restore error = %v, want ErrCorruptState", err)
			}
			if b != nil {
				t.Error("Restore returned a board alongside the error")
			}
		})
	}
}

func TestDecodeState(t *testing.T) {
	t.Parallel()

	valid, err := json.Marshal(playedBoard(t, 2).Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid document", func(t *testing.T) {
		st, err := DecodeState(valid)
		if err != nil {
			t.Fatalf("DecodeState: %v", err)
		}
		if _, err := Restore(st); err != nil {
			t.Fatalf("Restore: %v", err)
		}
	})

	t.Run("missing version is accepted", func(t *testing.T) {
		var raw map[string]any
		if err := json.Unmarshal(valid, &raw); err != nil {
			t.Fatal(err)
		}
		delete(raw, "version")
		data, _ := json.Marshal(raw)
		st, err := DecodeState(data)
		if err != nil {
			t.Fatalf("DecodeState: %v", err)
		}
		if _, err := Restore(st); err != nil {
			t.Fatalf("Restore: %v", err)
		}
	})

	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", "{", ""},
		{"array", "[]", ""},
		{"wrong type", strings.Replace(string(valid), `"width":16`, `"width":"16"`, 1), ""},
		{"missing status", strings.Replace(string(valid), `"status":`, `"state":`, 1), `"status"`},
		{"missing cellValue", strings.Replace(string(valid), `"cellValue":`, `"cells":`, 1), `"cellValue"`},
		{"null minesPlaced", strings.Replace(string(valid), `"minesPlaced":true`, `"minesPlaced":null`, 1), `"minesPlaced"`},
		{"null revealed", strings.Replace(string(valid), `"revealed":[`, `"revealed":null,"oldRevealed":[`, 1), `"revealed"`},
		{"short revealed pair", strings.Replace(string(valid), `"revealed":[`, `"revealed":[[1]],"oldRevealed":[`, 1), `"revealed"`},
		{"long flagged pair", strings.Replace(string(valid), `"flagged":[`, `"flagged":[[0,0,7,7,7]],"oldFlagged":[`, 1), `"flagged"`},
		{"mine pair not numbers", strings.Replace(string(valid), `"minePositions":[`, `"minePositions":["ab"],"oldMines":[`, 1), `"minePositions"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tt.data))
			if !errors.Is(err, ErrCorruptState) {
				t.Fatalf("DecodeState error = %v, want ErrCorruptState", err)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}
