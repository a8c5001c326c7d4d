package game

import (
	"strings"
	"testing"

	"github.com/dimaq12/minesweeper/models"
)

// lostBoard returns a 5x5 board with mines at (0,0) and (4,4), a correct
// flag on (4,4), a wrong flag on (2,0), and the (0,0) mine revealed.
func lostBoard(t *testing.T) *models.Board {
	t.Helper()
	st := models.BoardState{
		Width: 5, Height: 5, MineCount: 2,
		CellValue: [][]int{
			{-1, 1, 0, 0, 0},
			{1, 1, 0, 0, 0},
			{0, 0, 0, 0, 0},
			{0, 0, 0, 1, 1},
			{0, 0, 0, 1, -1},
		},
		MinePositions:  [][2]int{{0, 0}, {4, 4}},
		MinesPlaced:    true,
		Revealed:       [][2]int{{0, 0}, {1, 1}},
		Flagged:        [][2]int{{4, 4}, {2, 0}},
		Status:         models.Lost,
		MinesRemaining: 0,
	}
	b, err := models.Restore(st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return b
}

func TestCellText(t *testing.T) {
	t.Parallel()

	t.Run("fresh board", func(t *testing.T) {
		b := models.NewBoard(3, 3, 1)
		b.ToggleFlag(1, 1)
		if got := CellText(b, 0, 0); got != hiddenGlyph {
			t.Errorf("hidden cell = %q, want %q", got, hiddenGlyph)
		}
		if got := CellText(b, 1, 1); got != flagGlyph {
			t.Errorf("flagged cell = %q, want %q", got, flagGlyph)
		}
		if got := CellText(b, 5, 5); got != "" {
			t.Errorf("off-board cell = %q, want empty", got)
		}
	})

	t.Run("lost board", func(t *testing.T) {
		b := lostBoard(t)
		tests := []struct {
			name string
			x, y int
			want string
		}{
			{"exploded mine", 0, 0, mineGlyph},
			{"revealed number", 1, 1, "1"},
			{"correct flag stays", 4, 4, flagGlyph},
			{"wrong flag crossed out", 2, 0, wrongFlagGlyph},
			{"hidden safe cell", 2, 2, hiddenGlyph},
		}
		for _, tt := range tests {
			if got := CellText(b, tt.x, tt.y); got != tt.want {
				t.Errorf("%s: CellText(%d,%d) = %q, want %q", tt.name, tt.x, tt.y, got, tt.want)
			}
		}
	})

	t.Run("won board shows mines as flags", func(t *testing.T) {
		b := models.NewBoard(5, 5, 100, models.WithSeed(1))
		if _, err := b.Reveal(2, 2); err != nil {
			t.Fatal(err)
		}
		if b.Status() != models.Won {
			t.Fatalf("Status = %q", b.Status())
		}
		if got := CellText(b, 0, 0); got != flagGlyph {
			t.Errorf("mine on won board = %q, want %q", got, flagGlyph)
		}
		if got := CellText(b, 2, 2); got != emptyGlyph {
			t.Errorf("zero cell = %q, want %q", got, emptyGlyph)
		}
	})
}

func TestRenderer_DrawBoard(t *testing.T) {
	t.Parallel()

	b := lostBoard(t)
	r := NewRenderer()
	r.DrawBoard(b)

	if rows, cols := r.boardTable.GetRowCount(), r.boardTable.GetColumnCount(); rows != 5 || cols != 5 {
		t.Fatalf("table = %dx%d, want 5x5", rows, cols)
	}
	if got := r.boardTable.GetCell(0, 2).Text; got != wrongFlagGlyph {
		t.Errorf("cell row 0 col 2 = %q, want %q", got, wrongFlagGlyph)
	}
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	easy, _ := models.PresetFor(models.Easy)
	b := easy.NewBoard()
	b.ToggleFlag(0, 0)
	b.SetElapsed(12)

	line := StatusLine(easy, b, "saved as x")
	for _, want := range []string{"Easy", "mines: 9", "time: 12s", "saved as x"} {
		if !strings.Contains(line, want) {
			t.Errorf("StatusLine = %q, missing %q", line, want)
		}
	}
	if got := StatusLine(easy, lostBoard(t), ""); !strings.Contains(got, "Game over") {
		t.Errorf("StatusLine for a lost board = %q", got)
	}
}
