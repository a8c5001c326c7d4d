package game

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dimaq12/minesweeper/models"
)

// Glyphs drawn for cells.
const (
	hiddenGlyph    = "."
	flagGlyph      = "F"
	mineGlyph      = "*"
	wrongFlagGlyph = "X"
	emptyGlyph     = " "
)

var digitColors = [9]tcell.Color{
	tcell.ColorDefault,
	tcell.ColorBlue,
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorNavy,
	tcell.ColorMaroon,
	tcell.ColorTeal,
	tcell.ColorWhite,
	tcell.ColorGray,
}

// Renderer draws a board onto tview widgets. It reads everything from the
// board on each draw and keeps no game state of its own.
type Renderer struct {
	boardTable *tview.Table
	statusView *tview.TextView

	// OnClick, if set, is called with the board coordinates of a clicked cell.
	OnClick func(x, y int)
}

func NewRenderer() *Renderer {
	return &Renderer{
		boardTable: tview.NewTable(),
		statusView: tview.NewTextView().SetDynamicColors(true),
	}
}

// CellText returns the glyph for (x, y). Once the game is over every mine is
// shown: as a mine after a loss, as a flag after a win. Flags on safe cells
// are crossed out after a loss.
func CellText(b *models.Board, x, y int) string {
	cell, err := b.CellAt(x, y)
	if err != nil {
		return ""
	}

	switch status := b.Status(); {
	case cell.IsShown && cell.IsMine():
		return mineGlyph
	case cell.IsShown && cell.Value == 0:
		return emptyGlyph
	case cell.IsShown:
		return strconv.Itoa(cell.Value)
	case status == models.Lost && cell.IsMine() && !cell.IsFlagged:
		return mineGlyph
	case status == models.Lost && cell.IsFlagged && !cell.IsMine():
		return wrongFlagGlyph
	case status == models.Won && cell.IsMine():
		return flagGlyph
	case cell.IsFlagged:
		return flagGlyph
	default:
		return hiddenGlyph
	}
}

func cellColor(b *models.Board, x, y int) tcell.Color {
	cell, err := b.CellAt(x, y)
	if err != nil {
		return tcell.ColorDefault
	}
	switch text := CellText(b, x, y); text {
	case mineGlyph, wrongFlagGlyph:
		return tcell.ColorRed
	case flagGlyph:
		return tcell.ColorYellow
	case hiddenGlyph, emptyGlyph:
		return tcell.ColorDefault
	default:
		return digitColors[cell.Value]
	}
}

// DrawBoard redraws every cell.
func (r *Renderer) DrawBoard(b *models.Board) {
	r.boardTable.Clear()
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			r.RenderCell(b, x, y)
		}
	}
	r.boardTable.SetSelectable(true, true)
}

// RenderCell redraws the cell at column x, row y.
func (r *Renderer) RenderCell(b *models.Board, x, y int) {
	cell := tview.NewTableCell(CellText(b, x, y)).
		SetAlign(tview.AlignCenter).
		SetTextColor(cellColor(b, x, y))
	if r.OnClick != nil {
		cell.SetClickedFunc(func() bool {
			r.OnClick(x, y)
			return false
		})
	}
	r.boardTable.SetCell(y, x, cell)
}

// RenderCells redraws only the given cells.
func (r *Renderer) RenderCells(b *models.Board, cells []models.Coord) {
	for _, c := range cells {
		r.RenderCell(b, c.X, c.Y)
	}
}

// StatusLine summarises the game for the status bar. message, if set, is
// appended.
func StatusLine(d models.Difficulty, b *models.Board, message string) string {
	line := fmt.Sprintf("%s  mines: %d  time: %ds", d.Label, b.MinesRemaining(), b.Elapsed())
	switch b.Status() {
	case models.Won:
		line += "  [green]You won![-]"
	case models.Lost:
		line += "  [red]Game over, you hit a mine.[-]"
	}
	if message != "" {
		line += "  " + message
	}
	return line
}

// DrawStatus refreshes the status bar.
func (r *Renderer) DrawStatus(d models.Difficulty, b *models.Board, message string) {
	r.statusView.SetText(StatusLine(d, b, message))
}
