package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// MineValue is the cell value reserved for a mine. Every other value is the
// number of mines among the cell's neighbours (0..8).
const MineValue = -1

var (
	// ErrInvalidCoordinate is returned when a coordinate lies outside the grid.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrCorruptState is returned when a snapshot cannot describe a valid board.
	ErrCorruptState = errors.New("corrupt board state")
)

// Status is the outcome of a game.
type Status string

const (
	InProgress Status = "InProgress"
	Won        Status = "Won"
	Lost       Status = "Lost"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == InProgress || s == Won || s == Lost
}

// Coord addresses a cell by column (X) and row (Y).
type Coord struct {
	X int
	Y int
}

// Cell is the state of a single grid position.
type Cell struct {
	Value     int
	IsShown   bool
	IsFlagged bool
}

// IsMine reports whether the cell holds a mine.
func (c Cell) IsMine() bool { return c.Value == MineValue }

// Board is a minesweeper grid together with the player's progress on it.
// Mines are placed lazily by the first Reveal so that the first cell opened
// and its neighbours are always safe.
//
// A Board is not safe for concurrent use.
type Board struct {
	width     int
	height    int
	mineCount int
	label     string

	cells       [][]Cell // indexed [y][x]
	mines       []Coord
	minesPlaced bool
	shown       int
	flags       int
	status      Status
	elapsed     int

	rng *rand.Rand
}

// BoardOption configures a Board at construction.
type BoardOption func(*Board)

// WithRand sets the generator used for mine placement.
func WithRand(r *rand.Rand) BoardOption {
	return func(b *Board) { b.rng = r }
}

// WithSeed seeds mine placement with a fixed value so layouts are reproducible.
func WithSeed(seed uint64) BoardOption {
	return func(b *Board) { b.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLabel tags the board with a difficulty label, persisted in snapshots.
func WithLabel(label string) BoardOption {
	return func(b *Board) { b.label = label }
}

// NewBoard creates an empty width x height board that will hold mineCount
// mines once the first cell is revealed. The caller is responsible for
// keeping mineCount within width*height-9; see ValidateCustom.
func NewBoard(width, height, mineCount int, opts ...BoardOption) *Board {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}

	b := &Board{
		width:     width,
		height:    height,
		mineCount: mineCount,
		cells:     cells,
		status:    InProgress,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		now := uint64(time.Now().UnixNano())
		b.rng = rand.New(rand.NewPCG(now, now>>17|1))
	}
	return b
}

func (b *Board) Width() int { return b.width }
func (b *Board) Height() int { return b.height }
func (b *Board) MineCount() int { return b.mineCount }
func (b *Board) Label() string { return b.label }
func (b *Board) Status() Status { return b.status }
func (b *Board) MinesPlaced() bool { return b.minesPlaced }

// PlacedMines is the number of mines actually on the board. It is smaller
// than MineCount when the grid had too few cells outside the safe zone.
func (b *Board) PlacedMines() int { return len(b.mines) }

// MinesRemaining is MineCount minus the number of flags. It goes negative
// when the player places more flags than there are mines.
func (b *Board) MinesRemaining() int { return b.mineCount - b.flags }

// RevealedCount is the number of cells the player has uncovered.
func (b *Board) RevealedCount() int { return b.shown }

// Elapsed is the play time in seconds. The board never advances it; the
// presentation layer does through SetElapsed.
func (b *Board) Elapsed() int { return b.elapsed }

// SetElapsed records the play time in seconds.
func (b *Board) SetElapsed(seconds int) {
	if seconds >= 0 {
		b.elapsed = seconds
	}
}

// Mines returns the mine positions in row-major order, or nil before
// placement.
func (b *Board) Mines() []Coord {
	if len(b.mines) == 0 {
		return nil
	}
	out := make([]Coord, len(b.mines))
	copy(out, b.mines)
	return out
}

// InBounds reports whether (x, y) lies on the grid.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Board) check(x, y int) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d board", ErrInvalidCoordinate, x, y, b.width, b.height)
	}
	return nil
}

// CellAt returns a copy of the cell at (x, y).
func (b *Board) CellAt(x, y int) (Cell, error) {
	if err := b.check(x, y); err != nil {
		return Cell{}, err
	}
	return b.cells[y][x], nil
}

// IsMine reports whether (x, y) holds a mine. It is always false before the
// first reveal.
func (b *Board) IsMine(x, y int) (bool, error) {
	if err := b.check(x, y); err != nil {
		return false, err
	}
	return b.cells[y][x].IsMine(), nil
}

// ValueAt returns MineValue for a mine or the neighbouring mine count.
func (b *Board) ValueAt(x, y int) (int, error) {
	if err := b.check(x, y); err != nil {
		return 0, err
	}
	return b.cells[y][x].Value, nil
}

// IsRevealed reports whether (x, y) has been uncovered. Out-of-grid
// coordinates are never revealed.
func (b *Board) IsRevealed(x, y int) bool {
	return b.InBounds(x, y) && b.cells[y][x].IsShown
}

// IsFlagged reports whether (x, y) carries a flag.
func (b *Board) IsFlagged(x, y int) bool {
	return b.InBounds(x, y) && b.cells[y][x].IsFlagged
}

// neighbors returns the grid-bounded cells around (x, y), excluding the cell
// itself. Corners have 3, edges 5 and interior cells 8.
func (b *Board) neighbors(x, y int) []Coord {
	out := make([]Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.InBounds(nx, ny) {
				out = append(out, Coord{X: nx, Y: ny})
			}
		}
	}
	return out
}

// countNearbyMines counts the mines among the neighbours of (x, y).
func (b *Board) countNearbyMines(x, y int) int {
	n := 0
	for _, c := range b.neighbors(x, y) {
		if b.cells[c.Y][c.X].IsMine() {
			n++
		}
	}
	return n
}

// placeMines lays out the mines keeping (firstX, firstY) and its neighbours
// clear, then fills in every adjacency count. When fewer cells than
// mineCount remain outside the safe zone, every remaining cell becomes a
// mine and PlacedMines reports the smaller number.
func (b *Board) placeMines(firstX, firstY int) {
	safe := make(map[Coord]bool, 9)
	safe[Coord{X: firstX, Y: firstY}] = true
	for _, c := range b.neighbors(firstX, firstY) {
		safe[c] = true
	}

	candidates := make([]Coord, 0, b.width*b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if c := (Coord{X: x, Y: y}); !safe[c] {
				candidates = append(candidates, c)
			}
		}
	}

	n := min(max(b.mineCount, 0), len(candidates))

	// Partial Fisher-Yates: the first n entries end up a uniform sample
	// without replacement.
	for i := 0; i < n; i++ {
		j := i + b.rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	for _, c := range candidates[:n] {
		b.cells[c.Y][c.X].Value = MineValue
	}

	b.mines = make([]Coord, 0, n)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.cells[y][x].IsMine() {
				b.mines = append(b.mines, Coord{X: x, Y: y})
				continue
			}
			b.cells[y][x].Value = b.countNearbyMines(x, y)
		}
	}
	b.minesPlaced = true
}

// Reveal uncovers (x, y) and returns every cell it opened, the target first.
// A zero cell opens its whole zero region plus the numbered cells bordering
// it. Revealing a flagged or already revealed cell does nothing. The first
// reveal on a board places the mines.
func (b *Board) Reveal(x, y int) ([]Coord, error) {
	if err := b.check(x, y); err != nil {
		return nil, err
	}
	cell := &b.cells[y][x]
	if cell.IsShown || cell.IsFlagged {
		return nil, nil
	}
	if !b.minesPlaced {
		b.placeMines(x, y)
	}

	cell.IsShown = true
	b.shown++
	opened := []Coord{{X: x, Y: y}}

	if cell.IsMine() {
		b.status = Lost
		return opened, nil
	}

	if cell.Value == 0 {
		stack := []Coord{{X: x, Y: y}}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, nb := range b.neighbors(cur.X, cur.Y) {
				next := &b.cells[nb.Y][nb.X]
				if next.IsShown || next.IsFlagged {
					continue
				}
				next.IsShown = true
				b.shown++
				opened = append(opened, nb)
				if next.Value == 0 {
					stack = append(stack, nb)
				}
			}
		}
	}

	if b.status == InProgress && b.shown == b.width*b.height-len(b.mines) {
		b.status = Won
	}
	return opened, nil
}

// Chord reveals the unflagged neighbours of a revealed number once the
// player has flagged as many neighbours as the number shows. Otherwise it
// does nothing.
func (b *Board) Chord(x, y int) ([]Coord, error) {
	if err := b.check(x, y); err != nil {
		return nil, err
	}
	cell := b.cells[y][x]
	if !cell.IsShown || cell.Value <= 0 || b.status != InProgress {
		return nil, nil
	}

	around := b.neighbors(x, y)
	flags := 0
	for _, nb := range around {
		if b.cells[nb.Y][nb.X].IsFlagged {
			flags++
		}
	}
	if flags != cell.Value {
		return nil, nil
	}

	var opened []Coord
	for _, nb := range around {
		if b.status != InProgress {
			break
		}
		got, err := b.Reveal(nb.X, nb.Y)
		if err != nil {
			return opened, err
		}
		opened = append(opened, got...)
	}
	return opened, nil
}

// ToggleFlag places or removes a flag on (x, y) and reports whether a flag
// is now present. Revealed cells cannot be flagged.
func (b *Board) ToggleFlag(x, y int) (bool, error) {
	if err := b.check(x, y); err != nil {
		return false, err
	}
	cell := &b.cells[y][x]
	if cell.IsShown {
		return false, nil
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		b.flags++
	} else {
		b.flags--
	}
	return cell.IsFlagged, nil
}
