package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StateVersion is the schema version written by Snapshot.
const StateVersion = 1

// BoardState is the persisted form of a Board. Coordinates are [x, y] pairs
// and CellValue is indexed [y][x].
type BoardState struct {
	Version         int      `json:"version"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	MineCount       int      `json:"mineCount"`
	CellValue       [][]int  `json:"cellValue"`
	MinePositions   [][2]int `json:"minePositions"`
	MinesPlaced     bool     `json:"minesPlaced"`
	Revealed        [][2]int `json:"revealed"`
	Flagged         [][2]int `json:"flagged"`
	Status          Status   `json:"status"`
	ElapsedTime     int      `json:"elapsedTime"`
	MinesRemaining  int      `json:"minesRemaining"`
	DifficultyLabel string   `json:"difficultyLabel"`
}

// requiredFields must be present in an encoded BoardState. version and
// difficultyLabel may be absent in files written before they existed.
var requiredFields = []string{
	"width", "height", "mineCount", "cellValue", "minePositions",
	"minesPlaced", "revealed", "flagged", "status", "elapsedTime",
	"minesRemaining",
}

// pairFields hold lists of [x, y] coordinates.
var pairFields = []string{"minePositions", "revealed", "flagged"}

// DecodeState parses an encoded BoardState, rejecting documents that are not
// JSON objects, lack a required field or set one to null, or hold a
// coordinate that is not an [x, y] pair.
func DecodeState(data []byte) (BoardState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return BoardState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	for _, key := range requiredFields {
		v, ok := raw[key]
		if !ok {
			return BoardState{}, fmt.Errorf("%w: missing field %q", ErrCorruptState, key)
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return BoardState{}, fmt.Errorf("%w: field %q is null", ErrCorruptState, key)
		}
	}
	// [2]int would silently truncate or zero-fill malformed pairs.
	for _, key := range pairFields {
		var pairs [][]int
		if err := json.Unmarshal(raw[key], &pairs); err != nil {
			return BoardState{}, fmt.Errorf("%w: field %q: %v", ErrCorruptState, key, err)
		}
		for _, p := range pairs {
			if len(p) != 2 {
				return BoardState{}, fmt.Errorf("%w: field %q has coordinate %v, want [x, y]", ErrCorruptState, key, p)
			}
		}
	}

	var st BoardState
	if err := json.Unmarshal(data, &st); err != nil {
		return BoardState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return st, nil
}

// Snapshot captures the complete board state. The result shares no memory
// with the board.
func (b *Board) Snapshot() BoardState {
	st := BoardState{
		Version:         StateVersion,
		Width:           b.width,
		Height:          b.height,
		MineCount:       b.mineCount,
		CellValue:       make([][]int, b.height),
		MinePositions:   make([][2]int, 0, len(b.mines)),
		MinesPlaced:     b.minesPlaced,
		Revealed:        make([][2]int, 0, b.shown),
		Flagged:         make([][2]int, 0, b.flags),
		Status:          b.status,
		ElapsedTime:     b.elapsed,
		MinesRemaining:  b.MinesRemaining(),
		DifficultyLabel: b.label,
	}

	for y := 0; y < b.height; y++ {
		row := make([]int, b.width)
		for x := 0; x < b.width; x++ {
			c := b.cells[y][x]
			row[x] = c.Value
			if c.IsShown {
				st.Revealed = append(st.Revealed, [2]int{x, y})
			}
			if c.IsFlagged {
				st.Flagged = append(st.Flagged, [2]int{x, y})
			}
		}
		st.CellValue[y] = row
	}
	for _, m := range b.mines {
		st.MinePositions = append(st.MinePositions, [2]int{m.X, m.Y})
	}
	return st
}

// Restore rebuilds a Board from a snapshot. Any inconsistency between the
// fields yields an error wrapping ErrCorruptState and no board. opts apply
// to the restored board; WithRand matters only if mines were not yet placed.
func Restore(st BoardState, opts ...BoardOption) (*Board, error) {
	if err := st.validateShape(); err != nil {
		return nil, err
	}

	b := NewBoard(st.Width, st.Height, st.MineCount, append([]BoardOption{WithLabel(st.DifficultyLabel)}, opts...)...)
	for y, row := range st.CellValue {
		for x, v := range row {
			b.cells[y][x].Value = v
		}
	}

	mineCells := 0
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.cells[y][x].IsMine() {
				mineCells++
			}
		}
	}
	if mineCells != len(st.MinePositions) {
		return nil, corrupt("cellValue holds %d mines, minePositions lists %d", mineCells, len(st.MinePositions))
	}
	seen := make(map[Coord]bool, len(st.MinePositions))
	for _, p := range st.MinePositions {
		c := Coord{X: p[0], Y: p[1]}
		if !b.InBounds(c.X, c.Y) || seen[c] {
			return nil, corrupt("mine position %v out of bounds or repeated", p)
		}
		seen[c] = true
		if !b.cells[c.Y][c.X].IsMine() {
			return nil, corrupt("mine position %v has value %d", p, b.cells[c.Y][c.X].Value)
		}
	}

	if st.MinesPlaced {
		floor := min(st.MineCount, max(st.Width*st.Height-9, 0))
		if mineCells > st.MineCount || mineCells < floor {
			return nil, corrupt("%d mines placed for mineCount %d", mineCells, st.MineCount)
		}
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				if v := b.cells[y][x].Value; v != MineValue && v != b.countNearbyMines(x, y) {
					return nil, corrupt("cell (%d,%d) has value %d, want %d", x, y, v, b.countNearbyMines(x, y))
				}
			}
		}
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				if b.cells[y][x].IsMine() {
					b.mines = append(b.mines, Coord{X: x, Y: y})
				}
			}
		}
		b.minesPlaced = true
	} else {
		for _, row := range st.CellValue {
			for _, v := range row {
				if v != 0 {
					return nil, corrupt("cell values present before mine placement")
				}
			}
		}
		if len(st.Revealed) > 0 {
			return nil, corrupt("cells revealed before mine placement")
		}
	}

	mineShown := false
	for _, p := range st.Revealed {
		if !b.InBounds(p[0], p[1]) || b.cells[p[1]][p[0]].IsShown {
			return nil, corrupt("revealed position %v out of bounds or repeated", p)
		}
		b.cells[p[1]][p[0]].IsShown = true
		b.shown++
		mineShown = mineShown || b.cells[p[1]][p[0]].IsMine()
	}
	for _, p := range st.Flagged {
		if !b.InBounds(p[0], p[1]) || b.cells[p[1]][p[0]].IsFlagged {
			return nil, corrupt("flagged position %v out of bounds or repeated", p)
		}
		if b.cells[p[1]][p[0]].IsShown {
			return nil, corrupt("position %v is both revealed and flagged", p)
		}
		b.cells[p[1]][p[0]].IsFlagged = true
		b.flags++
	}

	if st.MinesRemaining != b.MinesRemaining() {
		return nil, corrupt("minesRemaining %d, want %d", st.MinesRemaining, b.MinesRemaining())
	}

	want := InProgress
	switch {
	case mineShown:
		want = Lost
	case b.minesPlaced && b.shown == b.width*b.height-len(b.mines):
		want = Won
	}
	if st.Status != want {
		return nil, corrupt("status %q does not match board, want %q", st.Status, want)
	}
	b.status = want
	b.elapsed = st.ElapsedTime
	return b, nil
}

// validateShape checks the scalar fields and the cellValue grid dimensions.
func (st BoardState) validateShape() error {
	if st.Version < 0 || st.Version > StateVersion {
		return corrupt("unsupported version %d", st.Version)
	}
	if st.Width <= 0 || st.Height <= 0 {
		return corrupt("dimensions %dx%d", st.Width, st.Height)
	}
	if st.MineCount < 0 {
		return corrupt("mineCount %d", st.MineCount)
	}
	if st.ElapsedTime < 0 {
		return corrupt("elapsedTime %d", st.ElapsedTime)
	}
	if !st.Status.Valid() {
		return corrupt("unknown status %q", st.Status)
	}
	if len(st.CellValue) != st.Height {
		return corrupt("cellValue has %d rows, want %d", len(st.CellValue), st.Height)
	}
	for y, row := range st.CellValue {
		if len(row) != st.Width {
			return corrupt("cellValue row %d has %d columns, want %d", y, len(row), st.Width)
		}
		for x, v := range row {
			if v < MineValue || v > 8 {
				return corrupt("cell (%d,%d) has value %d", x, y, v)
			}
		}
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}
