package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDifficulty is returned for unknown labels and out-of-range
// custom boards.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty labels. Custom is the only label whose dimensions come from the
// player.
const (
	Easy   = "Easy"
	Medium = "Medium"
	Hard   = "Hard"
	Custom = "Custom"
)

// Custom board limits, in cells per side.
const (
	MinSide = 5
	MaxSide = 50
)

// SafeZoneCells is the most cells the first reveal keeps free of mines.
const SafeZoneCells = 9

// Difficulty names a board size and mine count.
type Difficulty struct {
	Label  string
	Width  int
	Height int
	Mines  int
}

func (d Difficulty) String() string {
	return fmt.Sprintf("%s (%dx%d, %d mines)", d.Label, d.Width, d.Height, d.Mines)
}

// NewBoard builds an empty board of this difficulty.
func (d Difficulty) NewBoard(opts ...BoardOption) *Board {
	return NewBoard(d.Width, d.Height, d.Mines, append([]BoardOption{WithLabel(d.Label)}, opts...)...)
}

var presets = []Difficulty{
	{Label: Easy, Width: 9, Height: 9, Mines: 10},
	{Label: Medium, Width: 16, Height: 16, Mines: 40},
	{Label: Hard, Width: 30, Height: 16, Mines: 99},
}

// Difficulties returns the fixed presets in menu order.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(presets))
	copy(out, presets)
	return out
}

// Labels returns every difficulty label, Custom last.
func Labels() []string {
	out := make([]string, 0, len(presets)+1)
	for _, d := range presets {
		out = append(out, d.Label)
	}
	return append(out, Custom)
}

// PresetFor looks up a fixed preset by label, ignoring case.
func PresetFor(label string) (Difficulty, bool) {
	for _, d := range presets {
		if strings.EqualFold(d.Label, label) {
			return d, true
		}
	}
	return Difficulty{}, false
}

// NormalizeLabel returns the canonical spelling of a known label.
func NormalizeLabel(label string) (string, error) {
	for _, l := range Labels() {
		if strings.EqualFold(l, label) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown label %q", ErrInvalidDifficulty, label)
}

// ValidateCustom checks a player-defined board: each side within
// MinSide..MaxSide and at least one mine while leaving room for the
// first-click safe zone.
func ValidateCustom(width, height, mines int) error {
	if width < MinSide || width > MaxSide || height < MinSide || height > MaxSide {
		return fmt.Errorf("%w: %dx%d board, sides must be %d..%d", ErrInvalidDifficulty, width, height, MinSide, MaxSide)
	}
	if limit := width*height - SafeZoneCells; mines < 1 || mines > limit {
		return fmt.Errorf("%w: %d mines on %dx%d board, must be 1..%d", ErrInvalidDifficulty, mines, width, height, limit)
	}
	return nil
}

// CustomDifficulty validates and returns a Custom difficulty.
func CustomDifficulty(width, height, mines int) (Difficulty, error) {
	if err := ValidateCustom(width, height, mines); err != nil {
		return Difficulty{}, err
	}
	return Difficulty{Label: Custom, Width: width, Height: height, Mines: mines}, nil
}
