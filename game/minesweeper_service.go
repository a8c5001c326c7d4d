package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
	"github.com/dimaq12/minesweeper/storage"
)

// SaveRepository persists board snapshots by name.
type SaveRepository interface {
	Save(ctx context.Context, name string, st models.BoardState) (string, error)
	Load(ctx context.Context, name string) (models.BoardState, error)
	List(ctx context.Context) ([]storage.SaveInfo, error)
	Delete(ctx context.Context, name string) error
}

// ScoreRepository keeps the best winning times per difficulty.
type ScoreRepository interface {
	Add(ctx context.Context, sc storage.Score) (bool, error)
	Top(ctx context.Context, difficulty string, n int) ([]storage.Score, error)
}

// GameService is what the controller drives.
type GameService interface {
	Board() *models.Board
	Difficulty() models.Difficulty
	NewGame(d models.Difficulty)
	Reveal(x, y int) (MoveResult, error)
	Chord(x, y int) (MoveResult, error)
	ToggleFlag(x, y int) (bool, error)
	Tick() bool
	Save(ctx context.Context, name string) (string, error)
	Load(ctx context.Context, name string) error
	ListSaves(ctx context.Context) ([]storage.SaveInfo, error)
	DeleteSave(ctx context.Context, name string) error
	HighScores(ctx context.Context, label string) ([]storage.Score, error)
}

var errNotConfigured = errors.New("game: dependency not configured")

// ErrGameOver is returned when saving a game that has already ended.
var ErrGameOver = errors.New("game: game is over")

// MoveResult describes the effect of a reveal or chord.
type MoveResult struct {
	Opened    []models.Coord
	Status    models.Status
	HighScore bool // set when the move won the game with a top-ten time
}

// MinesweeperService runs one game session: the current board, its
// difficulty, and the display clock, plus access to saves and scores.
type MinesweeperService struct {
	game       *models.Board
	difficulty models.Difficulty
	running    bool

	saves  SaveRepository
	scores ScoreRepository
	rng    *rand.Rand
	now    func() time.Time
	log    logrus.FieldLogger
	start  models.Difficulty
}

// ServiceOption configures a MinesweeperService.
type ServiceOption func(*MinesweeperService)

// WithSeed makes every board of the session draw its mines from one
// generator seeded with seed, so a session replays identically.
func WithSeed(seed uint64) ServiceOption {
	return func(s *MinesweeperService) {
		if seed != 0 {
			s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// WithDifficulty sets the difficulty of the first board. The default is Easy.
func WithDifficulty(d models.Difficulty) ServiceOption {
	return func(s *MinesweeperService) { s.start = d }
}

// WithLogger replaces the standard logrus logger.
func WithLogger(l logrus.FieldLogger) ServiceOption {
	return func(s *MinesweeperService) { s.log = l }
}

// NewMinesweeperService creates a session with an unplayed board. saves and
// scores may be nil, in which case the operations needing them fail.
func NewMinesweeperService(saves SaveRepository, scores ScoreRepository, opts ...ServiceOption) *MinesweeperService {
	easy, _ := models.PresetFor(models.Easy)
	s := &MinesweeperService{
		saves:  saves,
		scores: scores,
		now:    time.Now,
		log:    logrus.StandardLogger(),
		start:  easy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.NewGame(s.start)
	return s
}

func (s *MinesweeperService) Board() *models.Board { return s.game }
func (s *MinesweeperService) Difficulty() models.Difficulty { return s.difficulty }

// Running reports whether the display clock is counting.
func (s *MinesweeperService) Running() bool { return s.running }

func (s *MinesweeperService) boardOptions() []models.BoardOption {
	if s.rng == nil {
		return nil
	}
	return []models.BoardOption{models.WithRand(s.rng)}
}

// NewGame discards the current board and starts an unplayed one.
func (s *MinesweeperService) NewGame(d models.Difficulty) {
	s.game = d.NewBoard(s.boardOptions()...)
	s.difficulty = d
	s.running = false
	s.log.WithField("difficulty", d.String()).Info("new game")
}

// Reveal opens (x, y). The first reveal starts the clock; a reveal that ends
// the game stops it and, on a win, records the time.
func (s *MinesweeperService) Reveal(x, y int) (MoveResult, error) {
	if s.game.Status() != models.InProgress {
		return MoveResult{Status: s.game.Status()}, nil
	}
	opened, err := s.game.Reveal(x, y)
	if err != nil {
		return MoveResult{}, err
	}
	return s.afterMove("reveal", x, y, opened), nil
}

// Chord opens the neighbours of a satisfied number at (x, y).
func (s *MinesweeperService) Chord(x, y int) (MoveResult, error) {
	if s.game.Status() != models.InProgress {
		return MoveResult{Status: s.game.Status()}, nil
	}
	opened, err := s.game.Chord(x, y)
	if err != nil {
		return MoveResult{}, err
	}
	return s.afterMove("chord", x, y, opened), nil
}

func (s *MinesweeperService) afterMove(op string, x, y int, opened []models.Coord) MoveResult {
	res := MoveResult{Opened: opened, Status: s.game.Status()}
	if len(opened) == 0 {
		return res
	}
	s.running = res.Status == models.InProgress

	entry := s.log.WithFields(logrus.Fields{
		"op":       op,
		"x":        x,
		"y":        y,
		"revealed": len(opened),
		"status":   res.Status,
	})
	switch res.Status {
	case models.Lost:
		entry.WithField("elapsed", s.game.Elapsed()).Info("game lost")
	case models.Won:
		entry.WithField("elapsed", s.game.Elapsed()).Info("game won")
		res.HighScore = s.recordWin()
	default:
		entry.Debug("cells revealed")
	}
	return res
}

// recordWin stores the winning time. A failing score store does not undo
// the win; the error is logged.
func (s *MinesweeperService) recordWin() bool {
	if s.scores == nil {
		return false
	}
	high, err := s.scores.Add(context.Background(), storage.Score{
		Difficulty: s.difficulty.Label,
		Seconds:    s.game.Elapsed(),
		Width:      s.game.Width(),
		Height:     s.game.Height(),
		Mines:      s.game.MineCount(),
		AchievedAt: s.now(),
	})
	if err != nil {
		s.log.WithError(err).Error("recording high score")
		return false
	}
	return high
}

// ToggleFlag flags or unflags (x, y) while the game is in progress.
func (s *MinesweeperService) ToggleFlag(x, y int) (bool, error) {
	if s.game.Status() != models.InProgress {
		return false, nil
	}
	return s.game.ToggleFlag(x, y)
}

// Tick advances the clock by one second and reports whether it did.
func (s *MinesweeperService) Tick() bool {
	if !s.running || s.game.Status() != models.InProgress {
		return false
	}
	s.game.SetElapsed(s.game.Elapsed() + 1)
	return true
}

// Save snapshots the current board. An empty name picks a timestamped one.
// Only games in progress can be saved.
func (s *MinesweeperService) Save(ctx context.Context, name string) (string, error) {
	if s.saves == nil {
		return "", errNotConfigured
	}
	if s.game.Status() != models.InProgress {
		return "", ErrGameOver
	}
	if name == "" {
		name = storage.DefaultSaveName(s.now())
	}
	st := s.game.Snapshot()
	st.DifficultyLabel = s.difficulty.Label
	saved, err := s.saves.Save(ctx, name, st)
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"save": saved, "difficulty": s.difficulty.Label}).Info("game saved")
	return saved, nil
}

// Load replaces the current board with a saved one. On any error the
// current board is left as it was.
func (s *MinesweeperService) Load(ctx context.Context, name string) error {
	if s.saves == nil {
		return errNotConfigured
	}
	st, err := s.saves.Load(ctx, name)
	if err != nil {
		return err
	}
	b, err := models.Restore(st, s.boardOptions()...)
	if err != nil {
		return fmt.Errorf("game: load %q: %w", name, err)
	}

	d, ok := models.PresetFor(st.DifficultyLabel)
	if !ok || d.Width != b.Width() || d.Height != b.Height() || d.Mines != b.MineCount() {
		d = models.Difficulty{Label: models.Custom, Width: b.Width(), Height: b.Height(), Mines: b.MineCount()}
	}

	s.game = b
	s.difficulty = d
	s.running = b.MinesPlaced() && b.Status() == models.InProgress
	s.log.WithFields(logrus.Fields{"save": name, "difficulty": d.Label, "elapsed": b.Elapsed()}).Info("game loaded")
	return nil
}

func (s *MinesweeperService) ListSaves(ctx context.Context) ([]storage.SaveInfo, error) {
	if s.saves == nil {
		return nil, errNotConfigured
	}
	return s.saves.List(ctx)
}

func (s *MinesweeperService) DeleteSave(ctx context.Context, name string) error {
	if s.saves == nil {
		return errNotConfigured
	}
	if err := s.saves.Delete(ctx, name); err != nil {
		return err
	}
	s.log.WithField("save", name).Info("save deleted")
	return nil
}

// HighScores returns the best times for a difficulty label.
func (s *MinesweeperService) HighScores(ctx context.Context, label string) ([]storage.Score, error) {
	if s.scores == nil {
		return nil, errNotConfigured
	}
	return s.scores.Top(ctx, label, storage.TopScores)
}
