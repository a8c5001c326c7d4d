package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// TopScores is how many scores are kept per difficulty.
const TopScores = 10

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    difficulty  TEXT    NOT NULL,
    seconds     INTEGER NOT NULL,
    width       INTEGER NOT NULL,
    height      INTEGER NOT NULL,
    mines       INTEGER NOT NULL,
    achieved_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS scores_rank ON scores (difficulty, seconds, id);
`

// Score is one winning game.
type Score struct {
	ID         int64
	Difficulty string
	Seconds    int
	Width      int
	Height     int
	Mines      int
	AchievedAt time.Time
}

// ScoreStore keeps the fastest wins per difficulty in SQLite. Ties on time
// rank the earlier entry first.
type ScoreStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewScoreStore opens (or creates) the score database at dbPath.
func NewScoreStore(ctx context.Context, dbPath string) (*ScoreStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open scores: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, scoresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create scores schema: %w", err)
	}
	return &ScoreStore{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *ScoreStore) Close() error {
	return s.db.Close()
}

// Add records a win and reports whether it placed in the top TopScores for
// its difficulty. Entries that fall out of the top are pruned.
func (s *ScoreStore) Add(ctx context.Context, sc Score) (bool, error) {
	if sc.AchievedAt.IsZero() {
		sc.AchievedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: add score: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scores (difficulty, seconds, width, height, mines, achieved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sc.Difficulty, sc.Seconds, sc.Width, sc.Height, sc.Mines, sc.AchievedAt.Unix())
	if err != nil {
		return false, fmt.Errorf("storage: add score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("storage: add score: %w", err)
	}

	var ahead int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scores WHERE difficulty = ? AND (seconds < ? OR (seconds = ? AND id < ?))`,
		sc.Difficulty, sc.Seconds, sc.Seconds, id).Scan(&ahead)
	if err != nil {
		return false, fmt.Errorf("storage: rank score: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM scores WHERE difficulty = ? AND id NOT IN (
			SELECT id FROM scores WHERE difficulty = ? ORDER BY seconds, id LIMIT ?)`,
		sc.Difficulty, sc.Difficulty, TopScores)
	if err != nil {
		return false, fmt.Errorf("storage: prune scores: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: add score: %w", err)
	}
	return ahead < TopScores, nil
}

// Top returns up to n best scores for difficulty, fastest first.
func (s *ScoreStore) Top(ctx context.Context, difficulty string, n int) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, difficulty, seconds, width, height, mines, achieved_at
		 FROM scores WHERE difficulty = ? ORDER BY seconds, id LIMIT ?`, difficulty, n)
	if err != nil {
		return nil, fmt.Errorf("storage: query scores: %w", err)
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var sc Score
		var at int64
		if err := rows.Scan(&sc.ID, &sc.Difficulty, &sc.Seconds, &sc.Width, &sc.Height, &sc.Mines, &at); err != nil {
			return nil, fmt.Errorf("storage: scan score: %w", err)
		}
		sc.AchievedAt = time.Unix(at, 0)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: query scores: %w", err)
	}
	return out, nil
}
