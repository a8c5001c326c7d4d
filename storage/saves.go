package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
)

const saveExt = ".json"

var (
	// ErrSaveNotFound is returned when no save file exists under a name.
	ErrSaveNotFound = errors.New("save not found")
	// ErrInvalidSaveName is returned for empty names or names that would
	// escape the save directory.
	ErrInvalidSaveName = errors.New("invalid save name")
)

// SaveInfo is a lightweight listing entry.
type SaveInfo struct {
	Name       string
	SavedAt    time.Time
	Difficulty string
	Elapsed    int
	Width      int
	Height     int
	Status     models.Status
}

// saveDocument is the on-disk form: the board state with the save time
// alongside its fields.
type saveDocument struct {
	models.BoardState
	SavedAt time.Time `json:"savedAt"`
}

// SaveStore keeps one JSON file per saved game in a directory.
type SaveStore struct {
	dir string
	now func() time.Time
}

// NewSaveStore opens dir as a save directory, creating it if needed.
func NewSaveStore(dir string) (*SaveStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create save dir: %w", err)
	}
	return &SaveStore{dir: dir, now: time.Now}, nil
}

// Dir is the directory holding the save files.
func (s *SaveStore) Dir() string { return s.dir }

// DefaultSaveName returns a timestamped name for saves the player did not
// name.
func DefaultSaveName(t time.Time) string {
	return "minesweeper_save_" + t.Format("20060102_150405")
}

// cleanName validates a save name and strips an optional .json suffix.
// Names may not start with a dot.
func cleanName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), saveExt)
	// A leading dot would hide the save from List and the watcher.
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSaveName, name)
	}
	return name, nil
}

func (s *SaveStore) pathFor(name string) string {
	return filepath.Join(s.dir, name+saveExt)
}

// Save writes st under name, replacing any save with the same name. The file
// is written next to its target and renamed into place.
func (s *SaveStore) Save(ctx context.Context, name string, st models.BoardState) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(saveDocument{BoardState: st, SavedAt: s.now().UTC()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: encode save %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("storage: save %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write save %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: write save %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.pathFor(name)); err != nil {
		return "", fmt.Errorf("storage: save %q: %w", name, err)
	}
	return name, nil
}

// Load reads and validates the save called name. The returned state has
// passed field-presence checks; models.Restore performs the consistency
// checks.
func (s *SaveStore) Load(ctx context.Context, name string) (models.BoardState, error) {
	if err := ctx.Err(); err != nil {
		return models.BoardState{}, err
	}
	name, err := cleanName(name)
	if err != nil {
		return models.BoardState{}, err
	}

	data, err := os.ReadFile(s.pathFor(name))
	if errors.Is(err, os.ErrNotExist) {
		return models.BoardState{}, fmt.Errorf("storage: load save %q: %w", name, ErrSaveNotFound)
	}
	if err != nil {
		return models.BoardState{}, fmt.Errorf("storage: load save %q: %w", name, err)
	}

	st, err := models.DecodeState(data)
	if err != nil {
		return models.BoardState{}, fmt.Errorf("storage: load save %q: %w", name, err)
	}
	return st, nil
}

// List returns every readable save, newest first. Files that fail to parse
// are logged and skipped.
func (s *SaveStore) List(ctx context.Context) ([]SaveInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list saves: %w", err)
	}

	var out []SaveInfo
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), saveExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.WithError(err).WithField("file", path).Warn("skipping unreadable save")
			continue
		}
		var doc saveDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			logrus.WithError(err).WithField("file", path).Warn("skipping corrupt save")
			continue
		}
		out = append(out, SaveInfo{
			Name:       strings.TrimSuffix(e.Name(), saveExt),
			SavedAt:    doc.SavedAt,
			Difficulty: doc.DifficultyLabel,
			Elapsed:    doc.ElapsedTime,
			Width:      doc.Width,
			Height:     doc.Height,
			Status:     doc.Status,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Delete removes the save called name.
func (s *SaveStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	err = os.Remove(s.pathFor(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete save %q: %w", name, ErrSaveNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage: delete save %q: %w", name, err)
	}
	return nil
}
