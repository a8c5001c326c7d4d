package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName returns the daily log file name for t.
func FileName(t time.Time) string {
	return "minesweeper_" + t.Format("20060102") + ".log"
}

// Setup points the standard logrus logger at today's log file in dir. The
// terminal belongs to the game while it runs, so nothing is written to
// stdout. The returned closer flushes and closes the file.
func Setup(dir string, verbose bool) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	path := filepath.Join(dir, FileName(time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	Configure(logrus.StandardLogger(), f, verbose)
	return f, nil
}

// Configure sets the output, formatter, and level of l.
func Configure(l *logrus.Logger, out io.Writer, verbose bool) {
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
}
