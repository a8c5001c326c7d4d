package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC))
	if want := "minesweeper_20240506.log"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"info by default", false, false},
		{"debug when verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logrus.New()
			Configure(l, &buf, tt.verbose)

			l.WithField("difficulty", "Easy").Info("game started")
			l.Debug("placing mines")

			out := buf.String()
			if !strings.Contains(out, "game started") || !strings.Contains(out, "difficulty=Easy") {
				t.Errorf("info entry missing from %q", out)
			}
			if got := strings.Contains(out, "placing mines"); got != tt.wantDebug {
				t.Errorf("debug entry logged = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(dir, false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() {
		closer.Close()
		logrus.SetOutput(&bytes.Buffer{})
	}()
	logrus.Info("hello")
}
