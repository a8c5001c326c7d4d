package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// SaveWatcher reports changes to the save directory so open save listings
// can refresh. Bursts of events are coalesced into one notification.
type SaveWatcher struct {
	Changes <-chan struct{} // Receives one value per settled burst

	changes  chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewSaveWatcher starts watching dir.
func NewSaveWatcher(dir string) (*SaveWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	w := &SaveWatcher{
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Stop closes the watcher and the Changes channel.
func (w *SaveWatcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *SaveWatcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	var last time.Time
	pending := false
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if !isSaveFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.debounce {
				w.emit()
				pending = false
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Debug("save watcher error")
		}
	}
}

// emit never blocks; one queued notification is enough to trigger a reload.
func (w *SaveWatcher) emit() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func isSaveFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, saveExt) && !strings.HasPrefix(base, ".")
}
