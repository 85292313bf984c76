package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yllada/evpn-assistant/common"
)

// Watcher monitors the config file and reports settings changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	delay    time.Duration
	debounce *time.Timer
	mu       sync.Mutex
	onChange func()
	logger   common.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the config file at path. The directory is watched
// rather than the file so that editors which replace the file on save are
// still seen.
func NewWatcher(path string, onChange func(), logger common.Logger) (*Watcher, error) {
	if logger == nil {
		logger = common.NopLogger{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		path:     filepath.Clean(path),
		delay:    common.SettleDebounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Only care about writes and creates
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleRefresh()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// scheduleRefresh collapses a burst of writes into one callback.
func (w *Watcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(w.delay, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.logger.Debug("Settings changed: %s", w.path)
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Stop closes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
}
