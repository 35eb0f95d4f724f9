package bridge

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MDBrothers/ada-mcp-bridge/logger"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the write-then-chmod-then-write bursts most editors
// produce for a single logical save into one log line.
const debounce = 500 * time.Millisecond

// pollInterval is used only when fsnotify itself cannot be initialized
// (e.g. inotify watch limits exhausted on the host).
const pollInterval = 2 * time.Second

// ConfigWatcher notices changes to the config file and project file the
// bridge was started with and logs them. It never invalidates or restarts
// pooled instances on its own: a config edit only takes effect on the next
// process restart, same as the language server executable path or any other
// startup-time setting.
type ConfigWatcher struct {
	paths []string

	watcher *fsnotify.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewConfigWatcher builds a watcher over paths (empty entries are skipped).
// If fsnotify cannot be initialized, the returned watcher still works via
// the polling fallback in Start, and err reports why fsnotify was
// unavailable.
func NewConfigWatcher(paths []string) (*ConfigWatcher, error) {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}

	w := &ConfigWatcher{paths: existing, stopCh: make(chan struct{})}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return w, err
	}
	for _, p := range existing {
		// Watch the containing directory, not the file itself: editors
		// commonly replace a file via rename-into-place, which drops the
		// original inode's watch.
		if watchErr := fw.Add(filepath.Dir(p)); watchErr != nil {
			logger.Warn("config watcher: failed to watch {Dir}: {Error}", filepath.Dir(p), watchErr.Error())
		}
	}
	w.watcher = fw
	return w, nil
}

// Start begins watching in the background. Safe to call once; a nil
// receiver is a no-op.
func (w *ConfigWatcher) Start() {
	if w == nil {
		return
	}
	if w.watcher != nil {
		go w.runFsnotify()
		return
	}
	go w.runPolling()
}

// Stop releases the underlying watcher resources.
func (w *ConfigWatcher) Stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

func (w *ConfigWatcher) runFsnotify() {
	var pending string
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.tracked(ev.Name) {
				continue
			}
			pending = ev.Name
			timer.Reset(debounce)
		case <-timer.C:
			if pending != "" {
				logger.Info("config file {Path} changed; restart the bridge to apply it", pending)
				pending = ""
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: {Error}", err.Error())
		}
	}
}

func (w *ConfigWatcher) runPolling() {
	mtimes := make(map[string]time.Time, len(w.paths))
	for _, p := range w.paths {
		if info, err := os.Stat(p); err == nil {
			mtimes[p] = info.ModTime()
		}
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			for _, p := range w.paths {
				info, err := os.Stat(p)
				if err != nil {
					continue
				}
				if prev, ok := mtimes[p]; !ok || info.ModTime().After(prev) {
					mtimes[p] = info.ModTime()
					logger.Info("config file {Path} changed; restart the bridge to apply it", p)
				}
			}
		}
	}
}

func (w *ConfigWatcher) tracked(name string) bool {
	for _, p := range w.paths {
		if filepath.Clean(name) == filepath.Clean(p) {
			return true
		}
	}
	return false
}
