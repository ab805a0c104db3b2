package notify

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher feeds filesystem changes on the backing tool's files into a
// debounced Notifier. Directories are watched rather than the files
// themselves because editors and the backing tool both replace files via
// rename, which drops a direct file watch.
type Watcher struct {
	fw      *fsnotify.Watcher
	targets map[string]bool
	done    chan struct{}
}

// Watch starts watching the given file paths.
func Watch(paths []string, notifier *Notifier) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fw: fw, targets: make(map[string]bool, len(paths)), done: make(chan struct{})}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			slog.Warn("could not watch directory", "dir", dir, "error", err)
		}
	}

	go w.loop(notifier)
	return w, nil
}

func (w *Watcher) loop(notifier *Notifier) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.targets[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				slog.Debug("backing file changed", "path", abs, "op", event.Op.String())
				notifier.Request()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
