package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // emit report files already present
	Debounce    time.Duration // coalesce rapid create/write bursts per file
	SkipHidden  bool
}

// Watch emits the path of every report file created or rewritten under the
// roots until ctx is done. Both channels are closed when the watcher stops.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	var initial []string
	for _, r := range cfg.Roots {
		found, err := addTree(w, r, cfg.SkipHidden)
		if err != nil {
			_ = w.Close()
			logger.Error("ingest.watch.add_root_failed", "root", r, "error", err)
			return nil, nil, err
		}
		if cfg.InitialScan {
			initial = append(initial, found...)
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)
	go run(ctx, w, cfg, initial, evCh, errCh, logger)
	return evCh, errCh, nil
}

func run(ctx context.Context, w *fsnotify.Watcher, cfg WatchConfig, initial []string, evCh chan<- string, errCh chan<- error, logger *slog.Logger) {
	var (
		mu      sync.Mutex
		pending = map[string]*time.Timer{}
		timers  sync.WaitGroup
	)
	emit := func(p string) {
		select {
		case evCh <- p:
		case <-ctx.Done():
		}
	}
	defer func() {
		mu.Lock()
		for p, t := range pending {
			if t.Stop() {
				timers.Done()
			}
			delete(pending, p)
		}
		mu.Unlock()
		timers.Wait()
		if err := w.Close(); err != nil {
			logger.Warn("ingest.watch.close_error", "error", err)
		}
		close(evCh)
		close(errCh)
	}()

	for _, p := range initial {
		emit(p)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if e.Has(fsnotify.Create) {
				found, err := addTree(w, e.Name, cfg.SkipHidden)
				if err != nil {
					logger.Debug("ingest.watch.add_dir_skipped", "path", e.Name, "error", err)
				}
				// a directory moved in brings its files along
				for _, p := range found {
					if p != e.Name {
						emit(p)
					}
				}
			}
			if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
				continue
			}
			if !AllowedExt(filepath.Ext(e.Name)) || (cfg.SkipHidden && IsHidden(e.Name)) {
				continue
			}
			if cfg.Debounce <= 0 {
				emit(e.Name)
				continue
			}
			name := e.Name
			mu.Lock()
			if t, ok := pending[name]; ok {
				if t.Stop() {
					timers.Done()
				}
			}
			timers.Add(1)
			pending[name] = time.AfterFunc(cfg.Debounce, func() {
				defer timers.Done()
				mu.Lock()
				delete(pending, name)
				mu.Unlock()
				emit(name)
			})
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Error("ingest.watch.error", "error", err)
			select {
			case errCh <- err:
			default:
			}
		}
	}
}

// addTree watches root and every directory under it, returning the report
// files it saw on the way.
func addTree(w *fsnotify.Watcher, root string, skipHidden bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if AllowedExt(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
