package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
)

const (
	DefaultDebounce = 250 * time.Millisecond

	metricsSource = "file"
)

// ReloadHook is called after every reload attempt.
type ReloadHook func(catalog *metadata.Catalog, err error)

// FileReloader reloads a metadata file into a Store whenever it changes. A
// reload that fails is logged and the previous catalog keeps being served.
type FileReloader struct {
	path     string
	store    *Store
	debounce time.Duration
	logger   logr.Logger
	recorder *metrics.Recorder
	hook     ReloadHook
	load     func(string) (*metadata.Catalog, error)
}

type Option func(*FileReloader)

func WithDebounce(d time.Duration) Option {
	return func(r *FileReloader) {
		if d > 0 {
			r.debounce = d
		}
	}
}

func WithLogger(l logr.Logger) Option {
	return func(r *FileReloader) {
		r.logger = l
	}
}

func WithRecorder(rec *metrics.Recorder) Option {
	return func(r *FileReloader) {
		r.recorder = rec
	}
}

func WithReloadHook(h ReloadHook) Option {
	return func(r *FileReloader) {
		r.hook = h
	}
}

func NewFileReloader(path string, store *Store, opts ...Option) *FileReloader {
	r := &FileReloader{
		path:     filepath.Clean(path),
		store:    store,
		debounce: DefaultDebounce,
		logger:   logr.Discard(),
		load:     metadata.LoadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload reads the file once and swaps it in on success.
func (r *FileReloader) Reload() error {
	catalog, err := r.load(r.path)
	r.recorder.ObserveMetadataLoad(metricsSource, err)
	if err != nil {
		r.logger.Error(err, "metadata reload failed; keeping previous catalog", "path", r.path)
	} else {
		r.store.Swap(catalog)
		r.logger.Info("metadata reloaded", "path", r.path, "count", catalog.Len())
	}
	if r.hook != nil {
		r.hook(catalog, err)
	}
	return err
}

// Run watches the file's directory until ctx is done. The file is loaded once
// after the watch is in place so no change is missed between startup and Run.
// Watching the directory rather than the file survives editors and ConfigMap
// mounts that replace the file.
func (r *FileReloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.logger.Info("watching metadata file", "path", r.path)
	_ = r.Reload()

	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			r.logger.V(1).Info("metadata file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(r.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error(err, "watcher error", "path", r.path)

		case <-timer.C:
			_ = r.Reload()
		}
	}
}

func (r *FileReloader) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == r.path {
		return true
	}
	// Kubernetes ConfigMap volumes swap a ..data symlink.
	return filepath.Base(name) == "..data"
}
