// Package watcher ingests case documents dropped into an inbox directory laid
// out as <inbox>/<case name>/<file>.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"legal-assistant/internal/pdftext"
)

// FileFunc acts on the inbox file at path, which belongs to caseName.
type FileFunc func(ctx context.Context, caseName, path string) error

type Watcher struct {
	root   string
	ingest FileFunc
	remove FileFunc
	log    *slog.Logger

	// Debounce coalesces the burst of write events editors and copies produce.
	Debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New returns a watcher that calls ingest for new or changed files and
// remove for files deleted or renamed away.
func New(root string, ingest, remove FileFunc, log *slog.Logger) *Watcher {
	return &Watcher{
		root:     filepath.Clean(root),
		ingest:   ingest,
		remove:   remove,
		log:      log,
		Debounce: 500 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}
}

// CaseOf returns the case a path belongs to. Only files exactly one level
// below a case directory count.
func CaseOf(root, path string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0], true
}

// Scan ingests every supported file already present in the inbox.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, path := range w.caseFiles(e.Name()) {
			if err := w.ingest(ctx, e.Name(), path); err != nil {
				w.log.Error("inbox ingest failed", "path", path, "err", err)
			}
		}
	}
	return nil
}

// caseFiles lists the supported files directly inside a case directory.
func (w *Watcher) caseFiles(caseName string) []string {
	dir := filepath.Join(w.root, caseName)
	files, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warn("skipping unreadable case directory", "dir", dir, "err", err)
		return nil
	}
	var paths []string
	for _, f := range files {
		if !f.IsDir() && pdftext.IsSupported(f.Name()) {
			paths = append(paths, filepath.Join(dir, f.Name()))
		}
	}
	return paths
}

// Run watches the inbox until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := fw.Add(filepath.Join(w.root, e.Name())); err != nil {
				w.log.Warn("cannot watch case directory", "case", e.Name(), "err", err)
			}
		}
	}
	w.log.Info("watching inbox", "dir", w.root)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "err", err)
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, event)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if filepath.Dir(event.Name) == w.root {
		if event.Has(fsnotify.Create) {
			w.addCase(ctx, fw, event.Name)
		}
		return
	}
	caseName, ok := CaseOf(w.root, event.Name)
	if !ok || !pdftext.IsSupported(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		// a rename shows up as a Create for the new name
		w.cancel(event.Name)
		w.log.Info("inbox file removed", "case", caseName, "path", event.Name)
		if err := w.remove(ctx, caseName, event.Name); err != nil {
			w.log.Error("inbox removal failed", "path", event.Name, "err", err)
		}
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		w.schedule(ctx, caseName, event.Name)
	}
}

// addCase watches a case directory created in or moved into the inbox and
// picks up the files it already holds.
func (w *Watcher) addCase(ctx context.Context, fw *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fw.Add(dir); err != nil {
		w.log.Warn("cannot watch case directory", "dir", dir, "err", err)
		return
	}
	caseName := filepath.Base(dir)
	for _, path := range w.caseFiles(caseName) {
		w.schedule(ctx, caseName, path)
	}
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) schedule(ctx context.Context, caseName, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.log.Info("inbox file changed", "case", caseName, "path", path)
		if err := w.ingest(ctx, caseName, path); err != nil {
			w.log.Error("inbox ingest failed", "path", path, "err", err)
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
