// Package watcher ingests catalog drop files. It monitors a single import
// directory for JSON book files and upserts them into the catalog once each
// file has settled (stopped growing), so half-copied files are never parsed.
package watcher

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// DefaultSettleDelay is how long a file must stay unchanged before import.
const DefaultSettleDelay = 500 * time.Millisecond

// processedDir is where successfully imported files are moved.
const processedDir = "processed"

// failedDir is where files that could not be imported are moved.
const failedDir = "failed"

// Importer upserts books into the catalog.
type Importer interface {
	ImportBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
}

// pendingFile tracks a drop file that may still be copying in.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// ImportWatcher watches a drop directory and imports settled JSON files.
type ImportWatcher struct {
	dir         string
	importer    Importer
	logger      *slog.Logger
	settleDelay time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates an import watcher for the given directory, creating the
// directory (and its processed/failed subdirectories) if needed.
func New(dir string, importer Importer, logger *slog.Logger) (*ImportWatcher, error) {
	for _, d := range []string{dir, filepath.Join(dir, processedDir), filepath.Join(dir, failedDir)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create import directory %s: %w", d, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch import directory: %w", err)
	}

	return &ImportWatcher{
		dir:         dir,
		importer:    importer,
		logger:      logger,
		settleDelay: DefaultSettleDelay,
		watcher:     fsw,
		pending:     make(map[string]*pendingFile),
		done:        make(chan struct{}),
	}, nil
}

// Start processes existing drop files, then watches for new ones until the
// context is cancelled.
func (w *ImportWatcher) Start(ctx context.Context) error {
	// Pick up files dropped while the server was down.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read import directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && isImportFile(entry.Name()) {
			w.importFile(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}

	w.wg.Add(1)
	go w.processEvents(ctx)

	w.logger.Info("Catalog import watcher started", "dir", w.dir)

	<-ctx.Done()
	return w.Stop()
}

// Stop shuts the watcher down and waits for in-flight work.
func (w *ImportWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, pending := range w.pending {
			pending.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		w.watcher.Close()
		w.wg.Wait()
	})
	return nil
}

func (w *ImportWatcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && isImportFile(event.Name) {
				w.startSettling(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Import watcher error", "error", err)
		}
	}
}

// startSettling arms (or re-arms) the settle timer for a drop file.
func (w *ImportWatcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(w.pending, path)
		return
	}

	pending := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	pending.timer = time.AfterFunc(w.settleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = pending
}

// checkSettled imports the file if it stopped changing, or re-arms the timer.
func (w *ImportWatcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()

	pending, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// File disappeared before settling.
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		// Still being written, wait another round.
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.settleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.importFile(ctx, path)
}

// importFile parses a drop file and upserts its books, then moves the file
// to processed/ or failed/.
func (w *ImportWatcher) importFile(ctx context.Context, path string) {
	books, err := decodeImportFile(path)
	if err != nil {
		w.logger.Error("Failed to parse import file", "path", path, "error", err)
		w.moveTo(path, failedDir)
		return
	}

	imported := 0
	for _, book := range books {
		if _, err := w.importer.ImportBook(ctx, book); err != nil {
			w.logger.Error("Failed to import book",
				"path", path,
				"title", book.Title,
				"error", err,
			)
			continue
		}
		imported++
	}

	if imported == 0 && len(books) > 0 {
		w.moveTo(path, failedDir)
		return
	}

	w.logger.Info("Imported catalog drop file",
		"path", path,
		"books", imported,
		"skipped", len(books)-imported,
	)
	w.moveTo(path, processedDir)
}

// moveTo relocates a drop file into a sibling subdirectory.
func (w *ImportWatcher) moveTo(path, subdir string) {
	dest := filepath.Join(w.dir, subdir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Warn("Failed to move import file", "path", path, "dest", dest, "error", err)
	}
}

// decodeImportFile reads a JSON drop file holding either a single book
// object or an array of them.
func decodeImportFile(path string) ([]*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var books []*domain.Book
		if err := json.Unmarshal(data, &books); err != nil {
			return nil, fmt.Errorf("parse book array: %w", err)
		}
		return books, nil
	}

	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse book: %w", err)
	}
	return []*domain.Book{&book}, nil
}

// isImportFile reports whether a path looks like a catalog drop file.
func isImportFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
