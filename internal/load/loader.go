// Package load ingests listings CSV files into the connected database,
// one table per file, with an optional watch mode that reloads a file
// whenever it changes on disk.
package load

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
	"golang.org/x/sync/errgroup"

	"github.com/airlens/airlens/internal/adapter"
)

// debounceDelay coalesces bursts of file events from editors that write in
// several steps.
const debounceDelay = 100 * time.Millisecond

// Loader loads CSV files through a database adapter.
type Loader struct {
	adapter adapter.Adapter
	logger  *slog.Logger
}

// NewLoader creates a loader. If logger is nil, a discard logger is used.
func NewLoader(a adapter.Adapter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{adapter: a, logger: logger}
}

// TableName derives a table name from a CSV file name.
func TableName(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// LoadFile replaces the named table with the file's contents and returns
// the number of rows loaded.
func (l *Loader) LoadFile(ctx context.Context, table, path string) (int64, error) {
	count, err := l.adapter.LoadCSV(ctx, table, path)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	return count, nil
}

// LoadDir loads every .csv file in dir into a table named after the file.
// Files load concurrently; the first failure aborts the whole load.
func (l *Loader) LoadDir(ctx context.Context, dir string) (map[string]int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var mu sync.Mutex
	counts := make(map[string]int64)

	eg, ctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		table := TableName(entry.Name())
		path := filepath.Join(dir, entry.Name())
		eg.Go(func() error {
			count, err := l.LoadFile(ctx, table, path)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[table] = count
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	return counts, nil
}

// Watch reloads the file into the table whenever it changes, calling onLoad
// after every reload attempt. It blocks until the context is cancelled.
func (l *Loader) Watch(ctx context.Context, table, path string, onLoad func(count int64, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file so editors that replace the
	// file on save keep being observed.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(path)
	l.logger.Info("watching for changes", slog.String("path", path))

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != base {
				continue
			}

			// Debounce reloads
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				l.logger.Debug("change detected", slog.String("file", base))
				count, err := l.LoadFile(ctx, table, path)
				if err != nil {
					l.logger.Error("reload failed", slog.Any("error", err))
				}
				if onLoad != nil {
					onLoad(count, err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}
