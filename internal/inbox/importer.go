package inbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// FileSink persists an imported file.
type FileSink interface {
	ImportFile(ctx context.Context, name string, data []byte) (*domain.File, error)
}

// Importer turns files dropped in a directory into File documents.
type Importer struct {
	dir     string
	watcher *Watcher
	sink    FileSink
	opts    Options
	logger  *slog.Logger
}

// NewImporter watches dir and hands every settled file to sink.
func NewImporter(dir string, sink FileSink, logger *slog.Logger, opts Options) (*Importer, error) {
	opts.setDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	w, err := NewWatcher(logger, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return nil, err
	}

	return &Importer{
		dir:     dir,
		watcher: w,
		sink:    sink,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Run imports files already waiting in the inbox, then follows new ones
// until ctx is done.
func (i *Importer) Run(ctx context.Context) {
	go i.watcher.Start(ctx)

	i.importExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-i.watcher.Events():
			if err := i.importFile(ctx, event.Path); err != nil {
				i.logger.Error("inbox import failed", "path", event.Path, "error", err)
			}
		case err := <-i.watcher.Errors():
			i.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// Shutdown stops the underlying watcher.
func (i *Importer) Shutdown() error {
	return i.watcher.Stop()
}

func (i *Importer) importExisting(ctx context.Context) {
	err := filepath.WalkDir(i.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || ctx.Err() != nil {
			return nil
		}
		if p != i.dir && i.opts.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := i.importFile(ctx, p); err != nil {
			i.logger.Error("inbox import failed", "path", p, "error", err)
		}
		return nil
	})
	if err != nil {
		i.logger.Warn("inbox scan failed", "error", err)
	}
}

func (i *Importer) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path) //#nosec G304 -- path comes from walking the configured inbox
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, i.opts.MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > i.opts.MaxFileSize {
		return fmt.Errorf("file exceeds %d bytes", i.opts.MaxFileSize)
	}

	file, err := i.sink.ImportFile(ctx, filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	i.logger.Info("imported inbox file", "path", path, "file_id", file.ID, "size", file.Size)

	if i.opts.KeepImported {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove imported file: %w", err)
	}
	return nil
}
