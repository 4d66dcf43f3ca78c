package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/modelshare/modelshare-server/internal/domain"
)

// Key prefixes for the four collections.
const (
	userPrefix    = "user:"
	modelPrefix   = "model:"
	commentPrefix = "comment:"
	filePrefix    = "file:"
)

// DB is the Badger-backed Store.
type DB struct {
	db     *badger.DB
	logger *slog.Logger

	users    *Entity[domain.User]
	models   *Entity[domain.Model]
	comments *Entity[domain.Comment]
	files    *Entity[domain.File]
}

var _ Store = (*DB)(nil)

// New opens (or creates) a Badger database at path.
// An empty path opens an in-memory database, which is what tests use.
func New(path string, logger *slog.Logger) (*DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &DB{
		db:     db,
		logger: logger,
	}

	s.users = NewEntity[domain.User](db, userPrefix).
		WithIndexTransform("username", func(u *domain.User) []string {
			return []string{domain.NormalizeUsername(u.Username)}
		}, domain.NormalizeUsername)
	s.models = NewEntity[domain.Model](db, modelPrefix)
	s.comments = NewEntity[domain.Comment](db, commentPrefix).
		WithIndex("slug", func(c *domain.Comment) []string {
			return []string{c.Slug}
		})
	s.files = NewEntity[domain.File](db, filePrefix)

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path, "in_memory", path == "")
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *DB) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping verifies the database accepts reads.
func (s *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}
