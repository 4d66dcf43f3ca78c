package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/modelshare/modelshare-server/internal/domain"
)

// SearchIndex wraps a Bleve index of models.
// All public methods are safe for concurrent use.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	fresh  bool
	mu     sync.RWMutex // Protects index operations during rebuild
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Uses discard if nil
}

// mappingVersion changes whenever buildIndexMapping does. An index written
// under another version is dropped and rebuilt on open.
const mappingVersion = "1"

// NewSearchIndex opens the index under opts.DataPath, creating it when it is
// missing, unreadable or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &SearchIndex{
		path:   filepath.Join(opts.DataPath, "models.bleve"),
		logger: logger,
	}
	versionPath := filepath.Join(opts.DataPath, "models.version")

	if s.reusable(versionPath) {
		index, err := bleve.Open(s.path)
		if err == nil {
			s.index = index
			logger.Info("opened existing search index", "path", s.path)
			return s, nil
		}
		logger.Warn("failed to open existing index, will recreate", "path", s.path, "error", err)
	}

	if err := os.RemoveAll(s.path); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", s.path, "mapping_version", mappingVersion)

	s.index = index
	s.fresh = true
	return s, nil
}

// reusable reports whether an index exists on disk and was written with the
// current mapping version.
func (s *SearchIndex) reusable(versionPath string) bool {
	if _, err := os.Stat(s.path); err != nil {
		return false
	}
	version, err := os.ReadFile(versionPath)
	if err != nil {
		s.logger.Info("search index has no version file, rebuilding", "new_version", mappingVersion)
		return false
	}
	if string(version) != mappingVersion {
		s.logger.Info("search index mapping version changed, rebuilding",
			"old_version", string(version),
			"new_version", mappingVersion,
		)
		return false
	}
	return true
}

// Fresh reports whether the index was created empty on open and needs a
// backfill from the store.
func (s *SearchIndex) Fresh() bool {
	return s.fresh
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexModel indexes or reindexes a single model.
func (s *SearchIndex) IndexModel(m *domain.Model) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := ModelToDocument(m)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexModels indexes many models in chunked batches.
func (s *SearchIndex) IndexModels(models []*domain.Model) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(models); i += batchSize {
		end := min(i+batchSize, len(models))

		batch := s.index.NewBatch()
		for _, m := range models[i:end] {
			doc := ModelToDocument(m)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteModel removes a model from the index. Unknown ids are ignored.
func (s *SearchIndex) DeleteModel(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DeleteModels removes multiple models from the index.
func (s *SearchIndex) DeleteModels(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}

	return s.index.Batch(batch)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the existing index and creates an empty one.
// It holds the exclusive lock, so searches block until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)

	return nil
}
