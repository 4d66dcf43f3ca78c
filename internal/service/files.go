package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"unicode/utf8"

	"github.com/modelshare/modelshare-server/internal/blob"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/id"
	"github.com/modelshare/modelshare-server/internal/media/images"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
)

// FileService stores opaque file content. Content lives inline in the file
// document unless a ContentStore is configured, in which case the document
// keeps a reference and the bytes go to the content store.
type FileService struct {
	store   store.FileStore
	content blob.ContentStore // nil keeps content inline
	events  EventEmitter
	logger  *slog.Logger
}

// NewFileService creates a file service. content may be nil.
func NewFileService(s store.FileStore, content blob.ContentStore, events EventEmitter, logger *slog.Logger) *FileService {
	return &FileService{
		store:   s,
		content: content,
		events:  events,
		logger:  logger,
	}
}

// Create stores new file content.
func (s *FileService) Create(ctx context.Context, content string) (*domain.File, error) {
	fileID, err := id.Generate(id.PrefixFile)
	if err != nil {
		return nil, err
	}

	set, err := s.prepare(ctx, fileID, content)
	if err != nil {
		return nil, err
	}

	f := &domain.File{Document: domain.Document{ID: fileID}}
	f.Apply(set)
	f.InitTimestamps()

	if err := s.store.CreateFile(ctx, f); err != nil {
		s.dropContent(ctx, set)
		return nil, fmt.Errorf("create file: %w", err)
	}

	s.events.Emit(sse.NewFileEvent(sse.EventFileCreated, f))
	s.logger.Info("file created", "file_id", f.ID, "size", f.Size, "content_type", f.ContentType)

	return s.withContent(f, content), nil
}

// ImportFile stores a file picked up from the inbox directory. Text is kept
// as is; anything else is stored as a base64 data URL so it survives the
// string content field.
func (s *FileService) ImportFile(ctx context.Context, name string, data []byte) (*domain.File, error) {
	content := string(data)
	if !utf8.Valid(data) {
		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		content = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return s.Create(ctx, content)
}

// Get returns a file with its content loaded.
func (s *FileService) Get(ctx context.Context, fileID string) (*domain.File, Status, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusFileMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	if f.ContentRef != "" {
		content, err := s.loadContent(ctx, f.ContentRef)
		if errors.Is(err, blob.ErrNotFound) {
			return nil, StatusFileMissing, nil
		}
		if err != nil {
			return nil, "", err
		}
		f = s.withContent(f, content)
	}
	return f, StatusOK, nil
}

// List returns file metadata ordered by creation time. Content is not loaded.
func (s *FileService) List(ctx context.Context, offset, limit int) ([]*domain.File, error) {
	files, err := s.store.ListFiles(ctx, store.Query[domain.File]{
		Less:   func(a, b *domain.File) bool { return a.CreatedAt.Before(b.CreatedAt) },
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	out := make([]*domain.File, len(files))
	for i, f := range files {
		meta := *f
		meta.Content = ""
		out[i] = &meta
	}
	return out, nil
}

// SetContent replaces the content of an existing file.
func (s *FileService) SetContent(ctx context.Context, fileID, content string) (*domain.File, Status, error) {
	if _, err := s.store.GetFile(ctx, fileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, StatusFileMissing, nil
		}
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	set, err := s.prepare(ctx, fileID, content)
	if err != nil {
		return nil, "", err
	}

	f, err := s.store.UpdateFile(ctx, fileID, set)
	if errors.Is(err, store.ErrNotFound) {
		s.dropContent(ctx, set)
		return nil, StatusFileMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("update file: %w", err)
	}

	s.events.Emit(sse.NewFileEvent(sse.EventFileUpdated, f))
	return s.withContent(f, content), StatusOK, nil
}

// Delete removes the file document and any offloaded content.
func (s *FileService) Delete(ctx context.Context, fileID string) (Status, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if errors.Is(err, store.ErrNotFound) {
		return StatusFileMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	if err := s.store.DeleteFile(ctx, fileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusFileMissing, nil
		}
		return "", fmt.Errorf("delete file: %w", err)
	}

	if f.ContentRef != "" && s.content != nil {
		if err := s.content.Delete(ctx, f.ContentRef); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn("failed to delete file content", "file_id", fileID, "ref", f.ContentRef, "error", err)
		}
	}

	s.events.Emit(sse.NewFileDeletedEvent(fileID))
	s.logger.Info("file deleted", "file_id", fileID)
	return StatusOK, nil
}

// prepare inspects content and, with a content store configured, uploads it.
func (s *FileService) prepare(ctx context.Context, fileID, content string) (domain.SetContent, error) {
	info := images.Inspect(content)
	set := domain.SetContent{
		Content:     content,
		Size:        int(info.Size),
		ContentType: info.ContentType,
		BlurHash:    info.BlurHash,
	}

	if s.content == nil {
		return set, nil
	}

	if err := s.content.Put(ctx, fileID, []byte(content), info.ContentType); err != nil {
		return domain.SetContent{}, fmt.Errorf("store content in %s: %w", s.content.Name(), err)
	}
	set.Content = ""
	set.ContentRef = fileID
	return set, nil
}

func (s *FileService) dropContent(ctx context.Context, set domain.SetContent) {
	if set.ContentRef == "" || s.content == nil {
		return
	}
	if err := s.content.Delete(ctx, set.ContentRef); err != nil {
		s.logger.Warn("failed to clean up file content", "ref", set.ContentRef, "error", err)
	}
}

func (s *FileService) loadContent(ctx context.Context, ref string) (string, error) {
	if s.content == nil {
		return "", fmt.Errorf("file content %s is offloaded but no content store is configured", ref)
	}
	data, err := s.content.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("load content from %s: %w", s.content.Name(), err)
	}
	return string(data), nil
}

// withContent returns a copy of f carrying content, leaving the stored
// document untouched.
func (s *FileService) withContent(f *domain.File, content string) *domain.File {
	out := *f
	out.Content = content
	return &out
}
