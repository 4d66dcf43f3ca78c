package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/service"
)

func (s *Server) registerFileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "createFile",
		MaxBodyBytes: MaxFileBodySize,
		Method:       http.MethodPost,
		Path:         "/files",
		Summary:      "Create file",
		Description:  "Stores opaque content. Image data URLs get a blurhash placeholder.",
		Tags:         []string{"Files"},
	}, s.handleCreateFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFiles",
		Method:      http.MethodGet,
		Path:        "/files",
		Summary:     "List files",
		Description: "Returns file metadata without content, oldest first",
		Tags:        []string{"Files"},
	}, s.handleListFiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFile",
		Method:      http.MethodGet,
		Path:        "/file/{fileId}",
		Summary:     "Get file",
		Tags:        []string{"Files"},
	}, s.handleGetFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFile",
		Method:      http.MethodDelete,
		Path:        "/file/{fileId}",
		Summary:     "Delete file",
		Tags:        []string{"Files"},
	}, s.handleDeleteFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFileContent",
		Method:      http.MethodGet,
		Path:        "/file/{fileId}/content",
		Summary:     "Get file content",
		Tags:        []string{"Files"},
	}, s.handleGetFileContent)

	huma.Register(s.api, huma.Operation{
		OperationID:  "setFileContent",
		MaxBodyBytes: MaxFileBodySize,
		Method:       http.MethodPut,
		Path:         "/file/{fileId}/content",
		Summary:      "Set file content",
		Tags:         []string{"Files"},
	}, s.handleSetFileContent)
}

// === DTOs ===

// FileIDPath addresses a file by id.
type FileIDPath struct {
	FileID string `path:"fileId" doc:"File ID"`
}

// ContentRequest carries file content.
type ContentRequest struct {
	Content string `json:"content" doc:"Opaque content, usually text or a data URL"`
}

// CreateFileInput wraps the create file request for Huma.
type CreateFileInput struct {
	Body ContentRequest
}

// SetFileContentInput wraps the set content request for Huma.
type SetFileContentInput struct {
	FileIDPath
	Body ContentRequest
}

// FileBody is a single file response.
type FileBody struct {
	StatusBody
	File *FileView `json:"file,omitempty"`
}

// FileOutput wraps a single file for Huma.
type FileOutput struct {
	Body FileBody
}

// ListFilesInput contains parameters for listing files.
type ListFilesInput struct {
	PageParams
}

// FilesBody is a list of file metadata.
type FilesBody struct {
	StatusBody
	Files []FileSummary `json:"files"`
}

// FilesOutput wraps a file list for Huma.
type FilesOutput struct {
	Body FilesBody
}

// === Handlers ===

func (s *Server) handleCreateFile(ctx context.Context, input *CreateFileInput) (*FileOutput, error) {
	f, err := s.services.Files.Create(ctx, input.Body.Content)
	if err != nil {
		return nil, s.fail("createFile", err)
	}
	return &FileOutput{Body: FileBody{StatusBody: StatusBody{Status: service.StatusOK}, File: toFileView(f)}}, nil
}

func (s *Server) handleListFiles(ctx context.Context, input *ListFilesInput) (*FilesOutput, error) {
	files, err := s.services.Files.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listFiles", err)
	}
	out := make([]FileSummary, len(files))
	for i, f := range files {
		out[i] = toFileSummary(f)
	}
	return &FilesOutput{Body: FilesBody{StatusBody: StatusBody{Status: service.StatusOK}, Files: out}}, nil
}

func (s *Server) handleGetFile(ctx context.Context, input *FileIDPath) (*FileOutput, error) {
	f, status, err := s.services.Files.Get(ctx, input.FileID)
	if err != nil {
		return nil, s.fail("getFile", err)
	}
	return &FileOutput{Body: FileBody{StatusBody: StatusBody{Status: status}, File: toFileView(f)}}, nil
}

func (s *Server) handleDeleteFile(ctx context.Context, input *FileIDPath) (*StatusOutput, error) {
	status, err := s.services.Files.Delete(ctx, input.FileID)
	if err != nil {
		return nil, s.fail("deleteFile", err)
	}
	return statusOutput(status), nil
}

func (s *Server) handleGetFileContent(ctx context.Context, input *FileIDPath) (*FieldOutput, error) {
	f, status, err := s.services.Files.Get(ctx, input.FileID)
	if err != nil {
		return nil, s.fail("getFileContent", err)
	}
	return fieldOutput(status, "content", fileContent(f)), nil
}

func (s *Server) handleSetFileContent(ctx context.Context, input *SetFileContentInput) (*FileOutput, error) {
	f, status, err := s.services.Files.SetContent(ctx, input.FileID, input.Body.Content)
	if err != nil {
		return nil, s.fail("setFileContent", err)
	}
	return &FileOutput{Body: FileBody{StatusBody: StatusBody{Status: status}, File: toFileView(f)}}, nil
}

func fileContent(f *domain.File) any {
	if f == nil {
		return nil
	}
	return f.Content
}
