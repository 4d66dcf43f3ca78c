package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/modelshare/modelshare-server/internal/blob"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memContent is an in-memory blob.ContentStore.
type memContent struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemContent() *memContent {
	return &memContent{objects: make(map[string][]byte)}
}

func (m *memContent) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(data)
	return nil
}

func (m *memContent) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

func (m *memContent) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memContent) Ping(context.Context) error { return nil }
func (m *memContent) Name() string               { return "memory" }

func pngDataURL(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestFile_InlineContent(t *testing.T) {
	s := newTestStore(t)
	events := &recordingEmitter{}
	svc := NewFileService(s, nil, events, testLogger())
	ctx := context.Background()

	f, err := svc.Create(ctx, "solid cube\nfacet normal 0 0 1")
	require.NoError(t, err)
	assert.Equal(t, "solid cube\nfacet normal 0 0 1", f.Content)
	assert.Empty(t, f.ContentRef)
	assert.Equal(t, len("solid cube\nfacet normal 0 0 1"), f.Size)
	assert.Contains(t, f.ContentType, "text/plain")

	got, status, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, f.Content, got.Content)

	updated, status, err := svc.SetContent(ctx, f.ID, "solid sphere")
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, "solid sphere", updated.Content)
	assert.Equal(t, len("solid sphere"), updated.Size)

	listed, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Content)

	status, err = svc.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	_, status, err = svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFileMissing, status)

	assert.Equal(t, []sse.EventType{sse.EventFileCreated, sse.EventFileUpdated, sse.EventFileDeleted}, events.types())
}

func TestFile_ImageDataURLGetsBlurHash(t *testing.T) {
	svc := NewFileService(newTestStore(t), nil, NoopEmitter{}, testLogger())

	f, err := svc.Create(context.Background(), pngDataURL(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.NotEmpty(t, f.BlurHash)
}

func TestFile_OffloadedContent(t *testing.T) {
	s := newTestStore(t)
	content := newMemContent()
	svc := NewFileService(s, content, NoopEmitter{}, testLogger())
	ctx := context.Background()

	f, err := svc.Create(ctx, "solid cube")
	require.NoError(t, err)
	assert.Equal(t, "solid cube", f.Content)
	assert.Equal(t, f.ID, f.ContentRef)

	stored, err := s.GetFile(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Content)
	assert.Equal(t, []byte("solid cube"), content.objects[f.ID])

	got, status, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, "solid cube", got.Content)

	status, err = svc.Delete(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Empty(t, content.objects)
}

func TestFile_ImportFile(t *testing.T) {
	s := newTestStore(t)
	svc := NewFileService(s, nil, NoopEmitter{}, testLogger())
	ctx := context.Background()

	text, err := svc.ImportFile(ctx, "cube.stl", []byte("solid cube"))
	require.NoError(t, err)
	assert.Equal(t, "solid cube", text.Content)

	binary := []byte{0x00, 0xff, 0xfe, 0x01}
	bin, err := svc.ImportFile(ctx, "cube.bin", binary)
	require.NoError(t, err)
	assert.Contains(t, bin.Content, ";base64,"+base64.StdEncoding.EncodeToString(binary))
	assert.Equal(t, len(binary), bin.Size)

	files, err := s.ListFiles(ctx, store.Query[domain.File]{})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFile_MissingFile(t *testing.T) {
	svc := NewFileService(newTestStore(t), nil, NoopEmitter{}, testLogger())
	ctx := context.Background()

	_, status, err := svc.SetContent(ctx, "fil-gone", "x")
	require.NoError(t, err)
	assert.Equal(t, StatusFileMissing, status)

	status, err = svc.Delete(ctx, "fil-gone")
	require.NoError(t, err)
	assert.Equal(t, StatusFileMissing, status)
}
