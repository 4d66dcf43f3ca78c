package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	bucketErr    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.contentTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.bucketErr
}

func newTestS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	return NewS3Store(fake, S3Options{Bucket: "models"}, slog.New(slog.DiscardHandler)), fake
}

func TestS3Store_RoundTrip(t *testing.T) {
	store, fake := newTestS3Store(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "fil-1", []byte("solid cube"), "model/stl"))
	assert.Contains(t, fake.objects, "files/fil-1")
	assert.Equal(t, "model/stl", fake.contentTypes["files/fil-1"])

	data, err := store.Get(ctx, "fil-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("solid cube"), data)

	require.NoError(t, store.Delete(ctx, "fil-1"))
	_, err = store.Get(ctx, "fil-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	require.NoError(t, store.Delete(ctx, "fil-1"))
}

func TestS3Store_Ping(t *testing.T) {
	store, fake := newTestS3Store(t)
	require.NoError(t, store.Ping(context.Background()))

	fake.bucketErr = errors.New("forbidden")
	assert.ErrorContains(t, store.Ping(context.Background()), "head bucket models")
}

func TestS3Store_CustomPrefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, S3Options{Bucket: "b", Prefix: "tenant/"}, slog.New(slog.DiscardHandler))

	require.NoError(t, store.Put(context.Background(), "fil-1", []byte("x"), ""))
	assert.Contains(t, fake.objects, "tenant/fil-1")
	assert.Equal(t, "s3", store.Name())
}
