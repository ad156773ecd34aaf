package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dweb/dweb/internal/config"
	"github.com/dweb/dweb/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjects is an in-memory ObjectAPI.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failGet error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	if aws.ToString(in.IfNoneMatch) == "*" {
		if _, ok := f.objects[key]; ok {
			return nil, errors.New("PreconditionFailed")
		}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjects) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func newTestS3(t *testing.T) (*S3, *fakeObjects) {
	t.Helper()
	fake := newFakeObjects()
	return NewS3WithClient(fake, "media", WithS3Logger(log.Discard().Slog())), fake
}

func TestS3_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestS3(t)

	key, err := s.Save(ctx, "posts/a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "posts/a.txt", key)
	assert.Equal(t, []byte("hello"), fake.objects["posts/a.txt"])
	assert.Equal(t, "hello", readAll(t, s, key))
	assert.Equal(t, "media", s.Bucket())
}

func TestS3_SaveNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestS3(t)

	first, err := s.Save(ctx, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, fake.objects, 2)
	assert.Equal(t, "one", readAll(t, s, first))
}

func TestS3_ExistsDeleteAndMissing(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestS3(t)

	key, err := s.Save(ctx, "x.bin", strings.NewReader("x"))
	require.NoError(t, err)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, key))

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3_OpenPropagatesErrors(t *testing.T) {
	s, fake := newTestS3(t)
	fake.failGet = errors.New("connection reset")

	_, err := s.Open(context.Background(), "a.txt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestS3_RejectsInvalidNames(t *testing.T) {
	s, _ := newTestS3(t)

	_, err := s.Save(context.Background(), "../a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), config.NewS3Config())
	assert.Error(t, err)
}

func TestNewS3_FromConfig(t *testing.T) {
	cfg := config.NewS3ConfigWithOptions(
		config.WithBucket("media"),
		config.WithEndpoint("localhost:9000"),
		config.WithCredentials("key", "secret"),
		config.WithPathStyle(true),
	)
	s, err := NewS3(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "media", s.Bucket())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(errors.New("api error NotFound: Not Found")))
	assert.False(t, isNotFound(errors.New("access denied")))
}
