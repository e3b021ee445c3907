package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 serves objects from memory.
type stubS3 struct {
	objects map[string][]byte
	bucket  string
}

func (s *stubS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	s.bucket = aws.ToString(params.Bucket)
	data, ok := s.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Product, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func TestS3Loader_Load(t *testing.T) {
	ctx := context.Background()
	client := &stubS3{objects: map[string][]byte{
		"catalog/seed.jsonl.gz": gzipBytes(t, sampleLines),
	}}
	loader := NewS3LoaderWithClient(client, "shop-bucket", zerolog.Nop())

	products, err := loader.Load(ctx, "catalog/seed.jsonl.gz")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "shop-bucket", client.bucket)

	_, err = loader.Load(ctx, "catalog/missing.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get object from S3")
}

func TestFallbackLoader_S3Success(t *testing.T) {
	ctx := context.Background()

	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			assert.Equal(t, "catalog/seed.jsonl", path, "S3 key should have prefix")
			return []model.Product{{Name: "from-s3"}}, nil
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	products, err := NewFallbackLoader(s3Loader, fileLoader, "catalog/", zerolog.Nop()).Load(ctx, "seed.jsonl")

	require.NoError(t, err)
	assert.Equal(t, "from-s3", products[0].Name)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	ctx := context.Background()

	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			assert.Equal(t, "seed.jsonl", path, "local path should not have prefix")
			return []model.Product{{Name: "local"}}, nil
		},
	}

	products, err := NewFallbackLoader(s3Loader, fileLoader, "catalog/", zerolog.Nop()).Load(ctx, "seed.jsonl")

	require.NoError(t, err)
	assert.Equal(t, "local", products[0].Name)
}

func TestFallbackLoader_LocalOnly(t *testing.T) {
	called := false
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			called = true
			return nil, errors.New("missing")
		},
	}

	_, err := NewFallbackLoader(nil, fileLoader, "catalog/", zerolog.Nop()).Load(context.Background(), "seed.jsonl")

	require.Error(t, err)
	assert.True(t, called)
}
