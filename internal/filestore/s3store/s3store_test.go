package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore"
)

type objectAPIMock struct {
	mock.Mock
}

func (m *objectAPIMock) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *objectAPIMock) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	client := &objectAPIMock{}
	store := newWithClient(client, "bucket")

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" &&
			aws.ToString(in.Key) == "avatars/u_1_a.png" &&
			aws.ToString(in.ContentType) == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Save(ctx, "u_1_a.png", strings.NewReader("png"), "image/png"))

	assert.ErrorIs(t, store.Save(ctx, "../a.png", strings.NewReader("png"), ""), filestore.ErrInvalidName)

	client.AssertExpectations(t)
}

func TestSaveError(t *testing.T) {
	ctx := context.Background()
	client := &objectAPIMock{}
	store := newWithClient(client, "bucket")

	client.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("boom")).Once()

	err := store.Save(ctx, "a.png", strings.NewReader("png"), "")
	assert.ErrorContains(t, err, "boom")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	client := &objectAPIMock{}
	store := newWithClient(client, "bucket")

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "avatars/a.png"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("png"))}, nil).Once()

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "avatars/missing.png"
	})).Return(nil, &types.NoSuchKey{}).Once()

	body, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png", string(content))

	_, err = store.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, filestore.ErrNotExist)

	_, err = store.Open(ctx, "a/b.png")
	assert.ErrorIs(t, err, filestore.ErrNotExist)

	client.AssertExpectations(t)
}

func TestSaveBuffersUnseekableContent(t *testing.T) {
	ctx := context.Background()
	client := &objectAPIMock{}
	store := newWithClient(client, "bucket")

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		seeker, ok := in.Body.(io.ReadSeeker)
		if !ok {
			return false
		}
		data, err := io.ReadAll(seeker)
		return err == nil && string(data) == "png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Save(ctx, "a.png", bytes.NewBufferString("png"), "image/png"))

	client.AssertExpectations(t)
}

// bucketServer is a path-style S3 endpoint over plain HTTP, the way a
// local MinIO is usually reached.
type bucketServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (b *bucketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.objects[r.URL.Path] = data
		b.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		data, ok := b.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", b.types[r.URL.Path])
		_, _ = w.Write(data)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestStoreOverPlainHTTPEndpoint(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	bucket := &bucketServer{objects: map[string][]byte{}, types: map[string]string{}}
	server := httptest.NewServer(bucket)
	defer server.Close()

	ctx := context.Background()
	store, err := New(ctx, Options{
		Bucket:    "contacts",
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	picture := []byte("\x89PNG not really")
	require.NoError(t, store.Save(ctx, "u_1_a.png", bytes.NewBuffer(picture), "image/png"))
	require.NoError(t, store.Save(ctx, "u_2_b.png", bytes.NewReader(picture), "image/png"))

	bucket.mu.Lock()
	assert.Equal(t, picture, bucket.objects["/contacts/avatars/u_1_a.png"])
	assert.Equal(t, picture, bucket.objects["/contacts/avatars/u_2_b.png"])
	assert.Equal(t, "image/png", bucket.types["/contacts/avatars/u_1_a.png"])
	bucket.mu.Unlock()

	body, err := store.Open(ctx, "u_1_a.png")
	require.NoError(t, err)
	defer body.Close()
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, picture, content)

	_, err = store.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, filestore.ErrNotExist)
}
