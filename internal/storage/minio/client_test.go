package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/signdesk-server/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string

	putErr         error
	putKey         string
	putSize        int64
	putContentType string
	putData        []byte

	getRC  io.ReadCloser
	getErr error

	statErr error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = bucket
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey = key
	f.putSize = size
	f.putContentType = opts.ContentType
	f.putData, _ = io.ReadAll(r)
	return minioLib.UploadInfo{Key: key, Size: size}, f.putErr
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return minioLib.ObjectInfo{}, f.statErr
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
	assert.Empty(t, api.madeBucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.bucket)
	assert.Equal(t, "bucket", api.madeBucket)
}

func TestNewClientWithAPI_Errors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeMinio
	}{
		{name: "bucket exists error", api: &fakeMinio{bucketExistsErr: errors.New("boom")}},
		{name: "make bucket error", api: &fakeMinio{makeBucketErr: errors.New("fail")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClientWithAPI(context.Background(), tt.api, "bucket")
			assert.Nil(t, c)
			assert.ErrorContains(t, err, "failed to ensure bucket exists")
		})
	}
}

func TestClient_Store(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1700000000000)

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b", now: func() time.Time { return fixed }}
		data := []byte("%PDF-1.4\n")

		locator, err := c.Store(ctx, data, "dir/report.pdf")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(locator, "/uploads/1700000000000-"))
		assert.True(t, strings.HasSuffix(locator, "-report.pdf"))
		assert.Equal(t, "/uploads/"+api.putKey, locator)
		assert.Equal(t, int64(len(data)), api.putSize)
		assert.Equal(t, data, api.putData)
		assert.Equal(t, "application/pdf", api.putContentType)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{putErr: errors.New("put-fail")}
		c := &Client{api: api, bucket: "b", now: time.Now}

		locator, err := c.Store(ctx, []byte("data"), "a.pdf")
		assert.Empty(t, locator)
		assert.ErrorIs(t, err, model.ErrStorage)
		assert.ErrorContains(t, err, "upload object")
	})
}

func TestClient_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{getRC: io.NopCloser(bytes.NewReader([]byte("abc")))}
		c := &Client{api: api, bucket: "b"}
		rc, err := c.Open(ctx, "k")
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("not found", func(t *testing.T) {
		api := &fakeMinio{statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
		c := &Client{api: api, bucket: "b"}
		rc, err := c.Open(ctx, "absent")
		assert.Nil(t, rc)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		c := &Client{api: &fakeMinio{}, bucket: "b"}
		_, err := c.Open(ctx, "../k")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("stat error", func(t *testing.T) {
		api := &fakeMinio{statErr: errors.New("stat-fail")}
		c := &Client{api: api, bucket: "b"}
		_, err := c.Open(ctx, "k")
		assert.ErrorIs(t, err, model.ErrStorage)
	})

	t.Run("get error", func(t *testing.T) {
		api := &fakeMinio{getErr: errors.New("get-fail")}
		c := &Client{api: api, bucket: "b"}
		_, err := c.Open(ctx, "k")
		assert.ErrorIs(t, err, model.ErrStorage)
		assert.ErrorContains(t, err, "get object")
	})
}
