package storage

import (
	"context"
	"io"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client   *minio.Client
	bucket   string
	basePath string
}

func newMinio(c config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseTLS,
		Region: c.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorage{client: client, bucket: c.Bucket, basePath: c.BasePath}, nil
}

func (m *MinioStorage) Name() string { return "minio" }

func (m *MinioStorage) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	key, err := objectKey(m.basePath, name)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *MinioStorage) Get(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error) {
	key, err := objectKey(m.basePath, name)
	if err != nil {
		return nil, nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, err
	}
	return obj, &ObjectInfo{Size: st.Size, ContentType: st.ContentType}, nil
}

func (m *MinioStorage) Delete(ctx context.Context, name string) error {
	key, err := objectKey(m.basePath, name)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}
