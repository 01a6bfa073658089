package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"

	"casework-service/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DocumentStore keeps visitor documents in a MinIO bucket.
type DocumentStore struct {
	client *minio.Client
	bucket string
}

func NewDocumentStore(cfg *config.MinioConfig) (*DocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	slog.Info("MinIO connection established", "bucket", cfg.Bucket)
	return &DocumentStore{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores the file under a collision-free object key and returns the
// key together with a direct URL.
func (s *DocumentStore) Upload(ctx context.Context, userID uint, file *multipart.FileHeader) (key, url string, err error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	key = fmt.Sprintf("documents/%d/%s%s", userID, uuid.New().String(), path.Ext(file.Filename))
	_, err = s.client.PutObject(ctx, s.bucket, key, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	url = fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucket, key)
	return key, url, nil
}

// Remove deletes an object; used when a rejected document is re-uploaded.
func (s *DocumentStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
