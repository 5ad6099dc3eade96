// Package objectstore keeps analysis artifacts in an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sensor-anomaly-service/internal/config"
	"sensor-anomaly-service/internal/core/domain"
	ports "sensor-anomaly-service/internal/core/ports/output"
)

type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the object store and makes sure the bucket exists.
func New(ctx context.Context, cfg *config.MinIOConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *Store) Put(ctx context.Context, name, contentType string, data []byte) error {
	if err := domain.ValidateArtifactName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, *ports.Artifact, error) {
	if err := domain.ValidateArtifactName(name); err != nil {
		return nil, nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, translate(name, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, nil, translate(name, err)
	}
	return obj, &ports.Artifact{Name: name, ContentType: info.ContentType, Size: info.Size}, nil
}

func translate(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return domain.ErrArtifactNotFound
	}
	return fmt.Errorf("get object %s: %w", name, err)
}
