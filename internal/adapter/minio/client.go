// Package minio backs the blob store with a MinIO-compatible object store.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/powerviz/plant-data-api/internal/config"
)

// Store implements domain.BlobStore against one MinIO bucket.
type Store struct {
	client *miniogo.Client
	bucket string
	logger *slog.Logger
}

// New connects to the configured MinIO endpoint.
func New(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := miniogo.New(cfg.StoreEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.StoreAccessKey, cfg.StoreSecretKey, ""),
		Secure: cfg.StoreUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	logger.Info("minio store connected", "endpoint", cfg.StoreEndpoint, "bucket", cfg.StoreBucket)
	return &Store{client: client, bucket: cfg.StoreBucket, logger: logger}, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, miniogo.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", name, err)
	}
	defer obj.Close()

	// GetObject is lazy; read errors (including missing objects) surface here.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", name, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("put object %q: %w", name, err)
	}
	return nil
}
