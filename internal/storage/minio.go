package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/arzan03/PalavraDoDia/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps entry images in a MinIO (S3 compatible) bucket and hands
// out their public URLs.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

func NewMinioStore(cfg config.MinioConfig, log *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       log,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("created bucket", slog.String("bucket", s.bucket))
	return nil
}

// Put uploads an object and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return s.URL(objectName), nil
}

// Remove deletes the object behind url. URLs that do not point into this
// bucket are ignored.
func (s *MinioStore) Remove(ctx context.Context, url string) error {
	name, ok := s.ObjectName(url)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *MinioStore) URL(objectName string) string {
	return s.publicURL + "/" + s.bucket + "/" + objectName
}

// ObjectName extracts the object name from a URL produced by URL.
func (s *MinioStore) ObjectName(url string) (string, bool) {
	return objectNameFromURL(s.publicURL+"/"+s.bucket+"/", url)
}

func objectNameFromURL(prefix, url string) (string, bool) {
	name, ok := strings.CutPrefix(url, prefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// ImageObjectName names an uploaded image as <entryID>/<kind>-<uuid><ext>.
func ImageObjectName(entryID, kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s-%s%s", entryID, kind, uuid.NewString(), ext)
}
