package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
)

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Prefix          string
}

// MinioArchive stores rendered reports in an S3 compatible bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ ports.ReportArchive = (*MinioArchive)(nil)

func NewMinioArchive(cfg Config) (*MinioArchive, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("archive endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("archive bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Wrap(err, "create minio client")
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return errs.Wrapf(err, "check bucket %s", a.bucket)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return errs.Wrapf(err, "create bucket %s", a.bucket)
	}
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.archive")),
		"archive bucket created",
		slog.String("bucket", a.bucket),
	)
	return nil
}

func (a *MinioArchive) Put(ctx context.Context, name string, contentType string, body []byte) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	key := objectKey(a.prefix, name)
	if key == "" {
		return "", errors.New("object name is required")
	}
	if err := a.EnsureBucket(ctx); err != nil {
		return "", err
	}

	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errs.Wrapf(err, "put object %s", key)
	}

	location := fmt.Sprintf("s3://%s/%s", info.Bucket, info.Key)
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.archive")),
		"report archived",
		slog.String("location", location),
		slog.Int64("size", info.Size),
	)
	return location, nil
}

func objectKey(prefix string, name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return ""
	}
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
