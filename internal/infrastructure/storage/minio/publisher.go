// Package minio publishes refreshed source artifacts to object storage,
// versioned by their marker, for downstream consumers and audits.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// objectAPI is the minio-go surface the publisher needs.
type objectAPI interface {
	PutObject(ctx context.Context, bucket, object string, reader *bytes.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts miniogo.MakeBucketOptions) error
}

type minioAPI struct {
	c *miniogo.Client
}

func (a minioAPI) PutObject(ctx context.Context, bucket, object string, reader *bytes.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	return a.c.PutObject(ctx, bucket, object, reader, size, opts)
}

func (a minioAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return a.c.BucketExists(ctx, bucket)
}

func (a minioAPI) MakeBucket(ctx context.Context, bucket string, opts miniogo.MakeBucketOptions) error {
	return a.c.MakeBucket(ctx, bucket, opts)
}

// Publisher uploads changed artifacts.
type Publisher struct {
	api    objectAPI
	bucket string
	logger logging.Logger
}

// NewPublisher connects to object storage and ensures the bucket exists.
func NewPublisher(ctx context.Context, cfg config.MinIOConfig, logger logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "connect object storage "+cfg.Endpoint)
	}

	p := &Publisher{api: minioAPI{c: client}, bucket: cfg.Bucket, logger: logger.Named("minio")}
	if err := p.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisherWithAPI(api objectAPI, bucket string, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{api: api, bucket: bucket, logger: logger.Named("minio")}
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	exists, err := p.api.BucketExists(ctx, p.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "check bucket "+p.bucket)
	}
	if exists {
		return nil
	}
	if err := p.api.MakeBucket(ctx, p.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "create bucket "+p.bucket)
	}
	return nil
}

// PublishArtifact uploads one artifact under <source>/<marker>.xlsx and
// returns the object key.
func (p *Publisher) PublishArtifact(ctx context.Context, source, marker string, data []byte) (string, error) {
	key := objectKey(source, marker)
	_, err := p.api.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: xlsxContentType})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "upload artifact "+key)
	}

	p.logger.Info("published artifact",
		logging.String("source", source),
		logging.String("object", key),
		logging.Int("bytes", len(data)),
	)
	return key, nil
}

// objectKey flattens marker characters that object stores treat as path
// separators or metadata.
func objectKey(source, marker string) string {
	clean := strings.NewReplacer("/", "-", " ", "_", ":", "-").Replace(marker)
	return fmt.Sprintf("%s/%s.xlsx", source, clean)
}
