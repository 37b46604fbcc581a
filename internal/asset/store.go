// Package asset abstracts the file store behind the listing flow: given raw
// image bytes, return a durable URL the listing can reference forever.
package asset

import (
	"bytes"
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pikavault/pikavault-go/internal/config"
	"go.uber.org/zap"
)

type Store interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

type s3Store struct {
	uploader *s3manager.Uploader
	bucket   string
}

func NewS3Store(cfg config.AwsConfig) (Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, err
	}

	return s3Store{uploader: s3manager.NewUploader(sess), bucket: cfg.Bucket}, nil
}

func (s s3Store) Store(ctx context.Context, name string, data []byte) (string, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", err
	}

	zap.L().With(zap.String("bucket", s.bucket), zap.String("key", name)).Info("S3: asset stored")

	return out.Location, nil
}
