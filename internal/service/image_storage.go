package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// MaxImageBytes bounds a single product image upload.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStorage uploads product and reference images to S3 and returns their
// public URLs. A storage without a bucket rejects every upload.
type ImageStorage struct {
	client        objectPutter
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

// NewImageStorage creates an S3 client from cfg. When cfg has no bucket or
// credentials, uploads answer ErrStorageDisabled.
func NewImageStorage(ctx context.Context, cfg config.S3Config) (*ImageStorage, error) {
	s := &ImageStorage{
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}
	if !cfg.Enabled() {
		log.Warn().Msg("S3 not configured, image uploads disabled")
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s, nil
}

// Enabled reports whether uploads are possible.
func (s *ImageStorage) Enabled() bool {
	return s != nil && s.client != nil
}

// Upload stores an image under folder and returns its public URL.
func (s *ImageStorage) Upload(ctx context.Context, folder, contentType string, body io.Reader, size int64) (string, error) {
	if !s.Enabled() {
		return "", utils.ErrStorageDisabled
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", invalid("file", "image", "file must be a JPEG, PNG, WebP or GIF image")
	}
	if size <= 0 || size > MaxImageBytes {
		return "", invalid("file", "max", fmt.Sprintf("file must be at most %d MB", MaxImageBytes>>20))
	}

	key := path.Join(folder, s.now().UTC().Format("2006/01"), utils.NewID()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("S3 upload failed")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	log.Info().Str("key", key).Int64("size", size).Msg("image uploaded")
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL of key.
func (s *ImageStorage) ObjectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
