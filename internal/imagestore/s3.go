// Package imagestore keeps campground images in an S3-compatible bucket.
package imagestore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pkordes/yelp-camp/internal/config"
	"github.com/pkordes/yelp-camp/internal/domain"
)

// Folder prefixes every object key written by the store.
const Folder = "YelpCamp"

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads and deletes image objects.
type S3Store struct {
	api        ObjectAPI
	bucket     string
	publicBase string
}

// New returns a store that writes to bucket through api. Image URLs are
// publicBase + "/" + key.
func New(api ObjectAPI, bucket, publicBase string) *S3Store {
	return &S3Store{
		api:        api,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
// A custom Endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("imagestore.NewS3Store: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return New(client, cfg.Bucket, PublicBase(cfg)), nil
}

// PublicBase returns the URL prefix objects in cfg's bucket are served from.
func PublicBase(cfg config.S3Config) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload stores u under a fresh key and returns the resulting image reference.
func (s *S3Store) Upload(ctx context.Context, u domain.Upload) (domain.Image, error) {
	key := objectKey(u.Filename)

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   u.Content,
	}
	if u.ContentType != "" {
		in.ContentType = aws.String(u.ContentType)
	}
	if u.Size > 0 {
		in.ContentLength = aws.Int64(u.Size)
	}

	if _, err := s.api.PutObject(ctx, in); err != nil {
		return domain.Image{}, fmt.Errorf("imagestore.S3Store.Upload: %w", err)
	}

	return domain.Image{URL: s.publicBase + "/" + key, Filename: key}, nil
}

// Delete removes the object named filename. S3 reports success for keys
// that do not exist.
func (s *S3Store) Delete(ctx context.Context, filename string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("imagestore.S3Store.Delete: %w", err)
	}
	return nil
}

func objectKey(original string) string {
	return Folder + "/" + uuid.NewString() + strings.ToLower(path.Ext(original))
}
