package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 or S3 compatible (MinIO) bucket.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	KeyPrefix string
	AccessKey string
	SecretKey string
	// PublicBaseURL overrides the URL returned for stored objects, e.g. a CDN in front of the bucket.
	PublicBaseURL string
	MaxBytes      int64
}

// S3Store uploads images to a bucket.
type S3Store struct {
	uploader *manager.Uploader
	opts     S3Options
}

// NewS3Store builds a client from the default AWS chain. Static keys, when set, take precedence.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{uploader: manager.NewUploader(client), opts: opts}, nil
}

func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := CleanName(filename)
	if err != nil {
		return "", err
	}
	key := s.objectKey(name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	src := &cappedReader{r: r, max: s.opts.MaxBytes}
	input.Body = src
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		if src.exceeded {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) objectKey(name string) string {
	prefix := strings.Trim(s.opts.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (s *S3Store) objectURL(key string) string {
	escaped := escapePath(key)
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/" + escaped
	case s.opts.Endpoint != "":
		return strings.TrimRight(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, escaped)
	}
}

var _ Store = (*S3Store)(nil)
