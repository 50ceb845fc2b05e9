package resume

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Archiver keeps a copy of an uploaded résumé and returns the key it was stored under.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

// ObjectPutter is the part of the S3 client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket       string
	Endpoint     string // empty for AWS, e.g. "http://localhost:9000" for MinIO
	Region       string
	AccessKey    string // empty to use the default credential chain
	SecretKey    string
	UsePathStyle bool
	Prefix       string
}

type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	newID  func() string
}

var _ Archiver = (*S3Archiver)(nil)

// NewS3Archiver builds an S3 client from opts.
func NewS3Archiver(ctx context.Context, opts S3Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("[resume NewS3Archiver] bucket is required")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("[resume NewS3Archiver] load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	log.Info().Str("bucket", opts.Bucket).Str("endpoint", opts.Endpoint).Msg("Resume archive enabled")
	return NewS3ArchiverFromClient(client, opts.Bucket, opts.Prefix), nil
}

func NewS3ArchiverFromClient(client ObjectPutter, bucket, prefix string) *S3Archiver {
	if prefix == "" {
		prefix = "resumes/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		newID:  uuid.NewString,
	}
}

// Archive stores data under "<prefix><uuid>-<filename>".
func (a *S3Archiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	key := a.prefix + a.newID() + "-" + name

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[resume Archive] put %s: %w", key, err)
	}
	return key, nil
}
