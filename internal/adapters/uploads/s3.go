package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/infrastructure/config"
)

type objectUploader interface {
	UploadObject(ctx context.Context, input *transfermanager.UploadObjectInput, opts ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage writes uploads to an S3 bucket under a key prefix
type S3Storage struct {
	bucket   string
	prefix   string
	maxSize  int64
	uploader objectUploader
	deleter  objectDeleter
}

// NewS3Storage builds an S3 client from the default AWS credential chain
func NewS3Storage(ctx context.Context, cfg config.UploadsConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return newS3Storage(cfg.S3Bucket, cfg.S3Prefix, cfg.MaxSizeBytes, transfermanager.New(client), client), nil
}

func newS3Storage(bucket, prefix string, maxSize int64, uploader objectUploader, deleter objectDeleter) *S3Storage {
	return &S3Storage{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		maxSize:  maxSize,
		uploader: uploader,
		deleter:  deleter,
	}
}

// Save uploads r and returns its s3://bucket/key location
func (s *S3Storage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := storedName(filename)
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, name)
	_, err = s.uploader.UploadObject(ctx, &transfermanager.UploadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   newCapReader(r, s.maxSize),
	})
	if err != nil {
		if errors.Is(err, entities.ErrUploadTooLarge) {
			return "", entities.ErrUploadTooLarge
		}
		return "", fmt.Errorf("uploading to s3://%s/%s: %w", s.bucket, key, err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}

// Delete removes an object previously returned by Save
func (s *S3Storage) Delete(ctx context.Context, location string) error {
	key, ok := strings.CutPrefix(location, "s3://"+s.bucket+"/")
	if !ok || key == "" || (s.prefix != "" && !strings.HasPrefix(key, s.prefix+"/")) {
		return fmt.Errorf("%w: %q is not under s3://%s/%s", entities.ErrInvalidFilename, location, s.bucket, s.prefix)
	}

	_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
