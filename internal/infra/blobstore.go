package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inventapro/internal/config"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrBlobNotFound is returned by Get when the key does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the public media disk: barcode images and queued uploads live here.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewBlobStore picks the backend named by MEDIA_DISK. The returned Breaker is
// nil for the local disk.
func NewBlobStore(ctx context.Context, cfg *config.Config) (BlobStore, *Breaker, error) {
	switch cfg.MediaDisk {
	case "", "local":
		store, err := NewLocalDiskStore(cfg.MediaRoot)
		return store, nil, err
	case "s3":
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cb := NewBreaker(DefaultBreakerSettings())
		return NewS3Store(client, cfg.S3Bucket, cb), cb, nil
	default:
		return nil, nil, fmt.Errorf("blobstore: unknown MEDIA_DISK %q", cfg.MediaDisk)
	}
}

// ── Local disk ──────────────────────────────────────────────────────────────

type LocalDiskStore struct{ root string }

func NewLocalDiskStore(root string) (*LocalDiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	return &LocalDiskStore{root: root}, nil
}

func (s *LocalDiskStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", fmt.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes to a temp file and renames it so readers never see a partial image.
func (s *LocalDiskStore) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (s *LocalDiskStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (s *LocalDiskStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ── S3 ──────────────────────────────────────────────────────────────────────

// S3API is the subset of *s3.Client the store needs.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client S3API
	bucket string
	cb     *Breaker
}

func NewS3Store(client S3API, bucket string, cb *Breaker) *S3Store {
	if cb == nil {
		cb = NewBreaker(DefaultBreakerSettings())
	}
	return &S3Store{client: client, bucket: bucket, cb: cb}
}

func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = sdkaws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.cb.Do(func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      sdkaws.String(s.bucket),
			Key:         sdkaws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: sdkaws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("s3 put %s: %w", key, err)
		}
		return nil
	})
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.cb.Do(func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: sdkaws.String(s.bucket),
			Key:    sdkaws.String(key),
		})
		if err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				// a missing key says nothing about the endpoint's health
				return nil
			}
			return fmt.Errorf("s3 get %s: %w", key, err)
		}
		defer out.Body.Close()
		data, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.cb.Do(func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: sdkaws.String(s.bucket),
			Key:    sdkaws.String(key),
		})
		if err != nil {
			return fmt.Errorf("s3 delete %s: %w", key, err)
		}
		return nil
	})
}
