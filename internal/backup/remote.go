package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	ErrRemoteNotConfigured = errors.New("remote storage not configured")
	ErrRemoteNotFound      = errors.New("remote snapshot not found")
	ErrSnapshotTooLarge    = errors.New("snapshot too large")
	ErrInvalidKey          = errors.New("invalid snapshot key")
)

// s3Client is an interface for testability.
type s3Client interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// RemoteSource fetches snapshots an organization previously stored in object
// storage. Objects live under "<orgID>/", so one organization cannot read
// another's snapshots.
type RemoteSource struct {
	client   s3Client
	bucket   string
	maxBytes int64
}

// NewRemoteSource returns a source for cfg. When cfg is incomplete the source
// is disabled and Fetch returns ErrRemoteNotConfigured.
func NewRemoteSource(cfg S3Config, maxBytes int64) *RemoteSource {
	s := &RemoteSource{bucket: cfg.Bucket, maxBytes: maxBytes}
	if cfg.configured() {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (s *RemoteSource) Enabled() bool {
	return s != nil && s.client != nil
}

// ObjectKey returns the storage key for an organization's snapshot name.
func ObjectKey(orgID, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return orgID + "/" + key, nil
}

// Fetch downloads a snapshot and, when passphrase is non-empty, decrypts it
// with Open.
func (s *RemoteSource) Fetch(ctx context.Context, orgID, key, passphrase string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrRemoteNotConfigured
	}
	objectKey, err := ObjectKey(orgID, key)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, key)
		}
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	var body io.Reader = result.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(result.Body, s.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrSnapshotTooLarge
	}

	if passphrase == "" {
		return data, nil
	}
	return Open(data, passphrase)
}
