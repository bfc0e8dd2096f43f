package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioCropStore publishes crops to an S3-compatible bucket. The bucket must allow
// anonymous reads for the returned URLs to resolve in a browser.
type MinioCropStore struct {
	client        *minio.Client
	bucketName    string
	publicBaseURL string
}

// MinioOptions configures NewMinioCropStore
type MinioOptions struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
}

// NewMinioCropStore connects and makes sure the bucket exists
func NewMinioCropStore(ctx context.Context, opts MinioOptions) (*MinioCropStore, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, err
		}
	}

	base := strings.TrimRight(opts.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/%s", strings.TrimRight(cli.EndpointURL().String(), "/"), opts.Bucket)
	}

	return &MinioCropStore{client: cli, bucketName: opts.Bucket, publicBaseURL: base}, nil
}

// Save uploads the crop and returns its public URL
func (s *MinioCropStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload crop %s: %w", name, err)
	}
	return s.publicBaseURL + "/" + name, nil
}
