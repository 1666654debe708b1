package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps story images in an S3-compatible bucket.
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, endpoint, accessKey, secretKey, bucket, region, publicURL string, useSSL bool) (*S3Store, error) {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	var creds *credentials.Credentials
	if accessKey == "" || secretKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	return &S3Store{client: client, bucket: bucket, publicURL: s3PublicURL(endpoint, bucket, publicURL, useSSL)}, nil
}

func s3PublicURL(endpoint, bucket, publicURL string, useSSL bool) string {
	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s.%s", scheme, bucket, endpoint)
	}
	return strings.TrimSuffix(publicURL, "/")
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return s.publicURL + "/" + name, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := s.objectKey(url)
	if !ok {
		return fmt.Errorf("not an object url for bucket %s: %q", s.bucket, url)
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *S3Store) objectKey(url string) (string, bool) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
