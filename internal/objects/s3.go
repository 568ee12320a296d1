// Package objects issues presigned write targets and reads/cleans up uploaded objects in S3.
package objects

import (
	"context"
	"fmt"
	"io"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws"
)

// Store wraps the S3 clients and the upload bucket.
type Store struct {
	s3     aws.S3API
	signer aws.PresignAPI
	bucket string
}

func NewStore(s3c aws.S3API, signer aws.PresignAPI, bucket string) *Store {
	return &Store{s3: s3c, signer: signer, bucket: bucket}
}

// IssueWriteTarget presigns a PUT for key in the upload bucket, valid for ttl.
func (s *Store) IssueWriteTarget(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.signer.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: sdkaws.String(s.bucket),
		Key:    sdkaws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

// Get reads the whole object body.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// Delete removes the object. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}
