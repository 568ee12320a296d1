package awstest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 is an in-memory bucket store that also presigns fake URLs.
type S3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	Deleted  []string
	Presigns []*s3.PutObjectInput

	GetErr     error
	PresignErr error
}

func NewS3() *S3 {
	return &S3{objects: map[string][]byte{}}
}

// Put stores an object as if a client uploaded it.
func (m *S3) Put(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = body
}

// Has reports whether the object exists.
func (m *S3) Has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok
}

func (m *S3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	body, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (m *S3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := *in.Bucket + "/" + *in.Key
	delete(m.objects, k)
	m.Deleted = append(m.Deleted, k)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *S3) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PresignErr != nil {
		return nil, m.PresignErr
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	m.Presigns = append(m.Presigns, in)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", *in.Bucket, *in.Key, int(opts.Expires.Seconds())),
		Method: http.MethodPut,
	}, nil
}
