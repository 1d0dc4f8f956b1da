package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3StateStore implements StateStore backed by an S3 object, for runs that
// execute where no local filesystem persists (Lambda).
type S3StateStore struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3StateStore(s3Client *s3.Client, bucket, key string) *S3StateStore {
	return &S3StateStore{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3StateStore) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to get state object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3StateStore) Save(ctx context.Context, data []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put state object to S3: %w", err)
	}
	return nil
}
