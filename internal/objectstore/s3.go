package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3 is a Store on AWS S3 (or an S3-compatible endpoint such as
// localstack). Location references are https object URLs.
type S3 struct {
	s3     *s3.S3
	bucket string
	prefix string
	region string
}

// NewS3 returns a Store over the given bucket. The prefix is normalized
// to end with "/" when present.
func NewS3(awsSession *session.Session, bucket, prefix string) *S3 {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	client := s3.New(awsSession)
	return &S3{
		s3:     client,
		bucket: bucket,
		prefix: prefix,
		region: aws.StringValue(client.Config.Region),
	}
}

func (s *S3) locationFor(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s%s", s.bucket, s.region, s.prefix, key)
}

// keyFrom recovers the object key from a location reference. Only the
// final path element is meaningful; keys are flat within the prefix.
func (s *S3) keyFrom(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid object location %q: %w", location, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("invalid object location %q", location)
	}
	return s.prefix + name, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return s.locationFor(key), nil
}

func (s *S3) Get(ctx context.Context, location string) (io.ReadCloser, error) {
	key, err := s.keyFrom(location)
	if err != nil {
		return nil, err
	}

	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
			return nil, ErrNoObject
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	return obj.Body, nil
}
