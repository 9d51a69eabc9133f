package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ObjectStore abstracts the bucket operations the sync needs, for testability.
// Implementations include the AWS SDK v2 backed store and an in-memory mock.
type ObjectStore interface {
	// ListObjects returns one page of keys under prefix. An empty token starts from the beginning.
	ListObjects(ctx context.Context, bucket, prefix, token string) (*ListPage, error)
	// HeadObject reports whether key exists. A missing object is (false, nil).
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
	// PutObject stores the object described by input.
	PutObject(ctx context.Context, input *UploadInput) error
}

// ListPage is a single page of a prefix listing.
type ListPage struct {
	Keys        []string
	IsTruncated bool
	NextToken   string
}

// UploadInput contains the parameters for a single object upload.
// Optional headers are nil when unset.
type UploadInput struct {
	Bucket          string
	Key             string
	Body            []byte
	ContentType     string
	ACL             string
	CacheControl    *string
	Expires         *time.Time
	ContentEncoding *string
}

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var _ s3API = (*s3.Client)(nil)

// S3Store implements ObjectStore using the AWS SDK v2.
type S3Store struct {
	client   s3API
	uploader *manager.Uploader
}

// NewS3Store creates an ObjectStore backed by the given S3 client.
func NewS3Store(client s3API, optFns ...func(*manager.Uploader)) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client, optFns...),
	}
}

// ListObjects implements ObjectStore.ListObjects with ListObjectsV2.
func (s *S3Store) ListObjects(ctx context.Context, bucket, prefix, token string) (*ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, err
	}

	page := &ListPage{
		Keys:        make([]string, 0, len(out.Contents)),
		IsTruncated: aws.ToBool(out.IsTruncated),
		NextToken:   aws.ToString(out.NextContinuationToken),
	}
	for _, obj := range out.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}
	return page, nil
}

// HeadObject implements ObjectStore.HeadObject.
func (s *S3Store) HeadObject(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PutObject implements ObjectStore.PutObject using the SDK upload manager.
func (s *S3Store) PutObject(ctx context.Context, input *UploadInput) error {
	sdkInput := &s3.PutObjectInput{
		Bucket:      aws.String(input.Bucket),
		Key:         aws.String(input.Key),
		Body:        bytes.NewReader(input.Body),
		ContentType: aws.String(input.ContentType),
	}

	// Only set optional fields if they are provided
	if input.ACL != "" {
		sdkInput.ACL = types.ObjectCannedACL(input.ACL)
	}
	if input.CacheControl != nil {
		sdkInput.CacheControl = input.CacheControl
	}
	if input.Expires != nil {
		sdkInput.Expires = input.Expires
	}
	if input.ContentEncoding != nil {
		sdkInput.ContentEncoding = input.ContentEncoding
	}

	_, err := s.uploader.Upload(ctx, sdkInput)
	return err
}

// isNotFound reports whether err is the "object does not exist" answer to a HEAD request.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
