// Package s3 stores blobs as objects in an Amazon S3 (or S3-compatible)
// bucket and registers itself as storage provider "s3".
//
// Each blob is one object keyed by its path. S3 never exposes a partially
// written object, so a failed Put leaves either the previous object or
// nothing.
package s3

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/artifactstore/errors"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

// checksumKey is the user-metadata key holding the blake3 digest.
const checksumKey = "blake3"

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(cfg storage.Config, session any, log *logger.Logger) (storage.Backend, error) {
		if session == nil {
			client, err := NewClient(context.Background(), cfg.S3)
			if err != nil {
				return nil, err
			}
			return New(client, cfg.S3.Bucket, log), nil
		}
		api, ok := session.(ObjectAPI)
		if !ok {
			return nil, errors.InvalidConfig(fmt.Sprintf("s3: session must implement s3.ObjectAPI, got %T", session))
		}
		return New(api, cfg.S3.Bucket, log), nil
	})
}

// ObjectAPI is the subset of *s3.Client the backend uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
}

var _ ObjectAPI = (*awss3.Client)(nil)

// NewClient builds an S3 client from config. A custom endpoint implies
// path-style addressing.
func NewClient(ctx context.Context, cfg storage.S3Config) (*awss3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}

// Backend implements storage.Backend on an S3 bucket.
type Backend struct {
	api    ObjectAPI
	bucket string
	log    *logger.Logger
}

var _ storage.Backend = (*Backend)(nil)

// New creates a backend for bucket using api.
func New(api ObjectAPI, bucket string, log *logger.Logger) *Backend {
	return &Backend{api: api, bucket: bucket, log: log.WithComponent("storage.s3")}
}

// Put uploads the blob as a single object.
func (b *Backend) Put(ctx context.Context, blob *storage.Blob) error {
	_, err := b.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(blob.Path),
		Body:          bytes.NewReader(blob.Content),
		ContentLength: aws.Int64(int64(len(blob.Content))),
		ContentType:   aws.String(blob.MIME),
		Metadata:      map[string]string{checksumKey: blob.Checksum()},
	})
	if err != nil {
		return errors.WriteFailed(blob.Path, err)
	}
	return nil
}

// Get downloads the object at path and verifies its checksum when the
// object carries one.
func (b *Backend) Get(ctx context.Context, path string) (*storage.Blob, error) {
	out, err := b.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.NotFound(path)
		}
		return nil, errors.ExternalServiceError("s3", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("s3", fmt.Errorf("read %s: %w", path, err))
	}

	if sum, ok := out.Metadata[checksumKey]; ok && sum != storage.Checksum(content) {
		b.log.Error("checksum mismatch", logger.Fields(logger.FieldPath, path))
		return nil, errors.DataCorrupted(path)
	}

	blob := &storage.Blob{
		Path:    path,
		Content: content,
		MIME:    aws.ToString(out.ContentType),
		Size:    int64(len(content)),
	}
	if out.LastModified != nil {
		blob.LastModified = *out.LastModified
	}
	return blob, nil
}

// Exists issues a HeadObject. A 404 is reported as false; any other
// failure is returned.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.ExternalServiceError("s3", err)
}

// isNotFound recognizes the ways S3 reports a missing key: typed
// NoSuchKey/NotFound errors, their API error codes, and bare 404s from
// HEAD requests, which carry no body.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if stderrors.As(err, &nsk) || stderrors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	if stderrors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}
	return false
}
