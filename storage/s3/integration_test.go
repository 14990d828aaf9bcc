//go:build integration

package s3

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"

	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

// TestLocalStack_RoundTrip runs the backend against a real S3 API.
// Requires Docker.
func TestLocalStack_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := localstack.Run(ctx, "localstack/localstack:3.0")
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("Failed to start LocalStack: %v", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "http")
	if err != nil {
		t.Fatalf("Failed to get endpoint: %v", err)
	}

	cfg := storage.S3Config{
		Bucket:    "artifacts",
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}

	b := New(client, cfg.Bucket, logger.Nop())

	if ok, err := b.Exists(ctx, "v1/a.html"); err != nil || ok {
		t.Fatalf("Exists before put = %v, %v", ok, err)
	}
	if _, err := b.Get(ctx, "v1/a.html"); !storage.IsNotFound(err) {
		t.Fatalf("Get before put = %v, want not found", err)
	}

	if err := b.Put(ctx, storage.NewBlob("v1/a.html", []byte("<html></html>"), "text/html")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := b.Get(ctx, "v1/a.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Content) != "<html></html>" || got.MIME != "text/html" {
		t.Errorf("unexpected blob: %+v", got)
	}
	if ok, err := b.Exists(ctx, "v1/a.html"); err != nil || !ok {
		t.Errorf("Exists after put = %v, %v", ok, err)
	}
}
