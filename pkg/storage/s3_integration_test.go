//go:build integration

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
)

// TestS3Store_Integration uses Testcontainers to spin up LocalStack.
// This is a "Hermetic" test: it brings its own cloud.
// Requires Docker.
func TestS3Store_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := localstack.RunContainer(ctx,
		testcontainers.WithImage("localstack/localstack:3.0"),
	)
	if err != nil {
		t.Fatalf("Failed to start LocalStack: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}()

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "")
	if err != nil {
		t.Fatalf("Failed to get endpoint: %v", err)
	}

	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           "http://" + endpoint,
			SigningRegion: "us-east-1",
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithEndpointResolverWithOptions(customResolver),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     "test",
				SecretAccessKey: "test",
				SessionToken:    "test",
			}, nil
		})),
	)
	if err != nil {
		t.Fatalf("Failed to load SDK config: %v", err)
	}

	// LocalStack only speaks path-style S3.
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	bucket := "costscope-integration"
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}); err != nil {
		t.Fatalf("Failed to create bucket: %v", err)
	}

	store := &S3Store{Client: client, Bucket: bucket}

	if _, err := store.Get(ctx, "reports/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on absent key = %v, want ErrNotFound", err)
	}

	if err := store.Put(ctx, "reports/run-1/report.json", []byte(`{"total":42}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "reports/run-1/report.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"total":42}` {
		t.Errorf("Get = %q, want stored payload", got)
	}

	// Append must create on first write, then concatenate.
	if err := store.Append(ctx, "history/runs.jsonl", []byte("line-1\n")); err != nil {
		t.Fatalf("Append (create) failed: %v", err)
	}
	if err := store.Append(ctx, "history/runs.jsonl", []byte("line-2\n")); err != nil {
		t.Fatalf("Append (extend) failed: %v", err)
	}
	ledger, err := store.Get(ctx, "history/runs.jsonl")
	if err != nil {
		t.Fatalf("Get ledger failed: %v", err)
	}
	if string(ledger) != "line-1\nline-2\n" {
		t.Errorf("ledger = %q, want both lines in order", ledger)
	}

	keys, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "reports/run-1/report.json" {
		t.Errorf("List(reports/) = %v, want the report key only", keys)
	}
}
