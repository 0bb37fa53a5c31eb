package storage

import (
	"context"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, runID, name string
		want                string
	}{
		{"m5", "run-1", "submission.csv", "m5/run-1/submission.csv"},
		{"/m5/", "run-1", "run.json", "m5/run-1/run.json"},
		{"", "run-1", "run.json", "run-1/run.json"},
		{"results/m5", "", "comparison.json", "results/m5/comparison.json"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.runID, tt.name); got != tt.want {
			t.Errorf("ObjectKey(%q, %q, %q) = %q, want %q", tt.prefix, tt.runID, tt.name, got, tt.want)
		}
	}
}

func TestNewS3ClientNeedsBucket(t *testing.T) {
	if _, err := NewS3Client(context.Background(), S3Options{Region: "auto"}); err == nil {
		t.Fatal("client created without a bucket")
	}
}

func TestS3OptionsFromEnv(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "https://example.r2.cloudflarestorage.com")
	t.Setenv("S3_BUCKET", "forecasts")
	t.Setenv("S3_REGION", "")
	opts := S3OptionsFromEnv()
	if opts.Endpoint != "https://example.r2.cloudflarestorage.com" || opts.Bucket != "forecasts" || opts.Region != "" {
		t.Errorf("S3OptionsFromEnv() = %+v", opts)
	}
}
