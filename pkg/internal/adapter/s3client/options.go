package s3client

import (
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/compression"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// WithS3Client sets the client used for PutObject, usually an *s3.Client.
func WithS3Client(cli PutObjectAPI) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.cli = cli
	}
}

// WithBucket sets the destination bucket.
func WithBucket(bucket string) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.bucket = bucket
	}
}

// WithPrefix sets the key prefix, e.g. "datasets/run-7".
func WithPrefix(prefix string) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.prefix = prefix
	}
}

// WithCompression compresses .npy arrays with alg before upload.
func WithCompression(alg compression.Algorithm) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.compress = alg
	}
}

// WithSSE sets server-side encryption: "" | "AES256" | "aws:kms".
func WithSSE(mode, kmsKeyID string) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.sseMode = mode
		a.kmsKey = kmsKeyID
	}
}

// WithTempDir sets where compressed bodies are staged. Empty uses os.TempDir.
func WithTempDir(dir string) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.tmpDir = dir
	}
}

func WithLogger(l ...types.Logger) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.ConnectLogger(l...)
	}
}

func WithSensor(s ...types.Sensor) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.ConnectSensor(s...)
	}
}

// WithComponentMetadata sets the adapter name and id.
func WithComponentMetadata(name string, id string) types.Option[*S3Client] {
	return func(a *S3Client) {
		a.componentMetadata.Name = name
		a.componentMetadata.ID = id
	}
}
