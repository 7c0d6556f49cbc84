package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3api "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/compression"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

var ErrNotConfigured = errors.New("s3client: client and bucket are required")

// Key returns the object key for a local file name, including the compression extension for arrays.
func (a *S3Client) Key(name string) string {
	base := filepath.Base(name)
	if a.compressed(base) {
		base += compression.Extension(a.compress)
	}
	p := strings.Trim(a.prefix, "/")
	if p == "" {
		return base
	}
	return path.Join(p, base)
}

func (a *S3Client) compressed(name string) bool {
	return a.compress != compression.None && strings.EqualFold(filepath.Ext(name), ".npy")
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}

// Upload sends each path as one object and returns the keys written. It stops at the first failure.
func (a *S3Client) Upload(ctx context.Context, paths ...string) ([]string, error) {
	if a.cli == nil || a.bucket == "" {
		return nil, ErrNotConfigured
	}
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key, err := a.uploadOne(ctx, p)
		if err != nil {
			a.NotifyLoggers(types.ErrorLevel, "Upload failed",
				"component", a.componentMetadata,
				"event", "Upload",
				"result", "FAILURE",
				"bucket", a.bucket,
				"path", p,
				"error", err,
			)
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (a *S3Client) uploadOne(ctx context.Context, name string) (string, error) {
	start := time.Now()

	body, size, cleanup, err := a.body(name)
	if err != nil {
		return "", err
	}
	defer cleanup()

	key := a.Key(name)
	put := &s3api.PutObjectInput{
		Bucket:        &a.bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(name)),
	}
	if enc := compression.ContentEncoding(a.compress); enc != "" && a.compressed(name) {
		put.ContentEncoding = aws.String(enc)
	}

	switch strings.ToLower(a.sseMode) {
	case "aes256":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	case "aws:kms":
		put.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		if a.kmsKey != "" {
			put.SSEKMSKeyId = &a.kmsKey
		}
	}

	if _, err := a.cli.PutObject(ctx, put); err != nil {
		return "", fmt.Errorf("s3client: put %s: %w", key, err)
	}

	dur := time.Since(start)
	for _, s := range a.snapshotSensors() {
		s.InvokeOnUpload(a.componentMetadata, key, size, dur)
	}
	a.NotifyLoggers(types.InfoLevel, "Object uploaded",
		"component", a.componentMetadata,
		"event", "Upload",
		"result", "SUCCESS",
		"bucket", a.bucket,
		"key", key,
		"bytes", size,
		"duration", dur,
	)
	return key, nil
}

// body opens name for upload. Compressed arrays go through a temp file so memory stays flat.
func (a *S3Client) body(name string) (io.ReadSeeker, int64, func(), error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("s3client: open %s: %w", name, err)
	}
	if !a.compressed(name) {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, fmt.Errorf("s3client: stat %s: %w", name, err)
		}
		return f, st.Size(), func() { f.Close() }, nil
	}
	defer f.Close()

	tmp, err := os.CreateTemp(a.tmpDir, filepath.Base(name)+".*"+compression.Extension(a.compress))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("s3client: temp file: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}
	if _, err := compression.Compress(tmp, f, a.compress); err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("s3client: compress %s: %w", name, err)
	}
	n, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		cleanup()
		return nil, 0, nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, nil, err
	}
	return tmp, n, cleanup, nil
}
