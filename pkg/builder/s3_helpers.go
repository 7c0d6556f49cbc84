package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Settings is the env-driven description of the output bucket used by the example commands.
type S3Settings struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	RoleARN        string
	ForcePathStyle bool
	Compression    string
	SSEMode        string
	KMSKeyID       string
}

// S3SettingsFromEnv reads RADARML_S3_* variables. An empty Bucket means uploads are disabled.
func S3SettingsFromEnv() S3Settings {
	return S3Settings{
		Bucket:         EnvOr("RADARML_S3_BUCKET", ""),
		Prefix:         EnvOr("RADARML_S3_PREFIX", ""),
		Region:         EnvOr("RADARML_S3_REGION", "us-east-1"),
		Endpoint:       EnvOr("RADARML_S3_ENDPOINT", ""),
		AccessKey:      EnvOr("RADARML_S3_ACCESS_KEY", ""),
		SecretKey:      EnvOr("RADARML_S3_SECRET_KEY", ""),
		RoleARN:        EnvOr("RADARML_S3_ROLE_ARN", ""),
		ForcePathStyle: EnvBoolOr("RADARML_S3_PATH_STYLE", false),
		Compression:    EnvOr("RADARML_S3_COMPRESSION", "zstd"),
		SSEMode:        EnvOr("RADARML_S3_SSE", ""),
		KMSKeyID:       EnvOr("RADARML_S3_KMS_KEY_ID", ""),
	}
}

// NewS3ClientFromSettings picks static credentials, assume-role or the default chain.
func NewS3ClientFromSettings(ctx context.Context, s S3Settings) (*s3.Client, error) {
	switch {
	case s.RoleARN != "":
		var src aws.CredentialsProvider
		if s.AccessKey != "" {
			src = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""))
		}
		return NewS3ClientAssumeRole(ctx, s.Region, s.RoleARN, "radar-ml", 15*time.Minute, "", src, s.Endpoint, s.ForcePathStyle)
	case s.AccessKey != "":
		return NewS3ClientStatic(ctx, s.Region, s.AccessKey, s.SecretKey, "", s.Endpoint, s.ForcePathStyle)
	default:
		return NewS3ClientDefault(ctx, s.Region, s.Endpoint, s.ForcePathStyle)
	}
}

// S3ListKeys returns object keys for a bucket/prefix, optionally filtered by suffix.
func S3ListKeys(ctx context.Context, cli *s3.Client, bucket, prefix string, suffixes ...string) ([]string, error) {
	if cli == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var keys []string
	var cont *string

	for {
		out, err := cli.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: cont,
			MaxKeys:           aws.Int32(1000),
		})
		if err != nil {
			return nil, err
		}
		for _, o := range out.Contents {
			k := aws.ToString(o.Key)
			if len(suffixes) == 0 || hasSuffixFold(k, suffixes) {
				keys = append(keys, k)
			}
		}
		if aws.ToBool(out.IsTruncated) {
			cont = out.NextContinuationToken
			continue
		}
		break
	}

	return keys, nil
}

// S3Download copies an object into dir under its base name and returns the local path.
// Stored bytes are written as-is; compressed arrays keep their suffix.
func S3Download(ctx context.Context, cli *s3.Client, bucket, key, dir string) (string, error) {
	out, err := cli.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return "", fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	local := filepath.Join(dir, path.Base(key))
	f, err := os.Create(local)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(local)
		return "", err
	}
	return local, f.Close()
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key, bucket != "" && key != ""
}

func hasSuffixFold(key string, suffixes []string) bool {
	lower := strings.ToLower(key)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
