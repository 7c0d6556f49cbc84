package builder

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	s3ClientAdapter "github.com/UCLRadarGroup/Radar-ML/pkg/internal/adapter/s3client"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/compression"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type S3Uploader = s3ClientAdapter.S3Client

type CompressionAlgorithm = compression.Algorithm

// ParseCompression maps "none", "gzip", "snappy", "zstd", "brotli" or "lz4" to an algorithm.
func ParseCompression(name string) (CompressionAlgorithm, error) { return compression.Parse(name) }

// NewS3Uploader creates an output uploader. Pair it with S3UploaderWithClientAndBucket.
func NewS3Uploader(options ...types.Option[*S3Uploader]) *S3Uploader {
	return s3ClientAdapter.NewS3ClientAdapter(options...)
}

// S3UploaderWithClientAndBucket injects the AWS client and destination bucket.
func S3UploaderWithClientAndBucket(cli s3ClientAdapter.PutObjectAPI, bucket string) types.Option[*S3Uploader] {
	return func(a *S3Uploader) {
		s3ClientAdapter.WithS3Client(cli)(a)
		s3ClientAdapter.WithBucket(bucket)(a)
	}
}

func S3UploaderWithPrefix(prefix string) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithPrefix(prefix)
}

// S3UploaderWithCompression compresses .npy arrays before upload.
func S3UploaderWithCompression(alg CompressionAlgorithm) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithCompression(alg)
}

func S3UploaderWithSSE(mode, kmsKey string) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithSSE(mode, kmsKey)
}

func S3UploaderWithTempDir(dir string) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithTempDir(dir)
}

func S3UploaderWithLogger(l ...types.Logger) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithLogger(l...)
}

func S3UploaderWithSensor(s ...types.Sensor) types.Option[*S3Uploader] {
	return s3ClientAdapter.WithSensor(s...)
}

/////////////////////////////////////////////
// Compliant S3 client constructors (no env)
/////////////////////////////////////////////

// sharedResolver returns an endpoint resolver that maps BOTH S3 and STS to the same override.
func sharedResolver(endpoint string) aws.EndpointResolverWithOptionsFunc {
	return aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
		switch service {
		case s3.ServiceID, sts.ServiceID:
			return aws.Endpoint{URL: endpoint, HostnameImmutable: true}, nil
		default:
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}
	})
}

func baseLoaders(region, endpoint string) []func(*config.LoadOptions) error {
	var loaders []func(*config.LoadOptions) error
	if region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}
	if endpoint != "" {
		loaders = append(loaders, config.WithEndpointResolverWithOptions(sharedResolver(endpoint)))
	}
	return loaders
}

// NewS3ClientDefault creates an S3 client from the default credential chain.
// If endpoint != "", it's used (LocalStack/MinIO). forcePathStyle=true for emulators.
func NewS3ClientDefault(ctx context.Context, region, endpoint string, forcePathStyle bool) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, baseLoaders(region, endpoint)...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = forcePathStyle }), nil
}

// NewS3ClientStatic creates an S3 client using static credentials.
func NewS3ClientStatic(
	ctx context.Context,
	region string,
	accessKey string,
	secretKey string,
	sessionToken string, // "" if none
	endpoint string, // "" for AWS
	forcePathStyle bool,
) (*s3.Client, error) {
	loaders := append(baseLoaders(region, endpoint), config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken),
	))
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = forcePathStyle }), nil
}

// NewS3ClientAssumeRole creates an S3 client by assuming an IAM role via STS.
// sourceCreds: underlying creds to call STS. If nil, default chain.
// externalID optional. duration capped by role MaxSessionDuration.
func NewS3ClientAssumeRole(
	ctx context.Context,
	region string,
	roleARN string,
	sessionName string,
	duration time.Duration,
	externalID string,
	sourceCreds aws.CredentialsProvider, // nil => default provider chain
	endpoint string, // optional S3/STS endpoint override
	forcePathStyle bool,
) (*s3.Client, error) {
	loaders := baseLoaders(region, endpoint)
	if sourceCreds != nil {
		loaders = append(loaders, config.WithCredentialsProvider(sourceCreds))
	}
	baseCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}

	// STS client also uses the same resolver (so it doesn't go to real AWS).
	stsClient := sts.NewFromConfig(baseCfg)

	provider := stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
		if sessionName != "" {
			o.RoleSessionName = sessionName
		}
		if duration > 0 {
			o.Duration = duration
		}
		if externalID != "" {
			o.ExternalID = &externalID
		}
	})

	assumed := baseCfg
	assumed.Credentials = aws.NewCredentialsCache(provider)

	return s3.NewFromConfig(assumed, func(o *s3.Options) { o.UsePathStyle = forcePathStyle }), nil
}
