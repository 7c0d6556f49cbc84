// Package s3client uploads persisted dataset outputs to S3-compatible object storage.
package s3client

import (
	"context"
	"sync"

	s3api "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/compression"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// PutObjectAPI is the subset of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3api.PutObjectInput, optFns ...func(*s3api.Options)) (*s3api.PutObjectOutput, error)
}

// S3Client implements types.OutputUploader.
type S3Client struct {
	componentMetadata types.ComponentMetadata

	cli    PutObjectAPI
	bucket string
	prefix string

	// compress applies to .npy arrays only; sidecars are small and manifests carry their own codec.
	compress compression.Algorithm
	sseMode  string
	kmsKey   string
	tmpDir   string

	loggers     []types.Logger
	loggersLock sync.Mutex

	sensors     []types.Sensor
	sensorsLock sync.Mutex
}

// NewS3ClientAdapter builds an uploader. Client and bucket are required before Upload.
func NewS3ClientAdapter(options ...types.Option[*S3Client]) *S3Client {
	a := &S3Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "S3_CLIENT",
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// GetComponentMetadata returns the adapter metadata.
func (a *S3Client) GetComponentMetadata() types.ComponentMetadata {
	return a.componentMetadata
}

// ConnectLogger attaches loggers.
func (a *S3Client) ConnectLogger(loggers ...types.Logger) {
	a.loggersLock.Lock()
	defer a.loggersLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			a.loggers = append(a.loggers, l)
		}
	}
}

// ConnectSensor attaches sensors notified after every object upload.
func (a *S3Client) ConnectSensor(sensors ...types.Sensor) {
	a.sensorsLock.Lock()
	defer a.sensorsLock.Unlock()
	for _, s := range sensors {
		if s != nil {
			a.sensors = append(a.sensors, s)
		}
	}
}

func (a *S3Client) snapshotSensors() []types.Sensor {
	a.sensorsLock.Lock()
	defer a.sensorsLock.Unlock()
	return append([]types.Sensor(nil), a.sensors...)
}

// NotifyLoggers writes msg to every connected logger at level.
func (a *S3Client) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	a.loggersLock.Lock()
	loggers := append([]types.Logger(nil), a.loggers...)
	a.loggersLock.Unlock()

	for _, logger := range loggers {
		if logger.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			logger.Debug(msg, keysAndValues...)
		case types.InfoLevel:
			logger.Info(msg, keysAndValues...)
		case types.WarnLevel:
			logger.Warn(msg, keysAndValues...)
		default:
			logger.Error(msg, keysAndValues...)
		}
	}
}
