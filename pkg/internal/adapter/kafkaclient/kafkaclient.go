// Package kafkaclient publishes per-file progress events to a Kafka topic.
package kafkaclient

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// Producer is the subset of *kafka.Writer the adapter needs.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaClient implements types.ProgressPublisher over a kafka-go writer.
type KafkaClient struct {
	componentMetadata types.ComponentMetadata

	producer Producer
	topic    string
	headers  map[string]string

	loggers     []types.Logger
	loggersLock sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewKafkaClientAdapter builds a progress publisher. A producer must be supplied with
// WithKafkaGoWriter or WithProducer before Publish is called.
func NewKafkaClientAdapter(options ...types.Option[*KafkaClient]) *KafkaClient {
	a := &KafkaClient{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "KAFKA_CLIENT",
		},
		headers: map[string]string{"content-type": "application/json"},
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// GetComponentMetadata returns the adapter metadata.
func (a *KafkaClient) GetComponentMetadata() types.ComponentMetadata {
	return a.componentMetadata
}

// ConnectLogger attaches loggers.
func (a *KafkaClient) ConnectLogger(loggers ...types.Logger) {
	a.loggersLock.Lock()
	defer a.loggersLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			a.loggers = append(a.loggers, l)
		}
	}
}

// NotifyLoggers writes msg to every connected logger at level.
func (a *KafkaClient) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
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
		case types.ErrorLevel:
			logger.Error(msg, keysAndValues...)
		default:
			logger.Error(msg, keysAndValues...)
		}
	}
}
