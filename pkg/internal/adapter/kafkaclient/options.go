package kafkaclient

import (
	"github.com/segmentio/kafka-go"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// WithKafkaGoWriter uses w as the producer.
func WithKafkaGoWriter(w *kafka.Writer) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		if w != nil {
			a.producer = w
		}
	}
}

// WithProducer uses any Producer, typically a test double.
func WithProducer(p Producer) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		a.producer = p
	}
}

// WithTopic overrides the writer topic.
func WithTopic(topic string) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		a.topic = topic
	}
}

// WithHeaders adds static headers to every message.
func WithHeaders(headers map[string]string) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		for k, v := range headers {
			a.headers[k] = v
		}
	}
}

// WithLogger connects loggers.
func WithLogger(l ...types.Logger) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		a.ConnectLogger(l...)
	}
}

// WithComponentMetadata sets the adapter name and id.
func WithComponentMetadata(name string, id string) types.Option[*KafkaClient] {
	return func(a *KafkaClient) {
		a.componentMetadata.Name = name
		a.componentMetadata.ID = id
	}
}
