package kafkaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

var (
	ErrNoProducer = errors.New("kafkaclient: no producer configured")
	ErrNoTopic    = errors.New("kafkaclient: no topic configured")
)

// effectiveTopic returns the adapter topic, falling back to the kafka-go writer's own topic.
func (a *KafkaClient) effectiveTopic() (string, bool) {
	if t := strings.TrimSpace(a.topic); t != "" {
		return t, true
	}
	if w, ok := a.producer.(*kafka.Writer); ok {
		if t := strings.TrimSpace(w.Topic); t != "" {
			return t, true
		}
	}
	return "", false
}

// message renders ev as a JSON record keyed by the input file.
func (a *KafkaClient) message(ev types.ProgressEvent) (kafka.Message, error) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	val, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafkaclient: encode event: %w", err)
	}
	msg := kafka.Message{Key: []byte(ev.File), Value: val}

	keys := make([]string, 0, len(a.headers))
	for k := range a.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(a.headers[k])})
	}
	msg.Headers = append(msg.Headers, kafka.Header{Key: "status", Value: []byte(ev.Status)})
	return msg, nil
}

// Publish writes one progress event. Callers treat failures as non-fatal.
func (a *KafkaClient) Publish(ctx context.Context, ev types.ProgressEvent) error {
	if a.producer == nil {
		return ErrNoProducer
	}
	topic, ok := a.effectiveTopic()
	if !ok {
		return ErrNoTopic
	}

	msg, err := a.message(ev)
	if err != nil {
		return err
	}
	if w, isWriter := a.producer.(*kafka.Writer); !isWriter || strings.TrimSpace(w.Topic) == "" {
		msg.Topic = topic
	}

	start := time.Now()
	if err := a.producer.WriteMessages(ctx, msg); err != nil {
		a.NotifyLoggers(types.WarnLevel, "Progress publish failed",
			"component", a.componentMetadata,
			"event", "Publish",
			"result", "FAILURE",
			"topic", topic,
			"file", ev.File,
			"error", err,
		)
		return fmt.Errorf("kafkaclient: publish %s: %w", ev.File, err)
	}
	a.NotifyLoggers(types.DebugLevel, "Progress published",
		"component", a.componentMetadata,
		"event", "Publish",
		"result", "SUCCESS",
		"topic", topic,
		"file", ev.File,
		"status", string(ev.Status),
		"duration", time.Since(start),
	)
	return nil
}

// Close flushes and closes the producer once.
func (a *KafkaClient) Close() error {
	a.closeOnce.Do(func() {
		if a.producer != nil {
			a.closeErr = a.producer.Close()
		}
	})
	return a.closeErr
}
