package builder

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/scram"

	kafkaClientAdapter "github.com/UCLRadarGroup/Radar-ML/pkg/internal/adapter/kafkaclient"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type KafkaPublisher = kafkaClientAdapter.KafkaClient

// NewKafkaPublisher creates a progress publisher. Pair it with KafkaPublisherWithKafkaGoWriter.
func NewKafkaPublisher(options ...types.Option[*KafkaPublisher]) *KafkaPublisher {
	return kafkaClientAdapter.NewKafkaClientAdapter(options...)
}

// KafkaPublisherWithKafkaGoWriter injects a kafka-go Writer as the producer.
func KafkaPublisherWithKafkaGoWriter(w *kafka.Writer) types.Option[*KafkaPublisher] {
	return kafkaClientAdapter.WithKafkaGoWriter(w)
}

// KafkaPublisherWithTopic overrides the writer topic per message.
func KafkaPublisherWithTopic(topic string) types.Option[*KafkaPublisher] {
	return kafkaClientAdapter.WithTopic(topic)
}

func KafkaPublisherWithHeaders(h map[string]string) types.Option[*KafkaPublisher] {
	return kafkaClientAdapter.WithHeaders(h)
}

func KafkaPublisherWithLogger(l ...types.Logger) types.Option[*KafkaPublisher] {
	return kafkaClientAdapter.WithLogger(l...)
}

// ---- kafka-go Writer convenience ----

type KafkaGoWriterOption func(*kafka.Writer)

// NewKafkaGoWriter builds a kafka-go Writer for progress events. Events are small and rare, so
// batches flush quickly and partitions are balanced by bytes.
func NewKafkaGoWriter(brokers []string, topic string, opts ...KafkaGoWriterOption) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		BatchBytes:             int64(1 << 20),
		BatchSize:              100,
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func KafkaGoWriterWithHash() KafkaGoWriterOption {
	return func(w *kafka.Writer) { w.Balancer = &kafka.Hash{} }
}
func KafkaGoWriterWithBatchTimeout(d time.Duration) KafkaGoWriterOption {
	return func(w *kafka.Writer) { w.BatchTimeout = d }
}
func KafkaGoWriterWithAsync(async bool) KafkaGoWriterOption {
	return func(w *kafka.Writer) { w.Async = async }
}
func KafkaGoWriterWithRequiredAcks(mode string) KafkaGoWriterOption {
	return func(w *kafka.Writer) {
		switch strings.ToLower(mode) {
		case "0", "none":
			w.RequiredAcks = kafka.RequireNone
		case "1", "leader":
			w.RequiredAcks = kafka.RequireOne
		default: // "all", "-1"
			w.RequiredAcks = kafka.RequireAll
		}
	}
}
func KafkaGoWriterWithTransport(t *kafka.Transport) KafkaGoWriterOption {
	return func(w *kafka.Writer) { w.Transport = t }
}

// -------------------------------------------------
// Security helpers (TLS + SASL)
// -------------------------------------------------

// TLSFromCAFilesStrict loads a strict TLS config (Min TLS1.2) using the first
// existing file path from candidates. If serverName != "", it is set for SNI
// and hostname verification.
func TLSFromCAFilesStrict(candidates []string, serverName string) (*tls.Config, error) {
	var picked string
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			picked = p
			break
		}
	}
	if picked == "" {
		return nil, fmt.Errorf("no CA file found in candidates: %v", candidates)
	}
	pem, err := os.ReadFile(filepath.Clean(picked))
	if err != nil {
		return nil, fmt.Errorf("read CA: %w", err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("invalid CA PEM at %s", picked)
	}
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    cp,
	}
	if serverName != "" {
		cfg.ServerName = serverName
	}
	return cfg, nil
}

// TLSFromCAPathCSV convenience wrapper around TLSFromCAFilesStrict.
func TLSFromCAPathCSV(csv, serverName string) (*tls.Config, error) {
	var paths []string
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			paths = append(paths, p)
		}
	}
	return TLSFromCAFilesStrict(paths, serverName)
}

// SASLSCRAM returns a sasl.Mechanism for kafka-go from a common name.
// Supported: "SCRAM-SHA-256" (default), "SCRAM-SHA-512".
func SASLSCRAM(user, pass, mech string) (sasl.Mechanism, error) {
	switch strings.ToUpper(strings.ReplaceAll(mech, "_", "-")) {
	case "", "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, user, pass)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, user, pass)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", mech)
	}
}

// NewKafkaGoTransport builds a kafka-go Transport with optional TLS/SASL/ClientID.
func NewKafkaGoTransport(tlsCfg *tls.Config, mech sasl.Mechanism, clientID string) *kafka.Transport {
	return &kafka.Transport{
		TLS:      tlsCfg,
		SASL:     mech,
		ClientID: clientID,
	}
}

// NewKafkaGoWriterSecure: NewKafkaGoWriter + Transport(TLS/SASL) in one call.
func NewKafkaGoWriterSecure(brokers []string, topic string, tlsCfg *tls.Config, mech sasl.Mechanism, clientID string, opts ...KafkaGoWriterOption) *kafka.Writer {
	transport := NewKafkaGoTransport(tlsCfg, mech, clientID)
	opts = append([]KafkaGoWriterOption{KafkaGoWriterWithTransport(transport)}, opts...)
	return NewKafkaGoWriter(brokers, topic, opts...)
}

// KafkaSettings is the env-driven description of the progress topic used by the example commands.
type KafkaSettings struct {
	Brokers   []string
	Topic     string
	ClientID  string
	CAFiles   string
	TLSServer string
	SASLUser  string
	SASLPass  string
	SASLMech  string
}

// KafkaSettingsFromEnv reads RADARML_KAFKA_* variables. No brokers means publishing is disabled.
func KafkaSettingsFromEnv() KafkaSettings {
	return KafkaSettings{
		Brokers:   EnvListOr("RADARML_KAFKA_BROKERS", nil),
		Topic:     EnvOr("RADARML_KAFKA_TOPIC", "radar-ml.sweep.progress"),
		ClientID:  EnvOr("RADARML_KAFKA_CLIENT_ID", "radar-ml"),
		CAFiles:   EnvOr("RADARML_KAFKA_CA_FILES", ""),
		TLSServer: EnvOr("RADARML_KAFKA_TLS_SERVER_NAME", ""),
		SASLUser:  EnvOr("RADARML_KAFKA_SASL_USER", ""),
		SASLPass:  EnvOr("RADARML_KAFKA_SASL_PASS", ""),
		SASLMech:  EnvOr("RADARML_KAFKA_SASL_MECHANISM", "SCRAM-SHA-256"),
	}
}

// NewKafkaGoWriterFromSettings builds a writer, adding TLS and SCRAM only when configured.
func NewKafkaGoWriterFromSettings(s KafkaSettings, opts ...KafkaGoWriterOption) (*kafka.Writer, error) {
	if len(s.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	var tlsCfg *tls.Config
	if s.CAFiles != "" {
		var err error
		if tlsCfg, err = TLSFromCAPathCSV(s.CAFiles, s.TLSServer); err != nil {
			return nil, err
		}
	}
	var mech sasl.Mechanism
	if s.SASLUser != "" {
		var err error
		if mech, err = SASLSCRAM(s.SASLUser, s.SASLPass, s.SASLMech); err != nil {
			return nil, err
		}
	}
	return NewKafkaGoWriterSecure(s.Brokers, s.Topic, tlsCfg, mech, s.ClientID, opts...), nil
}
