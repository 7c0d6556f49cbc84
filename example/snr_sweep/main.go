// Command snr_sweep degrades every capture in a directory across the configured SNR sweep.
//
//	snr_sweep -in ./data -out ./degraded -config sweep.yaml -workers 8
//
// Uploads to S3 and progress events on Kafka are enabled by RADARML_S3_BUCKET and
// RADARML_KAFKA_BROKERS (see builder.S3SettingsFromEnv and builder.KafkaSettingsFromEnv).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/UCLRadarGroup/Radar-ML/pkg/builder"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inDir    = flag.String("in", builder.EnvOr("RADARML_INPUT_DIR", ""), "directory of input captures")
		outDir   = flag.String("out", builder.EnvOr("RADARML_OUTPUT_DIR", ""), "output directory (default: beside each input)")
		cfgPath  = flag.String("config", builder.EnvOr("RADARML_CONFIG", ""), "sweep YAML (default: built-in sweep)")
		workers  = flag.Int("workers", builder.EnvIntOr("RADARML_WORKERS", 0), "file workers (0: 80% of logical CPUs, memory-capped)")
		cells    = flag.Int("cell-concurrency", 0, "goroutines per file (0: from config)")
		logLevel = flag.String("log-level", builder.EnvOr("RADARML_LOG_LEVEL", "info"), "debug|info|warn|error")
		logFile  = flag.String("log-file", "", "also write JSON logs to this file")
		dev      = flag.Bool("dev", false, "development logging")
	)
	flag.Parse()

	if *inDir == "" {
		fmt.Fprintln(os.Stderr, "snr_sweep: -in is required")
		flag.Usage()
		return 2
	}

	logger := builder.NewLogger(builder.LoggerWithLevel(*logLevel), builder.LoggerWithDevelopment(*dev))
	defer logger.Flush()
	if *logFile != "" {
		if err := logger.AddSink("file", builder.SinkConfig{
			Type:   string(builder.FileSink),
			Config: map[string]interface{}{"path": *logFile},
		}); err != nil {
			fmt.Fprintf(os.Stderr, "snr_sweep: log file: %v\n", err)
			return 2
		}
	}

	cfg, err := builder.LoadSweep(*cfgPath)
	if err != nil {
		logger.Error("Invalid configuration", "event", "LoadSweep", "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := builder.NewMeter(builder.MeterWithLogger(logger))
	s := builder.NewSensor(builder.SensorWithLogger(logger), builder.SensorWithMeter(m))
	opts := []builder.DispatcherOption{
		builder.DispatcherWithOutputDir(*outDir),
		builder.DispatcherWithWorkers(*workers),
		builder.DispatcherWithCellConcurrency(*cells),
		builder.DispatcherWithLogger(logger),
		builder.DispatcherWithSensor(s),
		builder.DispatcherWithMeter(m),
	}

	if s3 := builder.S3SettingsFromEnv(); s3.Bucket != "" {
		uploader, err := newUploader(ctx, s3, logger, s)
		if err != nil {
			logger.Error("S3 setup failed", "event", "S3Setup", "error", err)
			return 2
		}
		opts = append(opts, builder.DispatcherWithUploader(uploader))
	}
	if k := builder.KafkaSettingsFromEnv(); len(k.Brokers) > 0 {
		w, err := builder.NewKafkaGoWriterFromSettings(k)
		if err != nil {
			logger.Error("Kafka setup failed", "event", "KafkaSetup", "error", err)
			return 2
		}
		pub := builder.NewKafkaPublisher(builder.KafkaPublisherWithKafkaGoWriter(w), builder.KafkaPublisherWithLogger(logger))
		defer pub.Close()
		opts = append(opts, builder.DispatcherWithPublisher(pub))
	}

	inputs, err := builder.DiscoverInputs(cfg, *inDir)
	if err != nil {
		logger.Error("Input discovery failed", "event", "Discover", "error", err)
		return 2
	}
	logger.Info("Inputs discovered", "event", "Discover", "files", len(inputs), "fingerprint", cfg.Fingerprint())

	report, err := builder.NewDispatcher(cfg, opts...).Run(ctx, inputs)
	switch {
	case err == nil:
	case errors.Is(err, builder.ErrFilesFailed):
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", f.Input, f.Err)
		}
		return 1
	default:
		logger.Error("Sweep aborted", "event", "Run", "error", err)
		return 2
	}
	fmt.Printf("degraded %d files in %s with %d workers\n", len(report.Completed), report.Elapsed, report.Workers)
	return 0
}

func newUploader(ctx context.Context, s builder.S3Settings, logger builder.Logger, sensor builder.Sensor) (*builder.S3Uploader, error) {
	alg, err := builder.ParseCompression(s.Compression)
	if err != nil {
		return nil, err
	}
	cli, err := builder.NewS3ClientFromSettings(ctx, s)
	if err != nil {
		return nil, err
	}
	return builder.NewS3Uploader(
		builder.S3UploaderWithClientAndBucket(cli, s.Bucket),
		builder.S3UploaderWithPrefix(s.Prefix),
		builder.S3UploaderWithCompression(alg),
		builder.S3UploaderWithSSE(s.SSEMode, s.KMSKeyID),
		builder.S3UploaderWithLogger(logger),
		builder.S3UploaderWithSensor(sensor),
	), nil
}
