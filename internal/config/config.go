package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Output sinks.
const (
	SinkFile   = "file"
	SinkKafka  = "kafka"
	SinkSQLite = "sqlite"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath   string
	InputFormat string

	Sink       string
	OutputPath string
	SQLitePath string

	KafkaBrokers      []string
	KafkaTopic        string
	KafkaBatchTimeout time.Duration

	HTTPAddr        string // empty disables the ops server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	OTLPEndpoint    string

	ProgressInterval time.Duration
	CleanCacheSize   int // 0 disables memoisation
	AuditEnabled     bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	kafkaBatchTimeout, err := parseDuration("KAFKA_BATCH_TIMEOUT", "10ms")
	if err != nil {
		return nil, err
	}

	progressInterval, err := parseDuration("PROGRESS_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	auditEnabled, err := parseBool("AUDIT_ENABLED")
	if err != nil {
		return nil, err
	}

	input := os.Getenv("OSM_INPUT")
	cfg := &Config{
		InputPath:         input,
		InputFormat:       sharedcfg.EnvOrDefault("OSM_INPUT_FORMAT", "auto"),
		Sink:              sharedcfg.EnvOrDefault("SINK", SinkFile),
		OutputPath:        sharedcfg.EnvOrDefault("OUTPUT_PATH", defaultOutputPath(input)),
		SQLitePath:        sharedcfg.EnvOrDefault("SQLITE_PATH", "osm.db"),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "osm-elements"),
		KafkaBatchTimeout: kafkaBatchTimeout,
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		OTLPEndpoint:      os.Getenv("OTLP_ENDPOINT"),
		ProgressInterval:  progressInterval,
		CleanCacheSize:    cacheSize,
		AuditEnabled:      auditEnabled,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.InputPath == "" {
		return errors.New("OSM_INPUT is required")
	}
	switch c.InputFormat {
	case "auto", "xml", "pbf":
	default:
		return fmt.Errorf("invalid OSM_INPUT_FORMAT %q: must be auto, xml, or pbf", c.InputFormat)
	}
	switch c.Sink {
	case SinkFile:
		if c.OutputPath == "" {
			return errors.New("OUTPUT_PATH is required when reading from stdin")
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required")
		}
	case SinkSQLite:
	default:
		return fmt.Errorf("invalid SINK %q: must be file, kafka, or sqlite", c.Sink)
	}
	return nil
}

// defaultOutputPath mirrors the input name: birmingham.osm -> birmingham.osm.json.
func defaultOutputPath(input string) string {
	if input == "" || input == "-" {
		return ""
	}
	return input + ".json"
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative duration", key)
	}
	return d, nil
}

func parseCacheSize() (int, error) {
	s := sharedcfg.EnvOrDefault("CLEAN_CACHE_SIZE", "4096")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid CLEAN_CACHE_SIZE: must be a non-negative integer")
	}
	return n, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
