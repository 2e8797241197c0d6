// Package config loads settings for the worker, starter and gateway from an
// optional YAML file overlaid by environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the variable holding the optional YAML config path.
const FileEnv = "ORDER_TAKING_CONFIG"

const (
	DefaultTemporalAddress    = "localhost:7233"
	DefaultTaskQueue          = "order-taking-queue"
	DefaultBuildID            = "2.0.0"
	DefaultAddressServiceURL  = "http://localhost:8081"
	DefaultCatalogDBPath      = "catalog.db"
	DefaultEventsTopic        = "order-events"
	DefaultNotificationsTopic = "order-notifications"
	DefaultMetricsAddr        = ":9090"
	DefaultGatewayAddr        = ":8080"
	DefaultPriceCacheTTL      = 5 * time.Minute
)

type Config struct {
	TemporalAddress    string        `yaml:"temporal_address"`
	TaskQueue          string        `yaml:"task_queue"`
	EncryptionKey      string        `yaml:"encryption_key"`
	BuildID            string        `yaml:"build_id"`
	AddressServiceURL  string        `yaml:"address_service_url"`
	CatalogDBPath      string        `yaml:"catalog_db_path"`
	RedisAddr          string        `yaml:"redis_addr"`
	PriceCacheTTL      time.Duration `yaml:"price_cache_ttl"`
	KafkaBrokers       []string      `yaml:"kafka_brokers"`
	EventsTopic        string        `yaml:"events_topic"`
	NotificationsTopic string        `yaml:"notifications_topic"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	GatewayAddr        string        `yaml:"gateway_addr"`
	LogLevel           string        `yaml:"log_level"`
	LetterSignature    string        `yaml:"letter_signature"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TemporalAddress:    DefaultTemporalAddress,
		TaskQueue:          DefaultTaskQueue,
		BuildID:            DefaultBuildID,
		AddressServiceURL:  DefaultAddressServiceURL,
		CatalogDBPath:      DefaultCatalogDBPath,
		PriceCacheTTL:      DefaultPriceCacheTTL,
		EventsTopic:        DefaultEventsTopic,
		NotificationsTopic: DefaultNotificationsTopic,
		MetricsAddr:        DefaultMetricsAddr,
		GatewayAddr:        DefaultGatewayAddr,
		LogLevel:           "info",
		LetterSignature:    "The Order Team",
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from defaults, then the YAML file named by
// ORDER_TAKING_CONFIG, then individual environment variables.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(FileEnv); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TEMPORAL_ADDRESS", &cfg.TemporalAddress)
	str("TASK_QUEUE", &cfg.TaskQueue)
	str("ENCRYPTION_KEY", &cfg.EncryptionKey)
	str("BUILD_ID", &cfg.BuildID)
	str("ADDRESS_SERVICE_URL", &cfg.AddressServiceURL)
	str("CATALOG_DB_PATH", &cfg.CatalogDBPath)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("KAFKA_EVENTS_TOPIC", &cfg.EventsTopic)
	str("KAFKA_NOTIFICATIONS_TOPIC", &cfg.NotificationsTopic)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("GATEWAY_ADDR", &cfg.GatewayAddr)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LETTER_SIGNATURE", &cfg.LetterSignature)

	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = SplitBrokers(v)
	}
	if v, ok := lookup("PRICE_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PRICE_CACHE_TTL %q: %w", v, err)
		}
		cfg.PriceCacheTTL = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SplitBrokers parses a comma-separated broker list, dropping blanks.
func SplitBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// KafkaEnabled reports whether any broker is configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) Validate() error {
	if c.TemporalAddress == "" {
		return fmt.Errorf("temporal address is required")
	}
	if c.TaskQueue == "" {
		return fmt.Errorf("task queue is required")
	}
	if c.PriceCacheTTL < 0 {
		return fmt.Errorf("price cache ttl must not be negative")
	}
	if c.EncryptionKey != "" {
		if _, err := decodeKey(c.EncryptionKey); err != nil {
			return err
		}
	}
	return nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24 or 32 bytes, got %d", len(key))
	}
}

// EncryptionKeyBytes decodes the configured key. When none is configured a
// random 32-byte key is generated and generated is true; clients and workers
// must then share the printed key.
func (c Config) EncryptionKeyBytes() (key []byte, generated bool, err error) {
	if c.EncryptionKey != "" {
		key, err = decodeKey(c.EncryptionKey)
		return key, false, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key, true, nil
}
