// Package config loads anagramatron settings from a YAML file and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corey/anagramatron/internal/adapters/bbolt"
	"github.com/corey/anagramatron/internal/adapters/dump"
	"github.com/corey/anagramatron/internal/domain/filter"
	"github.com/corey/anagramatron/internal/domain/matcher"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataPath     = "ANAGRAM_DATA_PATH"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvSaveDir      = "TWITTER_SAVE_DIR"
	EnvKafkaBrokers = "KAFKA_BROKERS"
)

// DefaultDataPath is where the persistent store lives when nothing else is set.
const DefaultDataPath = "anagram-data"

// Config is the full settings tree.
type Config struct {
	// DataPath holds the chunk files and status.json.
	DataPath string `yaml:"data_path"`

	Store    StoreConfig    `yaml:"store"`
	Match    MatchConfig    `yaml:"match"`
	Save     SaveConfig     `yaml:"save"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig sizes the persistent chunked store.
type StoreConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	CacheCapacity int    `yaml:"cache_capacity"`
	Codec         string `yaml:"codec"` // "json" or "gob"
}

// MatchConfig tunes verification and pre-filtering.
type MatchConfig struct {
	MinDist   float64  `yaml:"min_dist"`
	MinLength int      `yaml:"min_length"`
	Blocklist []string `yaml:"blocklist,omitempty"`
}

// SaveConfig controls the stream saver.
type SaveConfig struct {
	Dir   string `yaml:"dir"`
	Batch int    `yaml:"batch"`
	Gzip  bool   `yaml:"gzip"`
}

// PostgresConfig locates the hit database. An empty URL disables it.
type PostgresConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout"` // e.g. "5s"
}

// KafkaConfig locates the item topic.
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers,omitempty"`
	Topic     string   `yaml:"topic"`
	Group     string   `yaml:"group"`
	FromStart bool     `yaml:"from_start"`
}

// LogConfig controls the logger and progress reporting.
type LogConfig struct {
	Verbose  bool   `yaml:"verbose"`
	JSON     bool   `yaml:"json"`
	Progress string `yaml:"progress"` // interval between progress lines, e.g. "10s"
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataPath: DefaultDataPath,
		Store: StoreConfig{
			ChunkSize:     bbolt.DefaultChunkSize,
			CacheCapacity: bbolt.DefaultCacheCapacity,
			Codec:         bbolt.DefaultCodec.Name(),
		},
		Match: MatchConfig{
			MinDist:   matcher.DefaultMinDist,
			MinLength: filter.DefaultMinLength,
			Blocklist: []string{filter.ShortLinkPrefix},
		},
		Save: SaveConfig{
			Dir:   "tweets",
			Batch: dump.DefaultBatch,
		},
		Postgres: PostgresConfig{Timeout: "5s"},
		Kafka: KafkaConfig{
			Topic: "anagramatron.items",
			Group: "anagramatron",
		},
		Log: LogConfig{Progress: "10s"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides fields from the environment. Unset or empty variables
// leave the field alone.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataPath); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv(EnvSaveDir); v != "" {
		c.Save.Dir = v
	}
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
}

// Validate checks ranges and parses the duration fields.
func (c *Config) Validate() error {
	var errs []error
	if c.DataPath == "" {
		errs = append(errs, errors.New("data_path is empty"))
	}
	if c.Store.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("store.chunk_size must be positive, got %d", c.Store.ChunkSize))
	}
	if c.Store.CacheCapacity <= 0 {
		errs = append(errs, fmt.Errorf("store.cache_capacity must be positive, got %d", c.Store.CacheCapacity))
	}
	if _, ok := bbolt.CodecByName(c.Store.Codec); !ok {
		errs = append(errs, fmt.Errorf("store.codec: unknown codec %q", c.Store.Codec))
	}
	if c.Match.MinDist <= 0 || c.Match.MinDist > 1 {
		errs = append(errs, fmt.Errorf("match.min_dist must be in (0, 1], got %g", c.Match.MinDist))
	}
	if c.Match.MinLength < 0 {
		errs = append(errs, fmt.Errorf("match.min_length must not be negative, got %d", c.Match.MinLength))
	}
	if c.Save.Batch <= 0 {
		errs = append(errs, fmt.Errorf("save.batch must be positive, got %d", c.Save.Batch))
	}
	if _, err := c.PostgresTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("postgres.timeout: %w", err))
	}
	if _, err := c.ProgressInterval(); err != nil {
		errs = append(errs, fmt.Errorf("log.progress: %w", err))
	}
	return errors.Join(errs...)
}

// PostgresTimeout is the per-write deadline for the hit store; 0 means none.
func (c *Config) PostgresTimeout() (time.Duration, error) {
	return parseDuration(c.Postgres.Timeout)
}

// ProgressInterval is the minimum gap between progress log lines.
func (c *Config) ProgressInterval() (time.Duration, error) {
	return parseDuration(c.Log.Progress)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
