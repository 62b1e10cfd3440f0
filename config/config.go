// Package config loads the run configuration of the tabprep CLI from YAML or
// JSON.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/tabprep/core/compress"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/features"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/sklearn/compose"
)

// Config is one preprocessing run.
type Config struct {
	// Input is the CSV file to read. Relative paths are resolved against the
	// directory of the config file by Load.
	Input string `yaml:"input" json:"input"`
	// Label is the target column, removed from the features before fitting.
	Label string `yaml:"label" json:"label"`
	// Drop lists columns removed after derivation, e.g. raw identifiers.
	Drop []string `yaml:"drop" json:"drop"`
	// Schema declares the dtype of every CSV column (float64, bool, object, ...).
	Schema map[string]string `yaml:"schema" json:"schema"`
	// NAValues replaces the default missing-value tokens when set.
	NAValues []string `yaml:"na_values" json:"na_values"`

	Derive     []DeriveConfig   `yaml:"derive" json:"derive"`
	Split      SplitConfig      `yaml:"split" json:"split"`
	Preprocess PreprocessConfig `yaml:"preprocess" json:"preprocess"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// DeriveConfig is one CEL derived column.
type DeriveConfig struct {
	Name  string `yaml:"name" json:"name"`
	DType string `yaml:"dtype" json:"dtype"`
	Expr  string `yaml:"expr" json:"expr"`
}

// SplitConfig controls the train/validation split.
type SplitConfig struct {
	TestSize    float64 `yaml:"test_size" json:"test_size"`
	RandomState int64   `yaml:"random_state" json:"random_state"`
	Shuffle     *bool   `yaml:"shuffle" json:"shuffle"`
}

// PreprocessConfig configures the column transformer.
type PreprocessConfig struct {
	NumericScaler string `yaml:"numeric_scaler" json:"numeric_scaler"`
}

// OutputConfig controls what the CLI writes.
type OutputConfig struct {
	Dir         string `yaml:"dir" json:"dir"`
	State       string `yaml:"state" json:"state"`
	Compression string `yaml:"compression" json:"compression"`
	Plot        string `yaml:"plot" json:"plot"`
}

// StoreConfig selects where the fitted pipeline state is stored.
type StoreConfig struct {
	Kind  string      `yaml:"kind" json:"kind"`
	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig addresses a Redis instance for the fitted state.
type RedisConfig struct {
	Addr       string `yaml:"addr" json:"addr"`
	Password   string `yaml:"password" json:"password"`
	DB         int    `yaml:"db" json:"db"`
	Key        string `yaml:"key" json:"key"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
}

// LogConfig selects the log level and output format (json, console or slog).
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	shuffle := true
	return &Config{
		Split: SplitConfig{TestSize: 0.2, RandomState: 42, Shuffle: &shuffle},
		Preprocess: PreprocessConfig{
			NumericScaler: string(compose.ScalerNone),
		},
		Output: OutputConfig{
			Dir:         "out",
			State:       "pipeline.bin",
			Compression: compress.Zstd.String(),
		},
		Store: StoreConfig{
			Kind:  StoreFile,
			Redis: RedisConfig{Addr: "localhost:6379", Key: "tabprep:pipeline"},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads path as JSON when it ends in .json and as YAML otherwise, then
// validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = ParseJSON(data)
	} else {
		cfg, err = Parse(data)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Input != "" && !filepath.IsAbs(cfg.Input) {
		cfg.Input = filepath.Join(filepath.Dir(path), cfg.Input)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}
	return cfg, cfg.Validate()
}

// ParseJSON decodes JSON on top of Default and validates the result.
func ParseJSON(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse json")
	}
	return cfg, cfg.Validate()
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.NewValidationError("input", "is required", c.Input)
	}
	if c.Label == "" {
		return errors.NewValidationError("label", "is required", c.Label)
	}
	if len(c.Schema) == 0 {
		return errors.NewValidationError("schema", "must declare the dtype of every column", nil)
	}
	if _, ok := c.Schema[c.Label]; !ok {
		return errors.NewValidationError("label", "must be declared in schema", c.Label)
	}
	for name, dt := range c.Schema {
		if !dataset.ParseDType(dt).Known() {
			return errors.NewValidationError("schema."+name, "unsupported dtype", dt)
		}
	}
	for i, d := range c.Derive {
		if d.Name == "" || d.Expr == "" {
			return errors.NewValidationError("derive", "name and expr are required", i)
		}
		if !dataset.ParseDType(d.DType).Known() {
			return errors.NewValidationError("derive."+d.Name+".dtype", "unsupported dtype", d.DType)
		}
	}
	if t := c.Split.TestSize; !(t > 0 && t < 1) {
		return errors.NewInvalidRatioError("split.test_size", t)
	}
	if _, err := compose.ParseScalerKind(c.Preprocess.NumericScaler); err != nil {
		return err
	}
	if _, err := compress.ParseType(c.Output.Compression); err != nil {
		return errors.NewValidationError("output.compression", err.Error(), c.Output.Compression)
	}
	switch c.Store.Kind {
	case StoreFile:
	case StoreRedis:
		if c.Store.Redis.Addr == "" || c.Store.Redis.Key == "" {
			return errors.NewValidationError("store.redis", "addr and key are required", c.Store.Redis.Addr)
		}
		if c.Store.Redis.TTLSeconds < 0 {
			return errors.NewValidationError("store.redis.ttl_seconds", "must not be negative", c.Store.Redis.TTLSeconds)
		}
	default:
		return errors.NewValidationError("store.kind", "must be file or redis", c.Store.Kind)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error(), c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console", "slog":
	default:
		return errors.NewValidationError("log.format", "must be json, console or slog", c.Log.Format)
	}
	return nil
}

// CSVOptions returns the loader options implied by the schema section.
func (c *Config) CSVOptions() dataset.CSVOptions {
	schema := make(map[string]dataset.DType, len(c.Schema))
	for name, dt := range c.Schema {
		schema[name] = dataset.ParseDType(dt)
	}
	return dataset.CSVOptions{Schema: schema, NAValues: c.NAValues}
}

// Derivations converts the derive section.
func (c *Config) Derivations() []features.Derivation {
	out := make([]features.Derivation, len(c.Derive))
	for i, d := range c.Derive {
		out[i] = features.Derivation{Name: d.Name, DType: dataset.ParseDType(d.DType), Expr: d.Expr}
	}
	return out
}

// ShuffleEnabled reports the effective shuffle setting.
func (c *Config) ShuffleEnabled() bool {
	return c.Split.Shuffle == nil || *c.Split.Shuffle
}

// ScalerKind returns the parsed numeric scaler.
func (c *Config) ScalerKind() compose.ScalerKind {
	k, _ := compose.ParseScalerKind(c.Preprocess.NumericScaler)
	return k
}

// Compression returns the parsed state codec.
func (c *Config) Compression() compress.Type {
	t, _ := compress.ParseType(c.Output.Compression)
	return t
}
