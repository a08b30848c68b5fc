// Package config manages application configuration loading and validation.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coachpo/baseconv/pkg/convert"
)

// Environment identifies the runtime environment where baseconv operates.
type Environment string

const (
	// EnvDev marks the development environment.
	EnvDev Environment = "dev"
	// EnvStaging marks the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd marks the production environment.
	EnvProd Environment = "prod"
)

const (
	defaultMaxPrecision = 64
	// PrecisionWarnThreshold is the precision above which the service logs an
	// accuracy notice.
	PrecisionWarnThreshold = 10
)

type switchKind int

const (
	switchUnset switchKind = iota
	switchExplicit
)

// Switch is a boolean setting that remembers whether it was configured.
// It accepts YAML booleans and the ini spellings yes/no, on/off, 1/0.
type Switch struct {
	kind  switchKind
	value bool
}

// NewSwitch returns an explicitly configured switch.
func NewSwitch(value bool) Switch {
	return Switch{kind: switchExplicit, value: value}
}

// UnmarshalYAML supports bool and ini-style truthy/falsy values.
func (s *Switch) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = Switch{}
		return nil
	}
	text := strings.TrimSpace(node.Value)
	if text == "" || node.Tag == "!!null" {
		*s = Switch{}
		return nil
	}
	value, err := ParseSwitch(text)
	if err != nil {
		return err
	}
	*s = NewSwitch(value)
	return nil
}

// MarshalYAML renders the switch as a YAML boolean.
func (s Switch) MarshalYAML() (any, error) {
	if s.kind == switchUnset {
		return nil, nil
	}
	return s.value, nil
}

// Enabled returns the configured value or def when unset.
func (s Switch) Enabled(def bool) bool {
	if s.kind == switchUnset {
		return def
	}
	return s.value
}

// ParseSwitch parses ini-style boolean text.
func ParseSwitch(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "yes", "true", "on", "y":
		return true, nil
	case "0", "no", "false", "off", "n":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", text)
	}
}

type workerKind int

const (
	workerUnset workerKind = iota
	workerExplicit
	workerAuto
	workerDefault
)

const defaultBatchWorkers = 4

// WorkerSetting encapsulates a worker count allowing both numeric and symbolic values.
type WorkerSetting struct {
	kind  workerKind
	value int
}

// Workers returns an explicit worker count.
func Workers(n int) WorkerSetting {
	return WorkerSetting{kind: workerExplicit, value: n}
}

// UnmarshalYAML supports integer, "auto", and "default" values for workers.
func (s *WorkerSetting) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = WorkerSetting{kind: workerUnset, value: 0}
		return nil
	}

	text := strings.TrimSpace(node.Value)
	if text == "" {
		*s = WorkerSetting{kind: workerUnset, value: 0}
		return nil
	}

	switch strings.ToLower(text) {
	case "auto":
		*s = WorkerSetting{kind: workerAuto, value: 0}
		return nil
	case "default":
		*s = WorkerSetting{kind: workerDefault, value: 0}
		return nil
	}

	val, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("workers: invalid value %q", node.Value)
	}
	if val <= 0 {
		return fmt.Errorf("workers: numeric value must be > 0")
	}
	*s = Workers(val)
	return nil
}

// MarshalYAML renders the setting back to its symbolic or numeric form.
func (s WorkerSetting) MarshalYAML() (any, error) {
	switch s.kind {
	case workerExplicit:
		return s.value, nil
	case workerAuto:
		return "auto", nil
	default:
		return "default", nil
	}
}

// Count returns the effective worker count derived from the setting.
func (s WorkerSetting) Count() int {
	switch s.kind {
	case workerExplicit:
		return s.value
	case workerAuto:
		if cores := runtime.NumCPU(); cores > 0 {
			return cores
		}
		return defaultBatchWorkers
	default:
		return defaultBatchWorkers
	}
}

// ConversionConfig holds the settings the conversion engine reads per call.
type ConversionConfig struct {
	StripZeros   Switch `yaml:"stripZeros"`
	Precision    int    `yaml:"precision"`
	MaxPrecision int    `yaml:"maxPrecision"`
}

// Options converts the section into engine options.
func (c ConversionConfig) Options() convert.Options {
	return convert.Options{
		Precision:  c.Precision,
		StripZeros: c.StripZeros.Enabled(true),
	}
}

// UIConfig carries front-end behaviour the engine never reads.
type UIConfig struct {
	AutoConvert Switch `yaml:"autoConvert"`
}

// APIServerConfig configures the HTTP conversion API.
type APIServerConfig struct {
	Addr              string  `yaml:"addr"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
	MaxBatchSize      int     `yaml:"maxBatchSize"`
}

// BatchConfig sizes the batch conversion worker pool.
type BatchConfig struct {
	Workers WorkerSetting `yaml:"workers"`
}

// TelemetryConfig configures OTLP exporters (metrics only).
type TelemetryConfig struct {
	OTLPEndpoint  string `yaml:"otlpEndpoint"`
	ServiceName   string `yaml:"serviceName"`
	OTLPInsecure  bool   `yaml:"otlpInsecure"`
	EnableMetrics bool   `yaml:"enableMetrics"`
}

// AppConfig is the complete baseconv configuration tree.
type AppConfig struct {
	Environment Environment      `yaml:"environment"`
	Conversion  ConversionConfig `yaml:"conversion"`
	UI          UIConfig         `yaml:"ui"`
	APIServer   APIServerConfig  `yaml:"apiServer"`
	Batch       BatchConfig      `yaml:"batch"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	cfg := AppConfig{
		Environment: EnvProd,
		Conversion: ConversionConfig{
			StripZeros:   NewSwitch(true),
			Precision:    convert.DefaultPrecision,
			MaxPrecision: defaultMaxPrecision,
		},
		UI: UIConfig{AutoConvert: NewSwitch(true)},
		APIServer: APIServerConfig{
			Addr:              ":8890",
			RequestsPerSecond: 50,
			Burst:             100,
			MaxBatchSize:      1000,
		},
		Batch: BatchConfig{Workers: WorkerSetting{kind: workerAuto}},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:  "",
			ServiceName:   "baseconv",
			OTLPInsecure:  true,
			EnableMetrics: false,
		},
	}
	cfg.Normalise()
	return cfg
}

// Load reads, normalises and validates the YAML configuration at configPath.
// Sections missing from the file keep their defaults.
func Load(ctx context.Context, configPath string) (AppConfig, error) {
	_ = ctx

	reader, closer, err := openConfigFile(configPath)
	if err != nil {
		return AppConfig{}, err
	}
	defer closer()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document over the defaults.
func Parse(raw []byte) (AppConfig, error) {
	cfg := Default()
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads configPath, falling back to defaults when the file does
// not exist. The boolean reports whether the file was read.
func LoadOrDefault(ctx context.Context, configPath string) (AppConfig, bool, error) {
	cfg, err := Load(ctx, configPath)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	return AppConfig{}, false, err
}

// SaveAppConfig writes cfg as YAML, replacing the file atomically.
func SaveAppConfig(path string, cfg AppConfig) error {
	target := filepath.Clean(strings.TrimSpace(path))
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".baseconv-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Normalise trims whitespace and fills derived defaults.
func (c *AppConfig) Normalise() {
	if c == nil {
		return
	}
	c.Environment = Environment(strings.ToLower(strings.TrimSpace(string(c.Environment))))
	if c.Environment == "" {
		c.Environment = EnvProd
	}
	if c.Conversion.MaxPrecision <= 0 {
		c.Conversion.MaxPrecision = defaultMaxPrecision
	}
	c.APIServer.Addr = strings.TrimSpace(c.APIServer.Addr)
	if c.APIServer.Burst <= 0 {
		c.APIServer.Burst = 1
	}
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
}

// Validate performs semantic validation on the configuration.
func (c AppConfig) Validate() error {
	switch c.Environment {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("environment must be one of dev, staging, prod")
	}
	if err := c.Conversion.Validate(); err != nil {
		return fmt.Errorf("conversion: %w", err)
	}
	if c.APIServer.Addr == "" {
		return fmt.Errorf("apiServer addr required")
	}
	if c.APIServer.RequestsPerSecond < 0 {
		return fmt.Errorf("apiServer requestsPerSecond must be >= 0")
	}
	if c.APIServer.MaxBatchSize <= 0 {
		return fmt.Errorf("apiServer maxBatchSize must be > 0")
	}
	if c.Batch.Workers.Count() <= 0 {
		return fmt.Errorf("batch workers must be > 0")
	}
	if c.Telemetry.ServiceName == "" {
		return fmt.Errorf("telemetry serviceName required")
	}
	return nil
}

// Validate checks precision bounds.
func (c ConversionConfig) Validate() error {
	if c.Precision < 0 {
		return fmt.Errorf("precision must be >= 0")
	}
	if c.MaxPrecision <= 0 {
		return fmt.Errorf("maxPrecision must be > 0")
	}
	if c.Precision > c.MaxPrecision {
		return fmt.Errorf("precision %d exceeds maxPrecision %d", c.Precision, c.MaxPrecision)
	}
	return nil
}

func openConfigFile(path string) (io.Reader, func(), error) {
	candidate := strings.TrimSpace(path)
	candidate = filepath.Clean(candidate)

	file, err := os.Open(candidate) // #nosec G304 -- path is operator controlled.
	if err != nil {
		return nil, nil, fmt.Errorf("open app config: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
