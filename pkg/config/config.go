// Package config loads server configuration from an optional YAML file with
// command-line flag overrides. Flags win over the file; the file wins over
// built-in defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scandeck/scandeck/pkg/duration"
)

// Duration is a time.Duration that parses "5s"-style strings from YAML and
// from flags.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// ProbeTimeout bounds each outbound probe request.
	ProbeTimeout Duration `yaml:"probe_timeout"`

	// ProbeRateLimit throttles outbound probes per second. Zero disables
	// throttling.
	ProbeRateLimit float64 `yaml:"probe_rate_limit"`

	// InsecureSkipVerify disables TLS verification on probe requests.
	// Scan targets frequently run self-signed staging certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// OTLPEndpoint enables trace export when set, e.g. "localhost:4317".
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// OTLPInsecure skips TLS on the collector connection.
	OTLPInsecure bool `yaml:"otlp_insecure"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// BootstrapUser seeds an initial account on first start when both
	// fields are set.
	BootstrapUser     string `yaml:"bootstrap_user"`
	BootstrapPassword string `yaml:"bootstrap_password"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		DBPath:       "scandeck.db",
		ProbeTimeout: Duration(duration.HTTPProbing),
		LogLevel:     "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// -config (if any), then the remaining flags. Call once from main.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("scandeck", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML configuration file")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.Var(&cfg.ProbeTimeout, "probe-timeout", "Timeout per outbound probe request")
	fs.Float64Var(&cfg.ProbeRateLimit, "probe-rate", cfg.ProbeRateLimit, "Max outbound probes per second (0 = unlimited)")
	fs.BoolVar(&cfg.InsecureSkipVerify, "insecure", cfg.InsecureSkipVerify, "Skip TLS verification on probes")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC collector endpoint (empty = tracing off)")
	fs.BoolVar(&cfg.OTLPInsecure, "otlp-insecure", cfg.OTLPInsecure, "Use an insecure collector connection")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.BootstrapUser, "bootstrap-user", cfg.BootstrapUser, "Seed account username")
	fs.StringVar(&cfg.BootstrapPassword, "bootstrap-password", cfg.BootstrapPassword, "Seed account password")

	// First pass pulls out -config so file values sit under flag overrides.
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *configFile != "" {
		fileCfg := Default()
		if err := loadFile(*configFile, fileCfg); err != nil {
			return nil, err
		}
		*cfg = *fileCfg
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: database path is required")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("config: probe timeout must be positive")
	}
	if c.ProbeRateLimit < 0 {
		return fmt.Errorf("config: probe rate limit cannot be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}
