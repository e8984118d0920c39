package config

import (
	"os"

	"codeberg.org/mutker/benchval/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel   = "info"
	DefaultOutputDir  = "processed"
	DefaultTopN       = 5
	DefaultMinSamples = 1000
	DefaultTolerance  = "strict"
	DefaultArchiveDB  = "benchval.db"

	configEnvVar = "BENCHVAL_CONFIG"
)

type Config struct {
	Input      string `mapstructure:"input"`
	OutputDir  string `mapstructure:"output_dir"`
	TopN       int    `mapstructure:"top_n"`
	MinSamples int    `mapstructure:"min_samples"`
	Archive    bool   `mapstructure:"archive"`
	ArchiveDB  string `mapstructure:"archive_db"`
	Tolerance  string `mapstructure:"tolerance"`
	LogLevel   string `mapstructure:"log_level"`
	Debug      bool   `mapstructure:"debug"`
	Verbose    bool   `mapstructure:"verbose"`

	// FailOnVerdict makes a FAILED overall assessment exit non-zero
	FailOnVerdict bool `mapstructure:"fail_on_verdict"`

	// Optional tolerance overrides; zero means "use the preset value"
	EfficiencyAbsFloor float64 `mapstructure:"efficiency_abs_floor"`
	EfficiencyRelTol   float64 `mapstructure:"efficiency_rel_tol"`
	ThroughputRelTol   float64 `mapstructure:"throughput_rel_tol"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("top_n", DefaultTopN)
	v.SetDefault("min_samples", DefaultMinSamples)
	v.SetDefault("tolerance", DefaultTolerance)
	v.SetDefault("archive_db", DefaultArchiveDB)
	v.SetDefault("log_level", DefaultLogLevel)

	// A fresh flag set per call so repeated loads (tests) do not collide
	fs := pflag.NewFlagSet("benchval", pflag.ContinueOnError)
	fs.String("input", "", "Path to the benchmark results JSON file")
	fs.String("output-dir", DefaultOutputDir, "Directory for processed output files")
	fs.Int("top-n", DefaultTopN, "Number of top configurations to report")
	fs.Int("min-samples", DefaultMinSamples, "Minimum retained samples for a PASSED verdict")
	fs.Bool("archive", false, "Persist retained measurements to a SQLite archive")
	fs.String("archive-db", DefaultArchiveDB, "Path to the SQLite archive database")
	fs.String("tolerance", DefaultTolerance, "Consistency tolerance regime (strict or loose)")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Bool("fail-on-verdict", false, "Exit non-zero when the overall assessment is FAILED")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"input":           "input",
		"output_dir":      "output-dir",
		"top_n":           "top-n",
		"min_samples":     "min-samples",
		"archive":         "archive",
		"archive_db":      "archive-db",
		"tolerance":       "tolerance",
		"log_level":       "log-level",
		"debug":           "debug",
		"verbose":         "verbose",
		"fail_on_verdict": "fail-on-verdict",
	}
	for key, flagName := range bindings {
		if flag := fs.Lookup(flagName); flag != nil && flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}

	if configPath := os.Getenv(configEnvVar); configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	switch c.Tolerance {
	case "strict", "loose":
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, "tolerance must be strict or loose")
	}

	if c.TopN <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "top_n must be positive")
	}

	if c.MinSamples < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "min_samples must not be negative")
	}

	return nil
}
