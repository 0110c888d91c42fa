package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "macrocycle/internal/errors"
	"macrocycle/internal/quarter"
)

const (
	// EnvPrefix namespaces every environment variable, e.g. MACRO_ANALYSIS_BASE_QUARTER.
	EnvPrefix = "MACRO"
	// ConfigFileEnv names the variable holding the YAML config path.
	ConfigFileEnv = "MACRO_CONFIG_FILE"
	// DefaultConfigFile is read when present and no other path is given.
	DefaultConfigFile = "macrocycle.yaml"
	// DotEnvFile is loaded into the process environment when present.
	DotEnvFile = ".env"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// AnalysisConfig holds the tunables of a business-cycle run.
// The HP smoothing parameter is fixed at the quarterly convention and is not configurable.
type AnalysisConfig struct {
	BaseQuarter      string  `yaml:"base_quarter" envconfig:"BASE_QUARTER" validate:"required"`
	Verbose          bool    `yaml:"verbose" envconfig:"VERBOSE"`
	ProminenceFactor float64 `yaml:"prominence_factor" envconfig:"PROMINENCE_FACTOR" validate:"gt=0"`
	ShockMultiplier  float64 `yaml:"shock_multiplier" envconfig:"SHOCK_MULTIPLIER" validate:"gt=0"`
	SmoothingMethod  string  `yaml:"smoothing_method" envconfig:"SMOOTHING_METHOD" validate:"oneof=auto savgol moving_average"`
	SmoothingWindow  int     `yaml:"smoothing_window" envconfig:"SMOOTHING_WINDOW" validate:"gte=1"`
	SmoothingOrder   int     `yaml:"smoothing_order" envconfig:"SMOOTHING_ORDER" validate:"gte=0"`
}

// InputConfig names the source tables
type InputConfig struct {
	QuarterlyFile string `yaml:"quarterly_file" envconfig:"QUARTERLY_FILE"`
	AnnualFile    string `yaml:"annual_file" envconfig:"ANNUAL_FILE"`
	Sheet         string `yaml:"sheet" envconfig:"SHEET"`
}

// OutputConfig controls where and how results are exported
type OutputConfig struct {
	Dir         string   `yaml:"dir" envconfig:"DIR" validate:"required"`
	Formats     []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=csv xlsx"`
	MetricsFile string   `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
}

// TelemetryConfig selects the tracing exporter and names the service.
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			BaseQuarter:      "1990 1Q",
			ProminenceFactor: 0.8,
			ShockMultiplier:  2.0,
			SmoothingMethod:  "auto",
			SmoothingWindow:  5,
			SmoothingOrder:   2,
		},
		Output: OutputConfig{
			Dir:     "output",
			Formats: []string{"csv", "xlsx"},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/macrocycle.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  16 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     5,
				Burst:   10,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "macrocycle",
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file, then the
// environment (highest priority). A .env file in the working directory is
// loaded into the environment first without overriding variables already set.
//
// path selects the YAML file explicitly; when empty, MACRO_CONFIG_FILE and then
// macrocycle.yaml are tried, and a missing default file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()

	file, explicit := resolveConfigFile(path)
	if file != "" {
		if err := cfg.mergeFile(file); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, &apperrors.ConfigurationError{Field: "environment", Message: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigFile(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv(ConfigFileEnv); env != "" {
		return env, true
	}
	return DefaultConfigFile, false
}

// mergeFile overlays the keys present in a YAML file onto c.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &apperrors.ConfigurationError{Field: "config file", Value: path, Message: err.Error()}
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and that the base quarter parses.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &apperrors.ConfigurationError{
				Field:   fe.Namespace(),
				Value:   fmt.Sprint(fe.Value()),
				Message: describe(fe),
			}
		}
		return &apperrors.ConfigurationError{Field: "config", Message: err.Error()}
	}

	if _, ok := quarter.Parse(c.Analysis.BaseQuarter, quarter.DefaultPatterns()); !ok {
		return &apperrors.ConfigurationError{
			Field:   "Config.Analysis.BaseQuarter",
			Value:   c.Analysis.BaseQuarter,
			Message: `not a recognised quarter label (expected e.g. "1990 1Q" or "1990Q1")`,
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// LogLevel is the effective log level; verbose analysis output raises it to debug.
func (c *Config) LogLevel() string {
	if c.Analysis.Verbose {
		return "debug"
	}
	return strings.ToLower(c.Logging.Level)
}

// Usage writes the environment variables understood by Load.
func Usage(w io.Writer) error {
	return envconfig.Usagef(EnvPrefix, &Config{}, w, envconfig.DefaultTableFormat)
}
