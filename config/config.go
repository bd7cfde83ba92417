package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors config/config.yaml. Every key can be overridden from the
// environment with the TENNISELO_ prefix, e.g. TENNISELO_SERVER_PORT.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Ratings RatingsConfig `mapstructure:"ratings"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type RatingsConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	UserAgent  string        `mapstructure:"user_agent"`
	Circuits   CircuitURLs   `mapstructure:"circuits"`
}

type CircuitURLs struct {
	ATP string `mapstructure:"atp"`
	WTA string `mapstructure:"wta"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // json/text
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("ratings.timeout", 30*time.Second)
	v.SetDefault("ratings.retries", 1)
	v.SetDefault("ratings.retry_delay", time.Second)
	v.SetDefault("ratings.user_agent", "tennis-elo/1.0")
	v.SetDefault("ratings.circuits.atp", "https://tennisabstract.com/reports/atp_elo_ratings.html")
	v.SetDefault("ratings.circuits.wta", "https://tennisabstract.com/reports/wta_elo_ratings.html")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// LoadConfig reads the yaml file at path (optional when empty or missing),
// then applies .env and environment overrides.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TENNISELO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be greater than 0, got %d", c.Server.Port)
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return errors.New("server.read_header_timeout must be specified")
	}
	if c.Ratings.Retries < 0 {
		return fmt.Errorf("ratings.retries must not be negative, got %d", c.Ratings.Retries)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
