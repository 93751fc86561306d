package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
		CorsOrigins  []string      `mapstructure:"CORS_ORIGINS"`
	} `mapstructure:"HTTP_SERVER"`
	Redis struct {
		Addr         string        `mapstructure:"ADDR"`
		Password     string        `mapstructure:"PASSWORD"`
		DB           int           `mapstructure:"DB"`
		PoolSize     int           `mapstructure:"POOL_SIZE"`
		PoolTimeout  time.Duration `mapstructure:"POOL_TIMEOUT"`
		DialTimeout  time.Duration `mapstructure:"DIAL_TIMEOUT"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Flagsmith struct {
		Addr     string        `mapstructure:"ADDR"`
		ApiKey   string        `mapstructure:"API_KEY"`
		CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
	} `mapstructure:"FLAGSMITH"`
	Tracking struct {
		HousekeepingSpec string `mapstructure:"HOUSEKEEPING_SPEC"`
		FuzzyFlag        string `mapstructure:"FUZZY_FLAG"`
	} `mapstructure:"TRACKING"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

var defaults = map[string]any{
	"APP_ENV":                    "development",
	"APP_NAME":                   "attribution",
	"APP_VERSION":                "dev",
	"TLS.ENABLE":                 false,
	"TLS.CERT_PATH":              "",
	"TLS.KEY_PATH":               "",
	"OTEL.ADDR":                  "",
	"PYROSCOPE.ADDR":             "",
	"HTTP_SERVER.ADDR":           ":8080",
	"HTTP_SERVER.READ_TIMEOUT":   15 * time.Second,
	"HTTP_SERVER.WRITE_TIMEOUT":  15 * time.Second,
	"HTTP_SERVER.IDLE_TIMEOUT":   60 * time.Second,
	"HTTP_SERVER.CORS_ORIGINS":   []string{"*"},
	"REDIS.ADDR":                 "127.0.0.1:6379",
	"REDIS.PASSWORD":             "",
	"REDIS.DB":                   0,
	"REDIS.POOL_SIZE":            20,
	"REDIS.POOL_TIMEOUT":         4 * time.Second,
	"REDIS.DIAL_TIMEOUT":         5 * time.Second,
	"REDIS.READ_TIMEOUT":         3 * time.Second,
	"REDIS.WRITE_TIMEOUT":        3 * time.Second,
	"FLAGSMITH.ADDR":             "",
	"FLAGSMITH.API_KEY":          "",
	"FLAGSMITH.CACHE_TTL":        30 * time.Second,
	"TRACKING.HOUSEKEEPING_SPEC": "@every 1h",
	"TRACKING.FUZZY_FLAG":        "tracking_fuzzy_match",
}

// LoadConfig reads config.yaml from the working directory when present and
// lets environment variables override any key (REDIS.ADDR -> REDIS_ADDR).
func LoadConfig() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TLS.Enable && (cfg.TLS.CertPath == "" || cfg.TLS.KeyPath == "") {
		return nil, errors.New("tls enabled but TLS.CERT_PATH or TLS.KEY_PATH not provided")
	}

	return &cfg, nil
}
