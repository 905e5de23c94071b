package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
	Issuer      string `mapstructure:"issuer"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	BaseURL   string `mapstructure:"base_url"`
}

type UploadConfig struct {
	MaxSizeBytes int64    `mapstructure:"max_size_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	ResetURL string `mapstructure:"reset_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Log       LogConfig       `mapstructure:"log"`
}

// secrets are environment-only; they override anything the YAML carries so
// credentials never need to live in the config file.
type secrets struct {
	JWTSecret        string `envconfig:"JWT_SECRET"`
	DBPassword       string `envconfig:"DB_PASSWORD"`
	RedisURL         string `envconfig:"REDIS_URL"`
	StorageAccessKey string `envconfig:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `envconfig:"STORAGE_SECRET_KEY"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
}

// Load reads config.yaml (working dir or ./config) and applies env overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("", &sec); err != nil {
		return nil, fmt.Errorf("failed to read secret env vars: %w", err)
	}
	if sec.JWTSecret != "" {
		cfg.JWT.Secret = sec.JWTSecret
	}
	if sec.DBPassword != "" {
		cfg.Database.Password = sec.DBPassword
	}
	if sec.RedisURL != "" {
		cfg.Redis.URL = sec.RedisURL
	}
	if sec.StorageAccessKey != "" {
		cfg.Storage.AccessKey = sec.StorageAccessKey
	}
	if sec.StorageSecretKey != "" {
		cfg.Storage.SecretKey = sec.StorageSecretKey
	}
	if sec.SMTPPassword != "" {
		cfg.SMTP.Password = sec.SMTPPassword
	}

	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 24
	}
	if c.Upload.MaxSizeBytes == 0 {
		c.Upload.MaxSizeBytes = 10 << 20
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"image/jpeg", "image/png"}
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 50
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
