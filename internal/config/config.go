package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres PostgresConfig `yaml:"postgres"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Poll     PollConfig     `yaml:"poll"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

type HTTPConfig struct {
	Port int `yaml:"port" env-default:"8080"`
}

type PostgresConfig struct {
	Port    string `yaml:"port" validate:"required"`
	Host    string `yaml:"host" validate:"required"`
	DbName  string `yaml:"db_name" validate:"required"`
	User    string `yaml:"user" validate:"required"`
	Pwd     string `yaml:"password" env:"POSTGRES_PASSWORD"`
	SslMode string `yaml:"sslmode" env-default:"disable"`
}

type ScrapeConfig struct {
	URL       string `yaml:"url" validate:"required,url"`
	UserAgent string `yaml:"user_agent" validate:"required"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval" env-default:"1m"`
}

type DispatchConfig struct {
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	SendTimeout time.Duration `yaml:"send_timeout" env-default:"10s"`
	BaseBackoff time.Duration `yaml:"base_backoff" env-default:"500ms"`
	Workers     int           `yaml:"workers" env-default:"4" validate:"min=1"`
	QueueSize   int           `yaml:"queue_size" env-default:"256" validate:"min=1"`
	FCM         FCMConfig     `yaml:"fcm"`
	WebPush     WebPushConfig `yaml:"webpush"`
}

type FCMConfig struct {
	ServerKey  string  `yaml:"server_key" env:"FCM_SERVER_KEY"`
	RatePerSec float64 `yaml:"rate_per_sec" env-default:"10"`
	Burst      int     `yaml:"burst" env-default:"10"`
}

type WebPushConfig struct {
	VAPIDPublicKey  string  `yaml:"vapid_public_key" env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string  `yaml:"vapid_private_key" env:"VAPID_PRIVATE_KEY"`
	Subscriber      string  `yaml:"subscriber"`
	RatePerSec      float64 `yaml:"rate_per_sec" env-default:"10"`
	Burst           int     `yaml:"burst" env-default:"10"`
}

type DedupConfig struct {
	TTL  time.Duration `yaml:"ttl" env-default:"10m"`
	Size int           `yaml:"size" env-default:"4096" validate:"min=1"`
}

type SentryConfig struct {
	DSN string `yaml:"dsn" env:"SENTRY_DSN"`
}

func InitConfig() (Config, error) {
	configPath := getConfigPath()

	if configPath == "" {
		return Config{}, fmt.Errorf("config path is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func getConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	return path
}
