package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Instagram struct {
		SessionID string `env:"INSTAGRAM_SESSION_ID"`
		UserAgent string `env:"INSTAGRAM_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"`
		PageSize  int    `env:"INSTAGRAM_PAGE_SIZE" env-default:"50"`
	}
	Scraper struct {
		SyncInterval time.Duration `env:"SCRAPER_SYNC_INTERVAL" env-default:"30m"`
		RunTimeout   time.Duration `env:"SCRAPER_RUN_TIMEOUT" env-default:"30m"`
		PageDelay    time.Duration `env:"SCRAPER_PAGE_DELAY" env-default:"2s"`
	}
	Downloader struct {
		MediaRoot       string        `env:"DOWNLOADER_MEDIA_ROOT" env-default:"media"`
		Workers         int           `env:"DOWNLOADER_WORKERS" env-default:"4"`
		MaxAttempts     int           `env:"DOWNLOADER_MAX_ATTEMPTS" env-default:"4"`
		ConnectTimeout  time.Duration `env:"DOWNLOADER_CONNECT_TIMEOUT" env-default:"10s"`
		ReadTimeout     time.Duration `env:"DOWNLOADER_READ_TIMEOUT" env-default:"60s"`
		InitialInterval time.Duration `env:"DOWNLOADER_RETRY_INITIAL_INTERVAL" env-default:"1s"`
		MaxInterval     time.Duration `env:"DOWNLOADER_RETRY_MAX_INTERVAL" env-default:"30s"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string in key/value form,
// suitable for database/sql with the pq driver.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}
