package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Crawl    CrawlConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type CrawlConfig struct {
	BaseURL      string
	TargetURL    string
	MaxBooks     int
	ItemDelayMin time.Duration
	ItemDelayMax time.Duration
	PageDelayMin time.Duration
	PageDelayMax time.Duration
	Category     string
	Subcategory  string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	UserAgent      string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr         string
	Stream       string
	PollInterval time.Duration
	BatchSize    int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Crawl: CrawlConfig{
			BaseURL:      getEnvOrDefault("WOB_BASE_URL", "https://www.worldofbooks.com"),
			TargetURL:    getEnvOrDefault("WOB_TARGET_URL", "https://www.worldofbooks.com/en-ie/collections/rare-non-fiction-books"),
			MaxBooks:     getIntOrDefault("CRAWL_MAX_BOOKS", 50),
			ItemDelayMin: getDurationOrDefault("CRAWL_ITEM_DELAY_MIN", 2*time.Second),
			ItemDelayMax: getDurationOrDefault("CRAWL_ITEM_DELAY_MAX", 5*time.Second),
			PageDelayMin: getDurationOrDefault("CRAWL_PAGE_DELAY_MIN", 5*time.Second),
			PageDelayMax: getDurationOrDefault("CRAWL_PAGE_DELAY_MAX", 8*time.Second),
			Category:     getEnvOrDefault("CRAWL_CATEGORY", "Rare Non-Fiction"),
			Subcategory:  getEnvOrDefault("CRAWL_SUBCATEGORY", ""),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-IE,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Europe/Dublin"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-IE"),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", defaultUserAgent),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "evolabz"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:         getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Stream:       getEnvOrDefault("REDIS_STREAM", "stream:book_catalog"),
			PollInterval: getDurationOrDefault("RELAY_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getIntOrDefault("RELAY_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawl.TargetURL == "" {
		return fmt.Errorf("WOB_TARGET_URL must not be empty")
	}

	if c.Crawl.MaxBooks < 1 {
		return fmt.Errorf("CRAWL_MAX_BOOKS must be at least 1")
	}

	if c.Crawl.ItemDelayMin > c.Crawl.ItemDelayMax {
		return fmt.Errorf("CRAWL_ITEM_DELAY_MIN cannot be greater than CRAWL_ITEM_DELAY_MAX")
	}

	if c.Crawl.PageDelayMin > c.Crawl.PageDelayMax {
		return fmt.Errorf("CRAWL_PAGE_DELAY_MIN cannot be greater than CRAWL_PAGE_DELAY_MAX")
	}

	if c.Redis.BatchSize < 1 {
		return fmt.Errorf("RELAY_BATCH_SIZE must be at least 1")
	}

	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
