package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"AnimeNewsBot/internal/domain"
)

const (
	defaultTimezone = "UTC"

	configPathEnv     = "ANIMENEWSBOT_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds all settings required across the application.
type Config struct {
	Site          SiteConfig         `yaml:"site"`
	HTTP          HTTPConfig         `yaml:"http"`
	Store         StoreConfig        `yaml:"store"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// SiteConfig describes the news site and which scanner strategy reads it.
type SiteConfig struct {
	Name     string         `yaml:"name"`
	Scanner  string         `yaml:"scanner"`
	URL      string         `yaml:"url"`
	FeedURL  string         `yaml:"feedUrl"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the site timezone string to a time.Location. The
// "today" boundary of the pipeline is computed in this location.
func (s SiteConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// HTTPConfig groups outbound HTTP hardening knobs.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	RetryAttempts  int `yaml:"retryAttempts"`
}

// Timeout returns the configured per-request timeout.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// StoreConfig selects the seen-store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // file or postgres
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Decorate bool   `yaml:"decorate"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration from path (or the ANIMENEWSBOT_CONFIG env
// var when path is empty) over built-in defaults, then applies environment
// overrides for secrets. An explicitly named file that cannot be read or
// parsed is a fatal configuration error.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(configPathEnv)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err != nil && explicit:
			return Config{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfig, path, err)
		case err != nil:
			// env-pointed file missing, run on defaults
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("%w: parse %s: %v", domain.ErrConfig, path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks fields the pipeline cannot run without. Telegram
// credentials are only required when the run actually publishes.
func (c Config) Validate(requireTelegram bool) error {
	if c.Site.URL == "" && c.Site.FeedURL == "" {
		return fmt.Errorf("%w: site url is not set", domain.ErrConfig)
	}
	switch c.Site.Scanner {
	case "ann", "rss":
	default:
		return fmt.Errorf("%w: unknown scanner %q", domain.ErrConfig, c.Site.Scanner)
	}
	switch c.Store.Backend {
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store path is not set", domain.ErrConfig)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store dsn is not set", domain.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", domain.ErrConfig, c.Store.Backend)
	}
	if requireTelegram {
		if c.Notifications.Telegram.BotToken == "" || c.Notifications.Telegram.ChatID == "" {
			return fmt.Errorf("%w: telegram bot token and chat id are required", domain.ErrConfig)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Store.DSN = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Site.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("%w: unknown timezone %q", domain.ErrConfig, tz)
	}
	c.Site.location = loc
	return nil
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Site: SiteConfig{
			Name:     "animenewsnetwork",
			Scanner:  "ann",
			URL:      "https://www.animenewsnetwork.com/news/",
			FeedURL:  "https://www.animenewsnetwork.com/news/rss.xml",
			Timezone: defaultTimezone,
			location: tz,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 10,
			RetryAttempts:  3,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    "posted_news.json",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{Decorate: true},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
