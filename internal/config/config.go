package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix - префикс переменных окружения, переопределяющих конфигурацию.
const EnvPrefix = "NEWSWIZARD"

// Config представляет основную конфигурацию навыка.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Skill       SkillConfig       `mapstructure:"skill"`
	Feeds       FeedsConfig       `mapstructure:"feeds"`
	Session     SessionConfig     `mapstructure:"session"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	Progressive ProgressiveConfig `mapstructure:"progressive"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggerConfig определяет уровень, формат и файлы журналов.
// Пустые File и ErrorFile означают stdout и stderr.
type LoggerConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	File      string `mapstructure:"file"`
	ErrorFile string `mapstructure:"error_file"`
}

// SkillConfig описывает сам навык. Если ID задан, запросы других приложений отклоняются.
type SkillConfig struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	PageSize int    `mapstructure:"page_size"`
}

type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Format  string        `mapstructure:"format"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FeedsConfig struct {
	News              FeedConfig `mapstructure:"news"`
	Rates             FeedConfig `mapstructure:"rates"`
	RequestsPerSecond float64    `mapstructure:"requests_per_second"`
}

// SessionConfig выбирает хранилище состояния разговора.
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SpeechConfig переопределяет общие фразы навыка. Пустое значение оставляет фразу по умолчанию.
type SpeechConfig struct {
	Welcome  string `mapstructure:"welcome"`
	Help     string `mapstructure:"help"`
	Goodbye  string `mapstructure:"goodbye"`
	Sorry    string `mapstructure:"sorry"`
	Reprompt string `mapstructure:"reprompt"`
	About    string `mapstructure:"about"`
}

type ProgressiveConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Поддерживаемые хранилища разговоров.
const (
	BackendEnvelope = "envelope"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DSN возвращает строку подключения к PostgreSQL в формате URI.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// legacyKeys сопоставляет ключи старого properties-файла навыка новым ключам.
var legacyKeys = map[string]string{
	"skill-id":           "skill.id",
	"news-rss-feed-url":  "feeds.news.url",
	"rates-rss-feed-url": "feeds.rates.url",
	"speech-welcome":     "speech.welcome",
	"speech-help":        "speech.help",
	"speech-goodbye":     "speech.goodbye",
	"speech-sorry":       "speech.sorry",
	"speech-reprompt":    "speech.reprompt",
}

// Load собирает конфигурацию из значений по умолчанию, необязательного файла
// (yaml, json или properties по расширению), файла .env и переменных окружения NEWSWIZARD_*.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v, New())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		applyLegacyKeys(v)
	}

	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
		Skill: SkillConfig{
			Name:     "meridian",
			PageSize: 1,
		},
		Feeds: FeedsConfig{
			News:              FeedConfig{Format: "xml", Timeout: 10 * time.Second},
			Rates:             FeedConfig{Format: "xml", Timeout: 10 * time.Second},
			RequestsPerSecond: 5,
		},
		Session: SessionConfig{
			Backend:       BackendEnvelope,
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Progressive: ProgressiveConfig{
			Enabled: true,
			Timeout: 2 * time.Second,
		},
	}
}

// setDefaults регистрирует все ключи, чтобы переменные окружения
// переопределяли их даже без файла конфигурации.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.address", c.Server.Address)

	v.SetDefault("logger.level", c.Logger.Level)
	v.SetDefault("logger.format", c.Logger.Format)
	v.SetDefault("logger.file", c.Logger.File)
	v.SetDefault("logger.error_file", c.Logger.ErrorFile)

	v.SetDefault("skill.id", c.Skill.ID)
	v.SetDefault("skill.name", c.Skill.Name)
	v.SetDefault("skill.page_size", c.Skill.PageSize)

	v.SetDefault("feeds.news.url", c.Feeds.News.URL)
	v.SetDefault("feeds.news.format", c.Feeds.News.Format)
	v.SetDefault("feeds.news.timeout", c.Feeds.News.Timeout)
	v.SetDefault("feeds.rates.url", c.Feeds.Rates.URL)
	v.SetDefault("feeds.rates.format", c.Feeds.Rates.Format)
	v.SetDefault("feeds.rates.timeout", c.Feeds.Rates.Timeout)
	v.SetDefault("feeds.requests_per_second", c.Feeds.RequestsPerSecond)

	v.SetDefault("session.backend", c.Session.Backend)
	v.SetDefault("session.ttl", c.Session.TTL)
	v.SetDefault("session.sweep_interval", c.Session.SweepInterval)

	v.SetDefault("redis.address", c.Redis.Address)
	v.SetDefault("redis.password", c.Redis.Password)
	v.SetDefault("redis.db", c.Redis.DB)

	v.SetDefault("database.host", c.Database.Host)
	v.SetDefault("database.port", c.Database.Port)
	v.SetDefault("database.username", c.Database.Username)
	v.SetDefault("database.password", c.Database.Password)
	v.SetDefault("database.dbname", c.Database.DBName)
	v.SetDefault("database.sslmode", c.Database.SSLMode)

	v.SetDefault("speech.welcome", c.Speech.Welcome)
	v.SetDefault("speech.help", c.Speech.Help)
	v.SetDefault("speech.goodbye", c.Speech.Goodbye)
	v.SetDefault("speech.sorry", c.Speech.Sorry)
	v.SetDefault("speech.reprompt", c.Speech.Reprompt)
	v.SetDefault("speech.about", c.Speech.About)

	v.SetDefault("progressive.enabled", c.Progressive.Enabled)
	v.SetDefault("progressive.timeout", c.Progressive.Timeout)
}

func applyLegacyKeys(v *viper.Viper) {
	for legacy, key := range legacyKeys {
		if v.InConfig(legacy) && !v.InConfig(key) {
			v.Set(key, v.GetString(legacy))
		}
	}
}

// Validate проверяет корректность конфигурации и возвращает первую найденную проблему.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is not set")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid logger.level: %q", c.Logger.Level)
	}
	if c.Logger.Format != "text" && c.Logger.Format != "json" {
		return fmt.Errorf("invalid logger.format: %q", c.Logger.Format)
	}
	if c.Skill.PageSize <= 0 {
		return fmt.Errorf("skill.page_size must be a positive number")
	}
	if err := validateFeed("feeds.news", c.Feeds.News, "xml"); err != nil {
		return err
	}
	if err := validateFeed("feeds.rates", c.Feeds.Rates, "xml", "json"); err != nil {
		return err
	}
	if c.Feeds.RequestsPerSecond < 0 {
		return fmt.Errorf("feeds.requests_per_second must not be negative")
	}

	switch c.Session.Backend {
	case BackendEnvelope:
	case BackendMemory:
		if c.Session.SweepInterval <= 0 {
			return fmt.Errorf("session.sweep_interval must be positive for the %s backend", c.Session.Backend)
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is not set")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is not set")
		}
		if c.Database.Username == "" {
			return fmt.Errorf("database username is not set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database dbname is not set")
		}
		if c.Session.SweepInterval <= 0 {
			return fmt.Errorf("session.sweep_interval must be positive for the %s backend", c.Session.Backend)
		}
	default:
		return fmt.Errorf("unknown session.backend: %q", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	if c.Progressive.Enabled && c.Progressive.Timeout <= 0 {
		return fmt.Errorf("progressive.timeout must be positive")
	}
	return nil
}

func validateFeed(name string, f FeedConfig, formats ...string) error {
	if f.URL == "" {
		return fmt.Errorf("%s.url is not set", name)
	}
	if _, err := url.ParseRequestURI(f.URL); err != nil {
		return fmt.Errorf("invalid url in %s.url: %s", name, f.URL)
	}
	if !slices.Contains(formats, f.Format) {
		return fmt.Errorf("unsupported %s.format: %q", name, f.Format)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be positive", name)
	}
	return nil
}
