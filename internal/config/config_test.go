package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	cfg := New()
	cfg.Feeds.News.URL = "https://example.com/news.rss"
	cfg.Feeds.Rates.URL = "https://example.com/rates.xml"
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 1, cfg.Skill.PageSize)
	assert.Equal(t, BackendEnvelope, cfg.Session.Backend)
	assert.Equal(t, 10*time.Second, cfg.Feeds.News.Timeout)
	assert.True(t, cfg.Progressive.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  address: ":9090"
skill:
  id: "amzn1.ask.skill.test"
  page_size: 2
feeds:
  news:
    url: "https://example.com/news.rss"
  rates:
    url: "https://example.com/rates.json"
    format: json
    timeout: 3s
session:
  backend: redis
  ttl: 1h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "amzn1.ask.skill.test", cfg.Skill.ID)
	assert.Equal(t, 2, cfg.Skill.PageSize)
	assert.Equal(t, "json", cfg.Feeds.Rates.Format)
	assert.Equal(t, 3*time.Second, cfg.Feeds.Rates.Timeout)
	assert.Equal(t, "xml", cfg.Feeds.News.Format)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "meridian", cfg.Skill.Name)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NEWSWIZARD_FEEDS_NEWS_URL", "https://env.example.com/news")
	t.Setenv("NEWSWIZARD_SKILL_PAGE_SIZE", "3")
	t.Setenv("NEWSWIZARD_PROGRESSIVE_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/news", cfg.Feeds.News.URL)
	assert.Equal(t, 3, cfg.Skill.PageSize)
	assert.False(t, cfg.Progressive.Enabled)
}

func TestLoad_LegacyProperties(t *testing.T) {
	path := writeFile(t, "skill.properties", `
skill-id=amzn1.ask.skill.legacy
news-rss-feed-url=https://example.com/legacy-news.rss
rates-rss-feed-url=https://example.com/legacy-rates.xml
speech-welcome=Hello from meridian
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "amzn1.ask.skill.legacy", cfg.Skill.ID)
	assert.Equal(t, "https://example.com/legacy-news.rss", cfg.Feeds.News.URL)
	assert.Equal(t, "https://example.com/legacy-rates.xml", cfg.Feeds.Rates.URL)
	assert.Equal(t, "Hello from meridian", cfg.Speech.Welcome)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing news url", func(c *Config) { c.Feeds.News.URL = "" }, "feeds.news.url is not set"},
		{"bad rates url", func(c *Config) { c.Feeds.Rates.URL = "not a url" }, "invalid url in feeds.rates.url"},
		{"json news", func(c *Config) { c.Feeds.News.Format = "json" }, "unsupported feeds.news.format"},
		{"zero page size", func(c *Config) { c.Skill.PageSize = 0 }, "skill.page_size"},
		{"bad level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid logger.level"},
		{"bad format", func(c *Config) { c.Logger.Format = "xml" }, "invalid logger.format"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }, "unknown session.backend"},
		{"postgres without user", func(c *Config) { c.Session.Backend = BackendPostgres }, "database username is not set"},
		{"redis without address", func(c *Config) {
			c.Session.Backend = BackendRedis
			c.Redis.Address = ""
		}, "redis.address is not set"},
		{"progressive without timeout", func(c *Config) { c.Progressive.Timeout = 0 }, "progressive.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Username: "skill", Password: "p@ss", DBName: "wizard", SSLMode: "disable"}

	assert.Equal(t, "postgres://skill:p%40ss@db:5432/wizard?sslmode=disable", db.DSN())
}
