package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the YAML config at configPath. A missing file at the
// default path yields the built-in defaults so the CLI works in a bare checkout.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			cfg := defaultAppConfig()
			cfg.resolvePaths(".")
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg, err := Parse(content, path)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes config content. source is only used in error messages.
func Parse(content []byte, source string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", source, err)
		}
	}

	applyRawAppConfig(&cfg, raw)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", source, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port:         defaultPort,
		Env:          defaultEnv,
		LogLevel:     defaultLogLevel,
		ProjectsFile: defaultProjectsFile,
		Content: ContentRuntimeConfig{
			Dir:        defaultContentDir,
			Extensions: append([]string(nil), defaultContentExtensions...),
			Watch:      true,
		},
		Analytics: AnalyticsRuntimeConfig{
			MaxBatch: defaultAnalyticsMaxBatch,
			Retain:   defaultAnalyticsRetain,
			Store:    defaultAnalyticsStore,
		},
		Bookmarks: BookmarksRuntimeConfig{
			Store: defaultBookmarksStore,
			File:  defaultBookmarksFile,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		RateLimit: RateLimitRuntimeConfig{Max: defaultRateLimitMax},
	}
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.ProjectsFile); v != "" {
		cfg.ProjectsFile = v
	}

	if v := strings.TrimSpace(raw.Content.Dir); v != "" {
		cfg.Content.Dir = v
	}
	if raw.Content.Extensions != nil {
		cfg.Content.Extensions = raw.Content.Extensions
	}
	if raw.Content.Watch != nil {
		cfg.Content.Watch = *raw.Content.Watch
	}
	if raw.Content.RescanInterval != nil {
		cfg.Content.RescanInterval = *raw.Content.RescanInterval
	}

	if raw.Analytics.MaxBatch != 0 {
		cfg.Analytics.MaxBatch = raw.Analytics.MaxBatch
	}
	if raw.Analytics.Retain != 0 {
		cfg.Analytics.Retain = raw.Analytics.Retain
	}
	if v := strings.TrimSpace(raw.Analytics.Store); v != "" {
		cfg.Analytics.Store = v
	}
	if v := strings.TrimSpace(raw.Bookmarks.Store); v != "" {
		cfg.Bookmarks.Store = v
	}
	if v := strings.TrimSpace(raw.Bookmarks.File); v != "" {
		cfg.Bookmarks.File = v
	}

	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	if raw.RateLimit.Max != nil {
		cfg.RateLimit.Max = *raw.RateLimit.Max
	}

	cfg.Content = normalizeContentConfig(cfg.Content)
	cfg.Analytics.Store = normalizeStore(cfg.Analytics.Store)
	cfg.Bookmarks.Store = normalizeStore(cfg.Bookmarks.Store)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current

	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
		cfg.Enable = cfg.Enable || raw.Redis.Enable == nil
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	if v := strings.TrimSpace(raw.Redis.Scheme); v != "" {
		cfg.Scheme = v
	}
	return normalizeRedisConfig(cfg)
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("redis.port %d out of range 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Analytics.MaxBatch < 1 {
		return fmt.Errorf("analytics.max_batch %d, expected >= 1", c.Analytics.MaxBatch)
	}
	if c.Analytics.Retain < c.Analytics.MaxBatch {
		return fmt.Errorf("analytics.retain %d must be >= analytics.max_batch %d", c.Analytics.Retain, c.Analytics.MaxBatch)
	}
	if c.Content.RescanInterval < 0 {
		return fmt.Errorf("content.rescan_interval %s, expected >= 0", c.Content.RescanInterval)
	}
	if c.RateLimit.Max < 0 {
		return fmt.Errorf("rate_limit.max %d, expected >= 0", c.RateLimit.Max)
	}
	switch c.Analytics.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("analytics.store %q, expected memory|redis", c.Analytics.Store)
	}
	switch c.Bookmarks.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("bookmarks.store %q, expected memory|file|redis", c.Bookmarks.Store)
	}
	if !c.Redis.Enable && (c.Analytics.Store == StoreRedis || c.Bookmarks.Store == StoreRedis) {
		return errors.New("redis store selected but redis is not enabled")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q, expected debug|info|warn|error", c.LogLevel)
	}
	return nil
}

func (c *AppConfig) resolvePaths(base string) {
	c.Content.Dir = ResolveRuntimePath(base, c.Content.Dir, defaultContentDir)
	c.ProjectsFile = ResolveRuntimePath(base, c.ProjectsFile, defaultProjectsFile)
	c.Bookmarks.File = ResolveRuntimePath(base, c.Bookmarks.File, defaultBookmarksFile)
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
