package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                    `yaml:"port"`
	Env            string                 `yaml:"env"` // "development" | "production"
	LogLevel       string                 `yaml:"log_level"`
	AllowedOrigins []string               `yaml:"allowed_origins"`
	JWTSecret      string                 `yaml:"jwt_secret"`
	ProjectsFile   string                 `yaml:"projects_file"`
	Content        ContentRuntimeConfig   `yaml:"content"`
	Analytics      AnalyticsRuntimeConfig `yaml:"analytics"`
	Bookmarks      BookmarksRuntimeConfig `yaml:"bookmarks"`
	Redis          RedisRuntimeConfig     `yaml:"redis"`
	RateLimit      RateLimitRuntimeConfig `yaml:"rate_limit"`
	RedisURL       string                 `yaml:"-"`
}

type ContentRuntimeConfig struct {
	Dir            string        `yaml:"dir"`
	Extensions     []string      `yaml:"extensions"`
	Watch          bool          `yaml:"watch"`
	RescanInterval time.Duration `yaml:"rescan_interval"` // 0 disables the periodic rescan job
}

type AnalyticsRuntimeConfig struct {
	MaxBatch int    `yaml:"max_batch"`
	Retain   int    `yaml:"retain"`
	Store    string `yaml:"store"`
}

type BookmarksRuntimeConfig struct {
	Store string `yaml:"store"`
	File  string `yaml:"file"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
	Scheme   string `yaml:"scheme"`
}

type RateLimitRuntimeConfig struct {
	Max int `yaml:"max"` // requests per second per IP, 0 disables
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	LogLevel       string             `yaml:"log_level"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	JWTSecret      string             `yaml:"jwt_secret"`
	ProjectsFile   string             `yaml:"projects_file"`
	Content        rawContentConfig   `yaml:"content"`
	Analytics      rawAnalyticsConfig `yaml:"analytics"`
	Bookmarks      rawBookmarksConfig `yaml:"bookmarks"`
	Redis          rawRedisConfig     `yaml:"redis"`
	RateLimit      rawRateLimitConfig `yaml:"rate_limit"`
}

type rawContentConfig struct {
	Dir            string         `yaml:"dir"`
	Extensions     []string       `yaml:"extensions"`
	Watch          *bool          `yaml:"watch"`
	RescanInterval *time.Duration `yaml:"rescan_interval"`
}

type rawAnalyticsConfig struct {
	MaxBatch int    `yaml:"max_batch"`
	Retain   int    `yaml:"retain"`
	Store    string `yaml:"store"`
}

type rawBookmarksConfig struct {
	Store string `yaml:"store"`
	File  string `yaml:"file"`
}

type rawRedisConfig struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
	Scheme   string `yaml:"scheme"`
}

type rawRateLimitConfig struct {
	Max *int `yaml:"max"`
}
