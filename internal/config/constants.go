package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort              = 2333
	defaultEnv               = "development"
	defaultLogLevel          = "info"
	defaultContentDir        = "content/posts"
	defaultAnalyticsMaxBatch = 20
	defaultAnalyticsRetain   = 1000
	defaultAnalyticsStore    = StoreMemory
	defaultBookmarksStore    = StoreMemory
	defaultBookmarksFile     = "data/bookmarks.json"
	defaultProjectsFile      = "data/projects.json"
	defaultRedisHost         = "localhost"
	defaultRedisPort         = 6379
	defaultRedisDB           = 0
	defaultRateLimitMax      = 50
)

// Store backends accepted by analytics.store and bookmarks.store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

var defaultContentExtensions = []string{".mdx", ".md"}
