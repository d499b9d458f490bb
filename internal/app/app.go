package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/config"
	"github.com/mx-space/folio/internal/middleware"
	"github.com/mx-space/folio/internal/modules/content/post"
	"github.com/mx-space/folio/internal/modules/stats/analytics"
	pkgcron "github.com/mx-space/folio/internal/pkg/cron"
	"github.com/mx-space/folio/internal/pkg/jwt"
	"github.com/mx-space/folio/internal/pkg/kv"
	pkgredis "github.com/mx-space/folio/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	logger   *zap.Logger
	redis    *pkgredis.Client
	registry *prometheus.Registry
	issuer   *jwt.Issuer
	posts    *post.Repository
	cron     *pkgcron.Scheduler
	cancel   context.CancelFunc
}

// New initializes the application: config → Redis → stores → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		var err error
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}
	return build(logger, cfg, rc)
}

// build wires the router around an optional redis client.
func build(logger *zap.Logger, cfg *config.AppConfig, rc *pkgredis.Client) (*App, error) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	if cfg.JWTSecret == "" {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		router:   router,
		logger:   logger,
		redis:    rc,
		registry: registry,
		issuer:   jwt.NewIssuer(cfg.JWTSecret),
		posts:    post.NewRepository(post.NewLoader(logger, cfg.Content.Extensions...), cfg.Content.Dir, logger),
		cron:     pkgcron.New(logger),
		cancel:   cancel,
	}

	if cfg.Content.Watch {
		if err := a.posts.Watch(ctx); err != nil {
			cancel()
			return nil, fmt.Errorf("watch content: %w", err)
		}
	}

	a.registerJobs()
	a.cron.Start(ctx)

	a.registerRoutes()
	return a, nil
}

const jobContentRescan = "content:rescan"

func (a *App) registerJobs() {
	a.cron.Register(pkgcron.Job{
		Name:        jobContentRescan,
		Description: "Drop the post cache and reload the content directory",
		Interval:    a.cfg.Content.RescanInterval,
		Fn: func(context.Context) error {
			a.posts.Invalidate()
			posts, err := a.posts.All()
			if err != nil {
				return err
			}
			a.logger.Info("content rescanned", zap.Int("posts", len(posts)), zap.String("dir", a.posts.Dir()))
			return nil
		},
	})
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		c.AllowOriginFunc = func(origin string) bool { return originAllowed(patterns, origin) }
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

func (a *App) redisRaw() *redis.Client {
	if a.redis == nil {
		return nil
	}
	return a.redis.Raw()
}

func (a *App) eventStore() analytics.EventStore {
	if a.cfg.Analytics.Store == config.StoreRedis && a.redis != nil {
		return analytics.NewRedisStore(a.redis.Raw(), a.cfg.Analytics.Retain)
	}
	return analytics.NewMemoryStore(a.cfg.Analytics.Retain)
}

func (a *App) bookmarkStore() kv.Store {
	switch a.cfg.Bookmarks.Store {
	case config.StoreRedis:
		if a.redis != nil {
			return kv.NewRedis(a.redis)
		}
	case config.StoreFile:
		return kv.NewFile(a.cfg.Bookmarks.File)
	}
	return kv.NewMemory()
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Issuer returns the admin token issuer.
func (a *App) Issuer() *jwt.Issuer { return a.issuer }

// Shutdown stops background goroutines and closes Redis.
func (a *App) Shutdown() {
	a.cancel()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
}

var processStart = time.Now()
