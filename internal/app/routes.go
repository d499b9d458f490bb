package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mx-space/folio/internal/middleware"
	"github.com/mx-space/folio/internal/modules/bookmark"
	"github.com/mx-space/folio/internal/modules/content/post"
	"github.com/mx-space/folio/internal/modules/crontask"
	"github.com/mx-space/folio/internal/modules/project"
	"github.com/mx-space/folio/internal/modules/stats/analytics"
	"github.com/mx-space/folio/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.Auth(a.issuer)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(a.issuer))
	api.Use(middleware.RateLimit(a.redisRaw(), int64(a.cfg.RateLimit.Max), a.logger))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":     1,
			"redis":  a.redis != nil,
			"uptime": humanizeDuration(time.Since(processStart)),
		})
	})

	post.NewHandler(a.posts).RegisterRoutes(api)

	metrics := analytics.NewMetrics(a.registry)
	analyticsSvc := analytics.NewService(a.eventStore(), a.cfg.Analytics.MaxBatch, metrics, a.logger)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(api, authMW)

	bookmark.NewHandler(bookmark.NewService(a.bookmarkStore())).RegisterRoutes(api)
	project.NewHandler(project.NewService(a.cfg.ProjectsFile)).RegisterRoutes(api, authMW)
	crontask.NewHandler(a.cron).RegisterRoutes(api, authMW)
}
