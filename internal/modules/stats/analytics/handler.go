package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/response"
)

type batchRequest struct {
	Events []models.AnalyticsEvent `json:"events"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the collector. Reads need authMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/analytics")
	g.POST("", h.collect)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/summary", h.summary)
}

// collect POST /analytics
func (h *Handler) collect(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "malformed analytics payload")
		return
	}

	receipt, err := h.svc.Record(c.Request.Context(), req.Events)
	var invalid *InvalidEventError
	switch {
	case err == nil:
	case errors.Is(err, ErrBatchTooLarge):
		response.TooManyRequests(c, err.Error())
		return
	case errors.Is(err, ErrEmptyBatch), errors.As(err, &invalid):
		response.BadRequest(c, err.Error())
		return
	default:
		response.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": 1, "received": receipt.Received, "batch": receipt.BatchID})
}

// list GET /analytics
func (h *Handler) list(c *gin.Context) {
	f := Filter{Type: models.EventType(c.Query("type")), Slug: c.Query("slug")}
	if f.Type != "" && !f.Type.Valid() {
		response.BadRequest(c, "unknown event type")
		return
	}
	events, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, events)
}

// summary GET /analytics/summary
func (h *Handler) summary(c *gin.Context) {
	sum, err := h.svc.Summarize(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  sum,
		"topPages": sum.TopPages(10),
	})
}
