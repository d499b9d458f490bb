package post

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/pagination"
	"github.com/mx-space/folio/internal/pkg/response"
)

const defaultRelatedLimit = 3

// Handler serves the post collection.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts post routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.GET("", h.list)
	posts.GET("/slugs", h.slugs)
	posts.GET("/:slug", h.get)
	posts.GET("/:slug/related", h.related)

	rg.GET("/categories", h.categories)
	rg.GET("/tags", h.tags)
}

// list GET /posts
func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
	}
	if raw, ok := c.GetQuery("featured"); ok {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "featured must be a boolean")
			return
		}
		f.Featured = &featured
	}

	posts, err := h.repo.List(f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	summaries := make([]models.PostSummary, len(posts))
	for i, p := range posts {
		summaries[i] = p.Summary()
	}
	page, pag := pagination.Slice(summaries, pagination.FromContext(c))
	response.Paged(c, page, pag)
}

// slugs GET /posts/slugs
func (h *Handler) slugs(c *gin.Context) {
	slugs, err := h.repo.Slugs()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, slugs)
}

// get GET /posts/:slug
func (h *Handler) get(c *gin.Context) {
	p, err := h.repo.Get(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "post not found")
		return
	}
	response.OK(c, p)
}

// related GET /posts/:slug/related
func (h *Handler) related(c *gin.Context) {
	limit := defaultRelatedLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	posts, err := h.repo.Related(c.Param("slug"), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if posts == nil {
		if p, _ := h.repo.Get(c.Param("slug")); p == nil {
			response.NotFoundMsg(c, "post not found")
			return
		}
		posts = []models.PostRecord{}
	}
	summaries := make([]models.PostSummary, len(posts))
	for i, p := range posts {
		summaries[i] = p.Summary()
	}
	response.OK(c, summaries)
}

// categories GET /categories
func (h *Handler) categories(c *gin.Context) {
	terms, err := h.repo.Categories()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, terms)
}

// tags GET /tags
func (h *Handler) tags(c *gin.Context) {
	terms, err := h.repo.Tags()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, terms)
}
