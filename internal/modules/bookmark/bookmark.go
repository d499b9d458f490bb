// Package bookmark keeps the saved-posts list in a kv store.
package bookmark

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/kv"
	"github.com/mx-space/folio/internal/pkg/response"
)

// StorageKey is the kv key holding the bookmark array.
const StorageKey = "blog-bookmarks"

type Service struct {
	store kv.Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewService(store kv.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns bookmarks newest first.
func (s *Service) List(ctx context.Context) ([]models.Bookmark, error) {
	var items []models.Bookmark
	if _, err := kv.GetJSON(ctx, s.store, StorageKey, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Bookmark{}
	}
	return items, nil
}

// Add puts b at the front. Adding a slug that is already saved is a no-op
// and reports false.
func (s *Service) Add(ctx context.Context, b models.Bookmark) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.Slug == b.Slug {
			return false, nil
		}
	}
	if b.BookmarkedAt == "" {
		b.BookmarkedAt = s.now().UTC().Format(time.RFC3339)
	}
	items = append([]models.Bookmark{b}, items...)
	return true, kv.SetJSON(ctx, s.store, StorageKey, items)
}

// Remove deletes the bookmark for slug and reports whether it existed.
func (s *Service) Remove(ctx context.Context, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.Slug != slug {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, kv.SetJSON(ctx, s.store, StorageKey, kept)
}

// Has reports whether slug is bookmarked.
func (s *Service) Has(ctx context.Context, slug string) (bool, error) {
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// Clear drops every bookmark.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, StorageKey)
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/bookmarks")
	g.GET("", h.list)
	g.GET("/:slug", h.has)
	g.POST("", h.add)
	g.DELETE("", h.clear)
	g.DELETE("/:slug", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *Handler) has(c *gin.Context) {
	ok, err := h.svc.Has(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"bookmarked": ok})
}

func (h *Handler) add(c *gin.Context) {
	var b models.Bookmark
	if err := c.ShouldBindJSON(&b); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b.Slug = strings.TrimSpace(b.Slug)
	added, err := h.svc.Add(c.Request.Context(), b)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !added {
		response.OK(c, gin.H{"added": false})
		return
	}
	response.Created(c, gin.H{"added": true})
}

func (h *Handler) remove(c *gin.Context) {
	removed, err := h.svc.Remove(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !removed {
		response.NotFoundMsg(c, "bookmark not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
