// Package project serves the portfolio projects kept in a JSON data file.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/pagination"
	"github.com/mx-space/folio/internal/pkg/response"
)

var (
	ErrTitleExists = errors.New("title already exists")
	ErrNotFound    = errors.New("project not found")
)

const defaultStatus = "active"

type CreateProjectDTO struct {
	Title       string   `json:"title"       binding:"required"`
	Description string   `json:"description" binding:"required"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	GitHub      string   `json:"github"`
	Demo        string   `json:"demo"`
	Featured    bool     `json:"featured"`
	Status      string   `json:"status"`
}

type UpdateProjectDTO struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Tags        []string `json:"tags"`
	GitHub      *string  `json:"github"`
	Demo        *string  `json:"demo"`
	Featured    *bool    `json:"featured"`
	Status      *string  `json:"status"`
}

// Service reads and rewrites the whole data file on every call.
type Service struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewService(path string) *Service { return &Service{path: path, now: time.Now} }

// ListAll returns projects, featured first, then newest.
func (s *Service) ListAll() ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Featured != items[j].Featured {
			return items[i].Featured
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Service) GetByID(id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (s *Service) Create(dto *CreateProjectDTO) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(dto.Title)
	if titleTaken(items, title, "") {
		return nil, ErrTitleExists
	}
	now := s.now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		Title:       title,
		Description: dto.Description,
		Image:       dto.Image,
		Tags:        nonNilTags(dto.Tags),
		GitHub:      dto.GitHub,
		Demo:        dto.Demo,
		Featured:    dto.Featured,
		Status:      orDefault(dto.Status, defaultStatus),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items = append(items, p)
	return &p, s.save(items)
}

func (s *Service) Update(id string, dto *UpdateProjectDTO) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, nil
	}
	p := &items[idx]
	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if titleTaken(items, title, id) {
			return nil, ErrTitleExists
		}
		p.Title = title
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Image != nil {
		p.Image = *dto.Image
	}
	if dto.Tags != nil {
		p.Tags = dto.Tags
	}
	if dto.GitHub != nil {
		p.GitHub = *dto.GitHub
	}
	if dto.Demo != nil {
		p.Demo = *dto.Demo
	}
	if dto.Featured != nil {
		p.Featured = *dto.Featured
	}
	if dto.Status != nil {
		p.Status = orDefault(*dto.Status, defaultStatus)
	}
	p.UpdatedAt = s.now().UTC()
	updated := *p
	return &updated, s.save(items)
}

func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return ErrNotFound
	}
	return s.save(append(items[:idx], items[idx+1:]...))
}

func (s *Service) load() ([]models.Project, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}
	var items []models.Project
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parse projects: %w", err)
		}
	}
	if items == nil {
		items = []models.Project{}
	}
	return items, nil
}

// save writes through a temp file in the same directory and renames it over
// the data file.
func (s *Service) save(items []models.Project) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".projects-*.json")
	if err != nil {
		return fmt.Errorf("write projects: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write projects: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write projects: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func titleTaken(items []models.Project, title, exceptID string) bool {
	for _, p := range items {
		if p.ID != exceptID && strings.EqualFold(p.Title, title) {
			return true
		}
	}
	return false
}

func indexOf(items []models.Project, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects")
	g.GET("", h.list)
	g.GET("/all", h.listAll)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	page, pag := pagination.Slice(items, pagination.FromContext(c))
	response.Paged(c, page, pag)
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrTitleExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrTitleExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
