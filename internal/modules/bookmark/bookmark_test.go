package bookmark

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/kv"
)

func TestServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kv.NewFile(filepath.Join(t.TempDir(), "bookmarks.json")))
	svc.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Bookmark{}, items)

	added, err := svc.Add(ctx, models.Bookmark{Slug: "a", Title: "A"})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = svc.Add(ctx, models.Bookmark{Slug: "b", Title: "B"})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = svc.Add(ctx, models.Bookmark{Slug: "a", Title: "A again"})
	require.NoError(t, err)
	assert.False(t, added)

	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Slug)
	assert.Equal(t, "A", items[1].Title)
	assert.Equal(t, "2024-02-03T04:05:06Z", items[1].BookmarkedAt)

	has, err := svc.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := svc.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Remove(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, svc.Clear(ctx))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(kv.NewMemory())).RegisterRoutes(r.Group("/api/v1"))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/v1/bookmarks", `{"title":"no slug"}`).Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/v1/bookmarks", `{"slug":"go","title":"Go"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/v1/bookmarks", `{"slug":"go","title":"Go"}`).Code)

	w := do(http.MethodGet, "/api/v1/bookmarks", "")
	assert.Contains(t, w.Body.String(), `"slug":"go"`)
	assert.JSONEq(t, `{"bookmarked":true}`, do(http.MethodGet, "/api/v1/bookmarks/go", "").Body.String())

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/v1/bookmarks/go", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/v1/bookmarks/go", "").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/v1/bookmarks", "").Code)
}
