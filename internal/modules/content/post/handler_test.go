package post

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/folio/internal/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo, _ := seedRepo(t)
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandlerListPaginates(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(r, "/api/v1/posts?size=2&page=1")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []struct {
			Slug    string `json:"slug"`
			Content string `json:"content"`
		} `json:"data"`
		Pagination struct {
			Total       int  `json:"total"`
			HasNextPage bool `json:"has_next_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "go-tips", body.Data[0].Slug)
	assert.Empty(t, body.Data[0].Content)
	assert.Equal(t, 3, body.Pagination.Total)
	assert.True(t, body.Pagination.HasNextPage)

	assert.Equal(t, http.StatusBadRequest, doGet(r, "/api/v1/posts?featured=maybe").Code)
}

func TestHandlerGet(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(r, "/api/v1/posts/hiking")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.PostRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Hiking", got.Title)
	assert.Equal(t, "<p>body</p>", got.Content)
	assert.Equal(t, []string{"travel"}, got.Tags)

	w = doGet(r, "/api/v1/posts/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":0,"code":404,"message":"post not found"}`, w.Body.String())
}

func TestHandlerSlugsRelatedTerms(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(r, "/api/v1/posts/slugs")
	require.Equal(t, http.StatusOK, w.Code)
	var slugs struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slugs))
	assert.ElementsMatch(t, []string{"go-tips", "go-errors", "hiking"}, slugs.Data)

	w = doGet(r, "/api/v1/posts/hiking/related")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/v1/posts/nope/related").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/api/v1/categories").Code)
	assert.Contains(t, doGet(r, "/api/v1/tags").Body.String(), `{"name":"go","count":2}`)
}
