package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Slice(items, Query{Page: 2, Size: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(5), meta.Total)
	assert.Equal(t, 3, meta.TotalPage)
	assert.True(t, meta.HasNextPage)

	page, meta = Slice(items, Query{Page: 3, Size: 2})
	assert.Equal(t, []int{5}, page)
	assert.False(t, meta.HasNextPage)

	page, _ = Slice(items, Query{Page: 9, Size: 2})
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestFromContextClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-4&size=500", nil)

	q := FromContext(c)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxSize, q.Size)
}
