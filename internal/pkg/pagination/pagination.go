package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/folio/internal/pkg/response"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext extracts and validates pagination params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	size := parseIntOr(c.DefaultQuery("size", "10"), DefaultSize)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Query{Page: page, Size: size}
}

// Slice returns the requested page of items together with pagination metadata.
// Pages past the end yield an empty, non-nil slice.
func Slice[T any](items []T, q Query) ([]T, response.Pagination) {
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	total := len(items)
	totalPage := (total + q.Size - 1) / q.Size

	start := (q.Page - 1) * q.Size
	if start > total {
		start = total
	}
	end := start + q.Size
	if end > total {
		end = total
	}
	page := make([]T, end-start)
	copy(page, items[start:end])

	return page, response.Pagination{
		Total:       int64(total),
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
