package models

// Bookmark is a saved post reference.
type Bookmark struct {
	Slug         string `json:"slug"         binding:"required"`
	Title        string `json:"title"        binding:"required"`
	Excerpt      string `json:"excerpt"`
	Category     string `json:"category"`
	ReadTime     string `json:"readTime"`
	BookmarkedAt string `json:"bookmarkedAt"`
}
