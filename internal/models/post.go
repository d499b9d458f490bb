package models

// PostRecord is one loaded content file.
type PostRecord struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Content     string   `json:"content"`
	PublishedAt string   `json:"publishedAt"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
	Views       int      `json:"views"`
	Likes       int      `json:"likes"`
	Comments    int      `json:"comments"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// PostSummary is the list projection of a PostRecord without the rendered body.
type PostSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	PublishedAt string   `json:"publishedAt"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image,omitempty"`
}

// Summary drops the content body.
func (p PostRecord) Summary() PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		Slug: p.Slug, Title: p.Title, Excerpt: p.Excerpt, Category: p.Category,
		PublishedAt: p.PublishedAt, ReadTime: p.ReadTime, Tags: tags,
		Featured: p.Featured, Image: p.Image,
	}
}
