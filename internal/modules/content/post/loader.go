// Package post loads markdown posts with front matter from a content
// directory and serves them over HTTP.
package post

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
)

// DefaultExtensions are the file suffixes loaded when none are configured.
var DefaultExtensions = []string{".mdx", ".md"}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// ErrInvalidFrontMatter marks a file that cannot become a PostRecord.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

type frontMatter struct {
	Title       string   `yaml:"title"       toml:"title"       json:"title"`
	Excerpt     string   `yaml:"excerpt"     toml:"excerpt"     json:"excerpt"`
	Category    string   `yaml:"category"    toml:"category"    json:"category"`
	PublishedAt string   `yaml:"publishedAt" toml:"publishedAt" json:"publishedAt"`
	Tags        []string `yaml:"tags"        toml:"tags"        json:"tags"`
	Views       int      `yaml:"views"       toml:"views"       json:"views"`
	Likes       int      `yaml:"likes"       toml:"likes"       json:"likes"`
	Comments    int      `yaml:"comments"    toml:"comments"    json:"comments"`
	Featured    bool     `yaml:"featured"    toml:"featured"    json:"featured"`
	Image       string   `yaml:"image"       toml:"image"       json:"image"`
	Author      string   `yaml:"author"      toml:"author"      json:"author"`
}

// Loader reads post files from a directory. Each call re-reads the disk.
type Loader struct {
	log        *zap.Logger
	extensions []string
}

// NewLoader returns a Loader accepting the given extensions (DefaultExtensions when empty).
func NewLoader(log *zap.Logger, extensions ...string) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Loader{log: log, extensions: exts}
}

// LoadAll parses every post file in dir and returns them newest first.
// A missing dir yields an empty collection. Files with unusable front matter
// are skipped with a warning.
func (l *Loader) LoadAll(dir string) ([]models.PostRecord, error) {
	files, err := l.postFiles(dir)
	if err != nil {
		return nil, err
	}

	posts := make([]models.PostRecord, 0, len(files))
	for _, name := range files {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		post, err := parsePost(l.slugOf(name), raw)
		if err != nil {
			l.log.Warn("skipping post", zap.String("file", path), zap.Error(err))
			continue
		}
		posts = append(posts, post)
	}

	SortByPublished(posts)
	return posts, nil
}

// Get returns the post with slug, or nil when there is none.
func (l *Loader) Get(dir, slug string) (*models.PostRecord, error) {
	posts, err := l.LoadAll(dir)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, nil
}

// Slugs lists the slug of every post file without parsing content.
func (l *Loader) Slugs(dir string) ([]string, error) {
	files, err := l.postFiles(dir)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(files))
	for i, name := range files {
		slugs[i] = l.slugOf(name)
	}
	return slugs, nil
}

func (l *Loader) postFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if l.matchExt(e.Name()) != "" {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func (l *Loader) matchExt(name string) string {
	lowered := strings.ToLower(name)
	for _, ext := range l.extensions {
		if strings.HasSuffix(lowered, ext) && len(name) > len(ext) {
			return ext
		}
	}
	return ""
}

func (l *Loader) slugOf(name string) string {
	return name[:len(name)-len(l.matchExt(name))]
}

func parsePost(slug string, raw []byte) (models.PostRecord, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return models.PostRecord{}, fmt.Errorf("%w: %v", ErrInvalidFrontMatter, err)
	}
	if missing := fm.missing(); len(missing) > 0 {
		return models.PostRecord{}, fmt.Errorf("%w: missing %s", ErrInvalidFrontMatter, strings.Join(missing, ", "))
	}

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	text := string(body)
	return models.PostRecord{
		Slug:        slug,
		Title:       fm.Title,
		Excerpt:     fm.Excerpt,
		Category:    fm.Category,
		Content:     Transform(text),
		PublishedAt: fm.PublishedAt,
		ReadTime:    ReadingTime(text),
		Tags:        tags,
		Views:       nonNegative(fm.Views),
		Likes:       nonNegative(fm.Likes),
		Comments:    nonNegative(fm.Comments),
		Featured:    fm.Featured,
		Image:       fm.Image,
		Author:      fm.Author,
	}, nil
}

// missing lists absent identity fields. Excerpt and category may be empty.
func (fm frontMatter) missing() []string {
	var out []string
	if strings.TrimSpace(fm.Title) == "" {
		out = append(out, "title")
	}
	if strings.TrimSpace(fm.PublishedAt) == "" {
		out = append(out, "publishedAt")
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// SortByPublished orders posts newest first, keeping file order for ties.
func SortByPublished(posts []models.PostRecord) {
	sort.SliceStable(posts, func(i, j int) bool {
		return publishedAfter(posts[i].PublishedAt, posts[j].PublishedAt)
	})
}

func publishedAfter(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
