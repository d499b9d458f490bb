package post

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writePost(t *testing.T, dir, name, frontMatter, body string) {
	t.Helper()
	content := "---\n" + frontMatter + "\n---\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadAllSingleFile(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "hello-world.mdx", "title: \"Hello World\"\npublishedAt: \"2024-01-01\"", "Hi there.\n")

	posts, err := NewLoader(nil).LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello-world", posts[0].Slug)
	assert.Equal(t, "Hello World", posts[0].Title)
	assert.Equal(t, []string{}, posts[0].Tags)
	assert.Equal(t, 0, posts[0].Views)
	assert.False(t, posts[0].Featured)
	assert.Equal(t, "1 min read", posts[0].ReadTime)
	assert.Equal(t, "<p>Hi there.</p>", posts[0].Content)
}

func TestLoadAllSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	for name, date := range map[string]string{"a.mdx": "2024-01-01", "b.mdx": "2024-06-01", "c.mdx": "2024-03-01"} {
		writePost(t, dir, name, "title: "+name+"\npublishedAt: "+date, "body")
	}

	posts, err := NewLoader(nil).LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	var dates []string
	for _, p := range posts {
		dates = append(dates, p.PublishedAt)
	}
	assert.Equal(t, []string{"2024-06-01", "2024-03-01", "2024-01-01"}, dates)
}

func TestLoadAllMissingDir(t *testing.T) {
	posts, err := NewLoader(nil).LoadAll(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestLoadAllSkipsMalformedAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.mdx", "title: Good\npublishedAt: 2024-02-02\ntags: [go, web]\nfeatured: true\nviews: 12", "text")
	writePost(t, dir, "broken.mdx", "title: [unclosed\npublishedAt: 2024-01-01", "text")
	writePost(t, dir, "untitled.mdx", "publishedAt: 2024-01-01", "text")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.mdx"), 0o755))

	core, logs := observer.New(zap.WarnLevel)
	posts, err := NewLoader(zap.New(core)).LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "good", posts[0].Slug)
	assert.Equal(t, []string{"go", "web"}, posts[0].Tags)
	assert.True(t, posts[0].Featured)
	assert.Equal(t, 12, posts[0].Views)
	assert.Equal(t, 2, logs.FilterMessage("skipping post").Len())
}

func TestLoadAllExtensions(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "one.mdx", "title: One\npublishedAt: 2024-01-01", "x")
	writePost(t, dir, "two.md", "title: Two\npublishedAt: 2024-01-02", "x")

	posts, err := NewLoader(nil).LoadAll(dir)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, err = NewLoader(nil, ".mdx").LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "one", posts[0].Slug)
}

func TestGetAndSlugs(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "first.mdx", "title: First\npublishedAt: 2024-01-01", "x")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.mdx"), []byte("no front matter"), 0o644))
	l := NewLoader(nil)

	p, err := l.Get(dir, "first")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "First", p.Title)

	p, err = l.Get(dir, "missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	slugs, err := l.Slugs(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first", "raw"}, slugs)
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string { return strings.Repeat("word ", n) }

	assert.Equal(t, "1 min read", ReadingTime(""))
	assert.Equal(t, "1 min read", ReadingTime(words(200)))
	assert.Equal(t, "2 min read", ReadingTime(words(201)))
	assert.Equal(t, "5 min read", ReadingTime(words(1000)))

	for _, n := range []int{1, 50, 199, 200, 399, 1234} {
		assert.GreaterOrEqual(t, ReadingMinutes(words(2*n)), ReadingMinutes(words(n)))
	}
}

func TestSortByPublishedMixedFormats(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.mdx", "title: A\npublishedAt: \"2024-03-01T08:00:00Z\"", "x")
	writePost(t, dir, "b.mdx", "title: B\npublishedAt: \"2024-03-01\"", "x")
	writePost(t, dir, "c.mdx", "title: C\npublishedAt: \"2023-12-31 23:59:59\"", "x")

	posts, err := NewLoader(nil).LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "a", posts[0].Slug)
	assert.Equal(t, "b", posts[1].Slug)
	assert.Equal(t, "c", posts[2].Slug)
}
