package post

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
)

const watchDebounce = 500 * time.Millisecond

// Filter narrows a post listing. Zero values match everything.
type Filter struct {
	Category string
	Tag      string
	Featured *bool
	Query    string
}

// TermCount is a category or tag with the number of posts carrying it.
type TermCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Repository caches the loaded collection of one directory. The cache is
// dropped whenever the directory changes on disk (see Watch) or Invalidate
// is called.
type Repository struct {
	loader *Loader
	dir    string
	log    *zap.Logger

	mu     sync.RWMutex
	posts  []models.PostRecord
	loaded bool
}

func NewRepository(loader *Loader, dir string, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{loader: loader, dir: dir, log: log}
}

// Dir returns the content directory.
func (r *Repository) Dir() string { return r.dir }

// All returns the cached collection, loading it on first use.
func (r *Repository) All() ([]models.PostRecord, error) {
	r.mu.RLock()
	if r.loaded {
		posts := r.posts
		r.mu.RUnlock()
		return posts, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.posts, nil
	}
	posts, err := r.loader.LoadAll(r.dir)
	if err != nil {
		return nil, err
	}
	r.posts, r.loaded = posts, true
	return posts, nil
}

// Invalidate drops the cached collection.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.posts, r.loaded = nil, false
	r.mu.Unlock()
}

// Get returns the post with slug, or nil.
func (r *Repository) Get(slug string) (*models.PostRecord, error) {
	posts, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			p := posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

// Slugs delegates to the loader; it never touches the cache.
func (r *Repository) Slugs() ([]string, error) {
	return r.loader.Slugs(r.dir)
}

// List returns posts matching f in collection order.
func (r *Repository) List(f Filter) ([]models.PostRecord, error) {
	posts, err := r.All()
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.PostRecord, 0, len(posts))
	for _, p := range posts {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Tag != "" && !hasTag(p, f.Tag) {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Related ranks other posts by shared tags, plus one for the same category.
// Ties keep collection order.
func (r *Repository) Related(slug string, limit int) ([]models.PostRecord, error) {
	posts, err := r.All()
	if err != nil {
		return nil, err
	}
	var target *models.PostRecord
	for i := range posts {
		if posts[i].Slug == slug {
			target = &posts[i]
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	type scored struct {
		post  models.PostRecord
		score int
	}
	var candidates []scored
	for _, p := range posts {
		if p.Slug == slug {
			continue
		}
		score := 0
		for _, t := range target.Tags {
			if hasTag(p, t) {
				score++
			}
		}
		if target.Category != "" && strings.EqualFold(p.Category, target.Category) {
			score++
		}
		if score > 0 {
			candidates = append(candidates, scored{post: p, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]models.PostRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.post
	}
	return out, nil
}

// Categories counts posts per category, most used first.
func (r *Repository) Categories() ([]TermCount, error) {
	posts, err := r.All()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range posts {
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	return sortedTerms(counts), nil
}

// Tags counts posts per tag, most used first.
func (r *Repository) Tags() ([]TermCount, error) {
	posts, err := r.All()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	return sortedTerms(counts), nil
}

// Watch invalidates the cache on directory changes until ctx is done. A
// missing directory is not watched.
func (r *Repository) Watch(ctx context.Context) error {
	if _, err := os.Stat(r.dir); errors.Is(err, fs.ErrNotExist) {
		r.log.Info("content dir not found, not watching", zap.String("dir", r.dir))
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				r.log.Debug("content changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					r.Invalidate()
					r.log.Info("content cache invalidated", zap.String("dir", r.dir))
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Warn("content watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func hasTag(p models.PostRecord, tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func matchesQuery(p models.PostRecord, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Excerpt), query) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

func sortedTerms(counts map[string]int) []TermCount {
	out := make([]TermCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TermCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
