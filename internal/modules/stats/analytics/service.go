// Package analytics is the server side of reading analytics: it validates
// incoming batches, keeps a bounded window of recent events and summarizes it.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
)

var (
	ErrEmptyBatch    = errors.New("events must be a non-empty array")
	ErrBatchTooLarge = errors.New("too many events")
)

// InvalidEventError names the first rejected event of a batch.
type InvalidEventError struct {
	Index  int
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("events[%d]: %s", e.Index, e.Reason)
}

// Receipt acknowledges a recorded batch.
type Receipt struct {
	BatchID  string
	Received int
}

// Filter selects retained events. Empty fields match all.
type Filter struct {
	Type models.EventType
	Slug string
}

// Summary aggregates the retained window.
type Summary struct {
	Total          int                      `json:"total"`
	ByType         map[models.EventType]int `json:"byType"`
	PageViews      map[string]int           `json:"pageViews"`
	AvgActiveTime  float64                  `json:"avgActiveTime"`
	CompletionRate float64                  `json:"completionRate"`
}

type Service struct {
	store    EventStore
	maxBatch int
	metrics  *Metrics
	log      *zap.Logger
}

func NewService(store EventStore, maxBatch int, metrics *Metrics, log *zap.Logger) *Service {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, maxBatch: maxBatch, metrics: metrics, log: log}
}

// Record validates a batch and stores it whole. A rejected batch stores nothing.
func (s *Service) Record(ctx context.Context, events []models.AnalyticsEvent) (Receipt, error) {
	if len(events) == 0 {
		s.metrics.Batches.WithLabelValues(batchInvalid).Inc()
		return Receipt{}, ErrEmptyBatch
	}
	if len(events) > s.maxBatch {
		s.metrics.Batches.WithLabelValues(batchTooLarge).Inc()
		return Receipt{}, ErrBatchTooLarge
	}
	for i, ev := range events {
		if err := validateEvent(i, ev); err != nil {
			s.metrics.Batches.WithLabelValues(batchInvalid).Inc()
			return Receipt{}, err
		}
	}

	if err := s.store.Append(ctx, events); err != nil {
		s.metrics.Batches.WithLabelValues(batchFailed).Inc()
		return Receipt{}, fmt.Errorf("store events: %w", err)
	}

	s.metrics.Batches.WithLabelValues(batchAccepted).Inc()
	for _, ev := range events {
		s.metrics.Events.WithLabelValues(string(ev.Type)).Inc()
	}
	receipt := Receipt{BatchID: uuid.NewString(), Received: len(events)}
	s.log.Debug("analytics batch recorded", zap.String("batch", receipt.BatchID), zap.Int("events", receipt.Received))
	return receipt, nil
}

func validateEvent(i int, ev models.AnalyticsEvent) error {
	if !ev.Type.Valid() {
		return &InvalidEventError{Index: i, Reason: fmt.Sprintf("unknown type %q", ev.Type)}
	}
	if ev.Timestamp <= 0 {
		return &InvalidEventError{Index: i, Reason: "timestamp must be positive"}
	}
	return nil
}

// List returns retained events matching f, oldest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.AnalyticsEvent, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if f.Type == "" && f.Slug == "" {
		return events, nil
	}
	out := make([]models.AnalyticsEvent, 0, len(events))
	for _, ev := range events {
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if f.Slug != "" && ev.Slug != f.Slug {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Summarize aggregates the retained window.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Total:     len(events),
		ByType:    map[models.EventType]int{},
		PageViews: map[string]int{},
	}
	var activeTotal float64
	var sessions int
	for _, ev := range events {
		sum.ByType[ev.Type]++
		switch ev.Type {
		case models.EventPageView:
			if ev.Slug != "" {
				sum.PageViews[ev.Slug]++
			}
		case models.EventTimeOnPage:
			if v, ok := number(ev.Data["activeTime"]); ok {
				activeTotal += v
				sessions++
			}
		}
	}
	if sessions > 0 {
		sum.AvgActiveTime = activeTotal / float64(sessions)
	}
	if views := sum.ByType[models.EventPageView]; views > 0 {
		sum.CompletionRate = float64(sum.ByType[models.EventReadingComplete]) / float64(views)
	}
	return sum, nil
}

// TopPages returns slugs by page views, most viewed first.
func (s Summary) TopPages(limit int) []string {
	slugs := make([]string, 0, len(s.PageViews))
	for slug := range s.PageViews {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		if s.PageViews[slugs[i]] != s.PageViews[slugs[j]] {
			return s.PageViews[slugs[i]] > s.PageViews[slugs[j]]
		}
		return slugs[i] < slugs[j]
	})
	if limit > 0 && len(slugs) > limit {
		slugs = slugs[:limit]
	}
	return slugs
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
