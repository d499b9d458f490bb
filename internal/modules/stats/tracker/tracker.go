// Package tracker turns in-page reading signals into analytics events,
// mirrors them into a kv store and ships them in batches to the collector.
package tracker

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/pkg/kv"
)

// StorageKey is the kv key holding the locally mirrored event list.
const StorageKey = "blog-analytics"

const (
	defaultWriteDelay   = 500 * time.Millisecond
	defaultFlushDelay   = time.Second
	defaultTickInterval = time.Second
	defaultIdleTimeout  = 10 * time.Second
	defaultSendTimeout  = 10 * time.Second

	completionMilestone = 90
)

// Milestones are the scroll-depth thresholds, ascending.
var Milestones = []int{25, 50, 75, 90, 100}

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrNotObserving     = errors.New("tracker is not observing")
)

// State is the lifecycle position of a Tracker.
type State int

const (
	StateIdle State = iota
	StateObserving
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateObserving:
		return "observing"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Sender delivers one batch to the collector.
type Sender interface {
	Send(ctx context.Context, events []models.AnalyticsEvent) error
}

// PageInfo describes the mounted page for the page_view event.
type PageInfo struct {
	Slug           string   `yaml:"slug"`
	Title          string   `yaml:"title"`
	Category       string   `yaml:"category"`
	Tags           []string `yaml:"tags"`
	ContentLength  int      `yaml:"contentLength"`
	Referrer       string   `yaml:"referrer"`
	ViewportWidth  int      `yaml:"viewportWidth"`
	ViewportHeight int      `yaml:"viewportHeight"`
}

// Options configures a Tracker. Zero fields take defaults; Sender is required.
type Options struct {
	Sender       Sender
	Store        kv.Store
	Clock        Clock
	Logger       *zap.Logger
	WriteDelay   time.Duration
	FlushDelay   time.Duration
	TickInterval time.Duration
	IdleTimeout  time.Duration
	// MaxBatch caps the events sent per flush; the rest wait for the next
	// flush. Zero sends the whole buffer at once.
	MaxBatch int
	// OnEvent observes every produced event after it is buffered.
	OnEvent func(models.AnalyticsEvent)
}

// Summary is the payload of the time_on_page event.
type Summary struct {
	TotalTime       int64 `json:"totalTime"`
	ActiveTime      int64 `json:"activeTime"`
	MaxScroll       int   `json:"maxScroll"`
	ReadingComplete bool  `json:"readingComplete"`
	Milestones      []int `json:"milestones"`
}

// Tracker observes a single mounted page. Create one per page view and call
// Unmount when the page goes away; it must not be reused afterwards.
type Tracker struct {
	opts      Options
	log       *zap.Logger
	sessionID string

	mu           sync.Mutex
	state        State
	page         PageInfo
	mountedAt    time.Time
	lastActivity time.Time
	activeTime   time.Duration
	milestones   map[int]bool
	completed    bool
	buffer       []models.AnalyticsEvent

	writePending bool
	flushPending bool
	writeTimer   Timer
	flushTimer   Timer
	tickTimer    Timer

	inflight sync.WaitGroup
}

// New returns an idle Tracker.
func New(opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Store == nil {
		opts.Store = kv.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WriteDelay <= 0 {
		opts.WriteDelay = defaultWriteDelay
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = defaultFlushDelay
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	id := uuid.NewString()
	return &Tracker{
		opts:       opts,
		log:        opts.Logger.With(zap.String("session", id)),
		sessionID:  id,
		milestones: make(map[int]bool, len(Milestones)),
	}
}

// SessionID identifies this page view in emitted events.
func (t *Tracker) SessionID() string { return t.sessionID }

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Buffered returns a copy of the events not yet delivered.
func (t *Tracker) Buffered() []models.AnalyticsEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.AnalyticsEvent(nil), t.buffer...)
}

// Mount starts observation and emits page_view. Only the first call has effect.
func (t *Tracker) Mount(page PageInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return
	}
	now := t.opts.Clock.Now()
	t.state = StateObserving
	t.page = page
	t.mountedAt = now
	t.lastActivity = now

	tags := page.Tags
	if tags == nil {
		tags = []string{}
	}
	t.emitLocked(models.EventPageView, map[string]interface{}{
		"title":         page.Title,
		"category":      page.Category,
		"tags":          tags,
		"contentLength": page.ContentLength,
		"referrer":      page.Referrer,
		"viewport": map[string]interface{}{
			"width":  page.ViewportWidth,
			"height": page.ViewportHeight,
		},
		"sessionId": t.sessionID,
	})
	t.tickTimer = t.opts.Clock.AfterFunc(t.opts.TickInterval, t.tick)
}

// ScrollPosition converts raw scroll metrics into a percentage and applies Scroll.
func (t *Tracker) ScrollPosition(scrollTop, scrollHeight, viewportHeight float64) {
	t.Scroll(ScrollPercent(scrollTop, scrollHeight, viewportHeight))
}

// ScrollPercent is the share of scrollable distance covered, clamped to [0, 100].
// A page that cannot scroll counts as fully read.
func ScrollPercent(scrollTop, scrollHeight, viewportHeight float64) float64 {
	scrollable := scrollHeight - viewportHeight
	if scrollable <= 0 {
		return 100
	}
	pct := scrollTop / scrollable * 100
	return math.Max(0, math.Min(100, pct))
}

// Scroll records activity and emits every milestone newly reached by percent.
func (t *Tracker) Scroll(percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateObserving {
		return
	}
	t.lastActivity = t.opts.Clock.Now()

	for _, m := range Milestones {
		if percent < float64(m) || t.milestones[m] {
			continue
		}
		t.milestones[m] = true
		t.emitLocked(models.EventScrollDepth, map[string]interface{}{"milestone": m})
		if m == completionMilestone && !t.completed {
			t.completed = true
			t.emitLocked(models.EventReadingComplete, map[string]interface{}{
				"activeTime": int64(t.activeTime / time.Second),
				"totalTime":  roundSeconds(t.opts.Clock.Now().Sub(t.mountedAt)),
			})
		}
	}
}

// Activity records a mouse, key or touch signal.
func (t *Tracker) Activity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateObserving {
		return
	}
	t.lastActivity = t.opts.Clock.Now()
}

// Track emits an explicit event such as click or share.
func (t *Tracker) Track(eventType models.EventType, data map[string]interface{}) error {
	if !eventType.Valid() {
		return ErrUnknownEventType
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateObserving {
		return ErrNotObserving
	}
	t.emitLocked(eventType, data)
	return nil
}

// Unmount emits time_on_page, cancels every timer and starts one final
// delivery attempt that is neither awaited nor retried. Later signals are
// ignored.
func (t *Tracker) Unmount() Summary {
	t.mu.Lock()
	if t.state != StateObserving {
		t.state = StateUnmounted
		t.mu.Unlock()
		return Summary{Milestones: []int{}}
	}

	summary := t.summaryLocked()
	t.emitLocked(models.EventTimeOnPage, map[string]interface{}{
		"totalTime":       summary.TotalTime,
		"activeTime":      summary.ActiveTime,
		"maxScroll":       summary.MaxScroll,
		"readingComplete": summary.ReadingComplete,
		"milestones":      summary.Milestones,
		"sessionId":       t.sessionID,
	})
	t.state = StateUnmounted
	for _, timer := range []Timer{t.tickTimer, t.writeTimer, t.flushTimer} {
		if timer != nil {
			timer.Stop()
		}
	}
	t.writePending, t.flushPending = false, false
	var batches [][]models.AnalyticsEvent
	for len(t.buffer) > 0 {
		batches = append(batches, t.takeLocked())
	}
	t.mu.Unlock()

	if len(batches) > 0 {
		t.inflight.Add(1)
		go func() {
			defer t.inflight.Done()
			for _, batch := range batches {
				if err := t.send(batch); err != nil {
					t.log.Debug("final analytics flush dropped", zap.Int("events", len(batch)), zap.Error(err))
				}
			}
		}()
	}
	return summary
}

// Wait blocks until the final delivery started by Unmount has returned.
func (t *Tracker) Wait() { t.inflight.Wait() }

func (t *Tracker) summaryLocked() Summary {
	reached := make([]int, 0, len(t.milestones))
	for m := range t.milestones {
		reached = append(reached, m)
	}
	sort.Ints(reached)
	maxScroll := 0
	if len(reached) > 0 {
		maxScroll = reached[len(reached)-1]
	}
	return Summary{
		TotalTime:       roundSeconds(t.opts.Clock.Now().Sub(t.mountedAt)),
		ActiveTime:      int64(t.activeTime / time.Second),
		MaxScroll:       maxScroll,
		ReadingComplete: t.completed,
		Milestones:      reached,
	}
}

// emitLocked buffers one event and arms the write and flush timers.
func (t *Tracker) emitLocked(eventType models.EventType, data map[string]interface{}) {
	ev := models.NewEvent(eventType, t.page.Slug, data, t.opts.Clock.Now())
	t.buffer = append(t.buffer, ev)
	if t.opts.OnEvent != nil {
		t.opts.OnEvent(ev)
	}
	t.scheduleWriteLocked()
	t.scheduleFlushLocked()
}

func (t *Tracker) scheduleWriteLocked() {
	if t.writePending {
		return
	}
	t.writePending = true
	t.writeTimer = t.opts.Clock.AfterFunc(t.opts.WriteDelay, t.persist)
}

func (t *Tracker) scheduleFlushLocked() {
	if t.flushPending {
		return
	}
	t.flushPending = true
	t.flushTimer = t.opts.Clock.AfterFunc(t.opts.FlushDelay, t.flush)
}

func (t *Tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateObserving {
		return
	}
	if t.opts.Clock.Now().Sub(t.lastActivity) < t.opts.IdleTimeout {
		t.activeTime += t.opts.TickInterval
	}
	t.tickTimer = t.opts.Clock.AfterFunc(t.opts.TickInterval, t.tick)
}

// persist appends a copy of the whole buffer to the mirrored list. The buffer
// itself is left untouched.
func (t *Tracker) persist() {
	t.mu.Lock()
	if t.state != StateObserving {
		t.mu.Unlock()
		return
	}
	snapshot := append([]models.AnalyticsEvent(nil), t.buffer...)
	t.writePending = false
	t.mu.Unlock()

	if err := AppendStored(context.Background(), t.opts.Store, snapshot); err != nil {
		t.log.Warn("persist analytics events", zap.Error(err))
	}
}

// flush takes up to MaxBatch events off the front of the buffer and sends
// them. On failure they go back in front of anything buffered meanwhile, in
// their original order.
func (t *Tracker) flush() {
	t.mu.Lock()
	if t.state != StateObserving {
		t.mu.Unlock()
		return
	}
	batch := t.takeLocked()
	t.mu.Unlock()

	var err error
	if len(batch) > 0 {
		err = t.send(batch)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushPending = false
	if err != nil {
		t.log.Debug("analytics flush failed, requeued", zap.Int("events", len(batch)), zap.Error(err))
		if t.state == StateObserving {
			t.buffer = append(batch, t.buffer...)
		}
	}
	if t.state == StateObserving && len(t.buffer) > 0 {
		t.scheduleFlushLocked()
	}
}

func (t *Tracker) takeLocked() []models.AnalyticsEvent {
	n := len(t.buffer)
	if t.opts.MaxBatch > 0 && n > t.opts.MaxBatch {
		n = t.opts.MaxBatch
	}
	batch := t.buffer[:n:n]
	t.buffer = t.buffer[n:]
	if len(t.buffer) == 0 {
		t.buffer = nil
	}
	return batch
}

func (t *Tracker) send(batch []models.AnalyticsEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
	defer cancel()
	return t.opts.Sender.Send(ctx, batch)
}

// LoadStored returns the mirrored event list from store.
func LoadStored(ctx context.Context, store kv.Store) ([]models.AnalyticsEvent, error) {
	var events []models.AnalyticsEvent
	if _, err := kv.GetJSON(ctx, store, StorageKey, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.AnalyticsEvent{}
	}
	return events, nil
}

// AppendStored appends events to the mirrored list with a read-modify-write.
func AppendStored(ctx context.Context, store kv.Store, events []models.AnalyticsEvent) error {
	stored, err := LoadStored(ctx, store)
	if err != nil {
		return err
	}
	return kv.SetJSON(ctx, store, StorageKey, append(stored, events...))
}

func roundSeconds(d time.Duration) int64 {
	return int64(math.Round(d.Seconds()))
}
