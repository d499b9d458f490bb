package cron

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

var ErrJobNotFound = errors.New("job not found")

// Job defines a background task. A zero Interval registers a job that only
// runs when triggered through Run.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type jobState struct {
	Job
	status    JobStatus
	message   string
	lastRunAt *time.Time
	nextRunAt *time.Time
	mu        sync.Mutex
}

// ListItem is the serializable representation of a job for the API.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	NextDate    *time.Time `json:"nextDate"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
}

// TaskResult is returned when polling job execution status.
type TaskResult struct {
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

// Scheduler manages a collection of named jobs.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
	ctx  context.Context
	log  *zap.Logger
}

// New creates an empty Scheduler.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		jobs: make(map[string]*jobState),
		ctx:  context.Background(),
		log:  log.Named("cron"),
	}
}

// Register adds a job to the scheduler. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	js := &jobState{Job: job, status: StatusIdle}
	if job.Interval > 0 {
		next := time.Now().Add(job.Interval)
		js.nextRunAt = &next
	}
	s.jobs[job.Name] = js
}

// Start launches the periodic jobs. Manual runs triggered later inherit ctx,
// so cancelling it stops both.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	for _, js := range s.jobs {
		if js.Interval > 0 {
			go s.runLoop(ctx, js)
		}
	}
}

func (s *Scheduler) runLoop(ctx context.Context, js *jobState) {
	ticker := time.NewTicker(js.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, js)
			js.mu.Lock()
			next := time.Now().Add(js.Interval)
			js.nextRunAt = &next
			js.mu.Unlock()
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, js *jobState) {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return
	}
	js.status = StatusRunning
	js.mu.Unlock()

	now := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	js.lastRunAt = &now
	if err != nil {
		js.status = StatusReject
		js.message = err.Error()
	} else {
		js.status = StatusFulfill
		js.message = ""
	}
	js.mu.Unlock()

	if err != nil {
		s.log.Warn("job failed", zap.String("job", js.Name), zap.Error(err))
	} else {
		s.log.Debug("job done", zap.String("job", js.Name), zap.Duration("took", time.Since(now)))
	}
}

// Run triggers a job by name without waiting for it.
func (s *Scheduler) Run(name string) error {
	s.mu.RLock()
	js, ok := s.jobs[name]
	ctx := s.ctx
	s.mu.RUnlock()
	if !ok {
		return ErrJobNotFound
	}
	go s.execute(ctx, js)
	return nil
}

// GetTask returns the current execution state of a job.
func (s *Scheduler) GetTask(name string) (*TaskResult, error) {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrJobNotFound
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	return &TaskResult{Status: js.status, Message: js.message}, nil
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ListItem, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		items = append(items, ListItem{
			Name:        js.Name,
			Description: js.Description,
			Status:      js.status,
			NextDate:    js.nextRunAt,
			LastRunAt:   js.lastRunAt,
		})
		js.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
