package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
)

// ErrRateLimited is returned when the collector answers 429.
var ErrRateLimited = errors.New("collector rate limited the batch")

// StatusError is a non-2xx collector response other than 429.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector responded %d: %s", e.Code, e.Body)
}

// SenderConfig tunes HTTPSender.
type SenderConfig struct {
	Endpoint         string
	Timeout          time.Duration
	FailureThreshold uint
	OpenDelay        time.Duration
	Logger           *zap.Logger
}

// HTTPSender posts batches as {"events": [...]}. Consecutive failures open a
// circuit breaker; while open, Send fails fast with circuitbreaker.ErrOpen and
// the tracker keeps the events queued.
type HTTPSender struct {
	endpoint string
	client   *http.Client
	breaker  circuitbreaker.CircuitBreaker[any]
}

func NewHTTPSender(cfg SenderConfig) *HTTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenDelay <= 0 {
		cfg.OpenDelay = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	breaker := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(cfg.FailureThreshold).
		WithDelay(cfg.OpenDelay).
		WithSuccessThreshold(1).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			log.Warn("analytics sender circuit state change",
				zap.String("endpoint", cfg.Endpoint),
				zap.String("from", stateName(event.OldState)),
				zap.String("to", stateName(event.NewState)),
			)
		}).
		Build()

	return &HTTPSender{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  breaker,
	}
}

// Open reports whether the breaker is currently rejecting sends.
func (s *HTTPSender) Open() bool { return s.breaker.IsOpen() }

func (s *HTTPSender) Send(ctx context.Context, events []models.AnalyticsEvent) error {
	payload, err := json.Marshal(struct {
		Events []models.AnalyticsEvent `json:"events"`
	}{Events: events})
	if err != nil {
		return err
	}

	_, err = failsafe.With(s.breaker).Get(func() (any, error) {
		return nil, s.post(ctx, payload)
	})
	return err
}

func (s *HTTPSender) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func stateName(state circuitbreaker.State) string {
	switch state {
	case circuitbreaker.OpenState:
		return "open"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	default:
		return "closed"
	}
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, events []models.AnalyticsEvent) error

func (f SenderFunc) Send(ctx context.Context, events []models.AnalyticsEvent) error {
	return f(ctx, events)
}
