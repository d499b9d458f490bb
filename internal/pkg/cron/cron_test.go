package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsOutcome(t *testing.T) {
	s := New(nil)
	s.Register(Job{Name: "ok", Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Fn: func(context.Context) error { return errors.New("boom") }})

	res, err := s.GetTask("ok")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, res.Status)

	require.NoError(t, s.Run("ok"))
	require.NoError(t, s.Run("bad"))

	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("ok")
		return r.Status == StatusFulfill
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("bad")
		return r.Status == StatusReject && r.Message == "boom"
	}, time.Second, 5*time.Millisecond)

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "bad", items[0].Name)
	assert.NotNil(t, items[0].LastRunAt)
	assert.Nil(t, items[0].NextDate)
}

func TestUnknownJob(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.Run("nope"), ErrJobNotFound)
	_, err := s.GetTask("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStartRunsPeriodicJobsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	s := New(nil)
	s.Register(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	items := s.List()
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].NextDate)
}
