package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeValid(t *testing.T) {
	for _, et := range EventTypes {
		assert.True(t, et.Valid(), et)
	}
	assert.False(t, EventType("pageview").Valid())
	assert.False(t, EventType("").Valid())
}

func TestNewEventStampsMillis(t *testing.T) {
	at := time.UnixMilli(1704067200123)
	ev := NewEvent(EventShare, "hello", map[string]interface{}{"to": "x"}, at)
	assert.Equal(t, int64(1704067200123), ev.Timestamp)
	assert.Equal(t, "hello", ev.Slug)
}
