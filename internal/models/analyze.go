package models

import "time"

// EventType names an analytics event.
type EventType string

const (
	EventPageView        EventType = "page_view"
	EventScrollDepth     EventType = "scroll_depth"
	EventTimeOnPage      EventType = "time_on_page"
	EventReadingComplete EventType = "reading_complete"
	EventEngagement      EventType = "engagement"
	EventClick           EventType = "click"
	EventShare           EventType = "share"
	EventContentUpgrade  EventType = "content-upgrade-downloaded"
)

// EventTypes lists every accepted type.
var EventTypes = []EventType{
	EventPageView, EventScrollDepth, EventTimeOnPage, EventReadingComplete,
	EventEngagement, EventClick, EventShare, EventContentUpgrade,
}

// Valid reports whether t belongs to the closed set of event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AnalyticsEvent is one reading-analytics event.
type AnalyticsEvent struct {
	Type      EventType              `json:"type"`
	Slug      string                 `json:"slug,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// NewEvent stamps an event with the given time in milliseconds since epoch.
func NewEvent(t EventType, slug string, data map[string]interface{}, at time.Time) AnalyticsEvent {
	return AnalyticsEvent{Type: t, Slug: slug, Data: data, Timestamp: at.UnixMilli()}
}
