package tracker

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mx-space/folio/internal/models"
)

// Script is a recorded reading session.
type Script struct {
	Page     PageInfo      `yaml:"page"`
	Steps    []Step        `yaml:"steps"`
	Duration time.Duration `yaml:"duration"`
}

// Step is one signal at an offset from mount.
type Step struct {
	At       time.Duration `yaml:"at"`
	Scroll   *float64      `yaml:"scroll,omitempty"`
	Activity bool          `yaml:"activity,omitempty"`
	Event    *ScriptEvent  `yaml:"event,omitempty"`
}

// ScriptEvent is an explicit Track call.
type ScriptEvent struct {
	Type string                 `yaml:"type"`
	Data map[string]interface{} `yaml:"data"`
}

// ReplayResult reports what a replayed session produced.
type ReplayResult struct {
	Events  []models.AnalyticsEvent
	Summary Summary
}

// ParseScript decodes a YAML session script.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse replay script: %w", err)
	}
	for i, step := range s.Steps {
		if step.At < 0 {
			return nil, fmt.Errorf("step %d: negative offset", i)
		}
		if step.Event != nil && !models.EventType(step.Event.Type).Valid() {
			return nil, fmt.Errorf("step %d: %w: %q", i, ErrUnknownEventType, step.Event.Type)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	if n := len(s.Steps); n > 0 && s.Duration < s.Steps[n-1].At {
		s.Duration = s.Steps[n-1].At
	}
	return &s, nil
}

// Replay drives a tracker through script on a manual clock starting at start.
// opts.Clock and opts.OnEvent are overridden. Replay waits for the final
// delivery before returning.
func Replay(script *Script, opts Options, start time.Time) (*ReplayResult, error) {
	clock := NewManualClock(start)
	res := &ReplayResult{}
	opts.Clock = clock
	opts.OnEvent = func(ev models.AnalyticsEvent) { res.Events = append(res.Events, ev) }

	t := New(opts)
	t.Mount(script.Page)

	var elapsed time.Duration
	for _, step := range script.Steps {
		clock.Advance(step.At - elapsed)
		elapsed = step.At

		if step.Activity {
			t.Activity()
		}
		if step.Scroll != nil {
			t.Scroll(*step.Scroll)
		}
		if step.Event != nil {
			if err := t.Track(models.EventType(step.Event.Type), step.Event.Data); err != nil {
				return nil, err
			}
		}
	}
	clock.Advance(script.Duration - elapsed)

	res.Summary = t.Unmount()
	t.Wait()
	return res, nil
}
