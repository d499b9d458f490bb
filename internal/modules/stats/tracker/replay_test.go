package tracker

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/folio/internal/models"
)

const sessionScript = `
page:
  slug: hello-world
  title: Hello World
  category: notes
  tags: [intro]
  contentLength: 1800
steps:
  - at: 2s
    scroll: 30
  - at: 8s
    scroll: 55
  - at: 15s
    activity: true
  - at: 20s
    event:
      type: share
      data:
        network: mastodon
  - at: 25s
    scroll: 100
duration: 40s
`

func TestReplayScript(t *testing.T) {
	script, err := ParseScript(strings.NewReader(sessionScript))
	require.NoError(t, err)
	require.Len(t, script.Steps, 5)

	sender := &recordingSender{}
	res, err := Replay(script, Options{Sender: sender}, epoch)
	require.NoError(t, err)

	assert.Equal(t, models.EventPageView, res.Events[0].Type)
	assert.Equal(t, models.EventTimeOnPage, res.Events[len(res.Events)-1].Type)
	assert.Equal(t, int64(40), res.Summary.TotalTime)
	assert.Equal(t, []int{25, 50, 75, 90, 100}, res.Summary.Milestones)
	assert.True(t, res.Summary.ReadingComplete)
	assert.Len(t, sender.sent(), len(res.Events))

	shareAt := epoch.Add(20 * time.Second).UnixMilli()
	var share *models.AnalyticsEvent
	for i := range res.Events {
		if res.Events[i].Type == models.EventShare {
			share = &res.Events[i]
		}
	}
	require.NotNil(t, share)
	assert.Equal(t, shareAt, share.Timestamp)
	assert.Equal(t, "hello-world", share.Slug)
}

func TestParseScriptRejects(t *testing.T) {
	_, err := ParseScript(strings.NewReader("steps:\n  - at: 1s\n    event: {type: nope}\n"))
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = ParseScript(strings.NewReader("pages: {}\n"))
	assert.Error(t, err)

	script, err := ParseScript(strings.NewReader("steps:\n  - at: 9s\n    scroll: 10\n  - at: 3s\n    activity: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, script.Steps[0].At)
	assert.Equal(t, 9*time.Second, script.Duration)
}
