package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/conf"
)

func TestInitSentryDisabled(t *testing.T) {
	settings := &conf.Settings{}
	require.NoError(t, InitSentry(settings))
}

func TestInitSentryRequiresDSN(t *testing.T) {
	settings := &conf.Settings{}
	settings.Sentry.Enabled = true
	require.Error(t, InitSentry(settings))
}

func TestInitSentryFiltersEvents(t *testing.T) {
	transport := newMockTransport()
	settings := &conf.Settings{Version: "1.2.3"}
	settings.Sentry = conf.SentrySettings{Enabled: true, DSN: "https://key@sentry.test/1", Environment: "test"}

	require.NoError(t, initSentry(settings, transport))
	assert.True(t, IsInitialized())

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: "someone"})
		scope.SetExtra("component", "blogapi")
		scope.SetExtra("session_id", "abc")
		sentry.CaptureMessage("GET https://user:pw@blog.test/api/posts/?page=2 failed")
	})
	Flush()

	event := transport.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, "GET https://blog.test/api/posts/ failed", event.Message)
	assert.True(t, event.User.IsEmpty())
	assert.Equal(t, "blogapi", event.Extra["component"])
	assert.NotContains(t, event.Extra, "session_id")
	assert.Equal(t, "reader@1.2.3", event.Release)
}

func TestScrubMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no url", "plain failure", "plain failure"},
		{"query", "fetch https://blog.test/posts/?tags__slug=go failed", "fetch https://blog.test/posts/ failed"},
		{"credentials", "http://a:b@host/x", "http://host/x"},
		{"two urls", "http://a/1?x=1 http://b/2#f", "http://a/1 http://b/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrubMessage(tt.in))
		})
	}
}
