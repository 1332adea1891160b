package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/config"
	"rainalert/internal/forecast"
	"rainalert/internal/notify"
	"rainalert/internal/types"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubFetcher struct {
	entries []forecast.HourlyEntry
	err     error
	calls   int
}

func (s *stubFetcher) Hourly(_ context.Context, _, _ float64) ([]forecast.HourlyEntry, error) {
	s.calls++
	return s.entries, s.err
}

type stubResolver struct {
	path  string
	err   error
	calls int
	ids   []string
}

func (s *stubResolver) Resolve(_ context.Context, iconID string) (string, error) {
	s.calls++
	s.ids = append(s.ids, iconID)
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

type stubNotifier struct {
	err   error
	calls int
	sent  []notify.Notification
}

func (s *stubNotifier) Send(_ context.Context, n notify.Notification) error {
	s.calls++
	s.sent = append(s.sent, n)
	return s.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func entry(main, description, icon string) forecast.HourlyEntry {
	return forecast.HourlyEntry{Weather: []forecast.Condition{{Main: main, Description: description, Icon: icon}}}
}

func newTestRunner(f *stubFetcher, i *stubResolver, n *stubNotifier, minute int, opts config.Options) *Runner {
	clock := fixedClock{t: time.Date(2026, 8, 26, 9, minute, 0, 0, time.UTC)}
	return NewRunner(f, i, n, clock, nil, opts)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunSendsRainAlertWithAttachment(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{entry("Rain", "light rain", "10d")}}
	resolver := &stubResolver{path: "/cache/10d.png"}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, "Rain alert: light rain in the next hour", notifier.sent[0].Message)
	assert.Equal(t, "/cache/10d.png", notifier.sent[0].AttachmentPath)
	assert.Equal(t, []string{"10d"}, resolver.ids)
}

func TestRunSendsNoRainStatus(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{entry("Clear", "clear sky", "01d")}}
	resolver := &stubResolver{path: "/cache/01d.png"}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, "No rain in the next hour", notifier.sent[0].Message)
	assert.Equal(t, []string{"01d"}, resolver.ids)
}

func TestRunWindowWidensLateInHour(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{
		entry("Clear", "clear sky", "01d"),
		entry("Rain", "moderate rain", "10d"),
	}}
	resolver := &stubResolver{path: "/cache/10d.png"}
	notifier := &stubNotifier{}

	// Minute 5: only the first entry is inspected, so no rain is seen.
	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No rain in the next hour", notifier.sent[0].Message)

	// Minute 25: the second entry enters the window and wins.
	err = newTestRunner(fetcher, resolver, notifier, 25, config.Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rain alert: moderate rain in the next hour", notifier.sent[1].Message)
}

func TestRunForecastFailureIsFatal(t *testing.T) {
	fetcher := &stubFetcher{err: types.NewAppError(types.ErrCodeUpstreamForecast, "boom", nil)}
	resolver := &stubResolver{}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, resolver.calls)
	assert.Equal(t, 0, notifier.calls, "no notification on forecast failure")
}

func TestRunIconFailureStillSendsWithoutAttachment(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{entry("Rain", "light rain", "10d")}}
	resolver := &stubResolver{err: types.NewAppError(types.ErrCodeUpstreamIcon, "404", nil)}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, notifier.calls)
	assert.Empty(t, notifier.sent[0].AttachmentPath)
	assert.Equal(t, "Rain alert: light rain in the next hour", notifier.sent[0].Message)
}

func TestRunNotifyFailureIsFatal(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{entry("Clear", "clear sky", "01d")}}
	resolver := &stubResolver{path: "/cache/01d.png"}
	notifier := &stubNotifier{err: types.NewAppError(types.ErrCodeUpstreamNotify, "boom", nil)}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.Error(t, err)
}

func TestRunEmptyIconSkipsResolution(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{{}}}
	resolver := &stubResolver{}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, resolver.calls)
	require.Equal(t, 1, notifier.calls)
	assert.Empty(t, notifier.sent[0].AttachmentPath)
}

func TestRunDryRunSkipsIconAndNotification(t *testing.T) {
	fetcher := &stubFetcher{entries: []forecast.HourlyEntry{entry("Rain", "light rain", "10d")}}
	resolver := &stubResolver{}
	notifier := &stubNotifier{}

	err := newTestRunner(fetcher, resolver, notifier, 5, config.Options{DryRun: true}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "dry run still fetches the forecast")
	assert.Equal(t, 0, resolver.calls)
	assert.Equal(t, 0, notifier.calls)
}
