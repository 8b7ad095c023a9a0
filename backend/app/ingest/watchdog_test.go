package ingest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dia-relay/backend/app/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdog_ScanReportsOnlyStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLiveness()
	l.Touch("fresh", now.Add(-30*time.Second))
	l.Touch("edge", now.Add(-116*time.Second))
	l.Touch("zeta", now.Add(-5*time.Minute))
	l.Touch("alpha", now.Add(-3*time.Minute))

	var buf bytes.Buffer
	w := NewWatchdog(l, time.Minute, 116*time.Second, metrics.Noop(), zerolog.New(&buf))
	stale := w.Scan(now)

	require.Len(t, stale, 2)
	assert.Equal(t, "alpha", stale[0].Name)
	assert.Equal(t, 3*time.Minute, stale[0].Elapsed)
	assert.Equal(t, "zeta", stale[1].Name)
	assert.Contains(t, buf.String(), "no report from alpha for 3.0 minutes")
	assert.Contains(t, buf.String(), "no report from zeta for 5.0 minutes")
	assert.NotContains(t, buf.String(), "fresh")
}

func TestWatchdog_KeepsWarningUntilReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLiveness()
	l.Touch("a", now.Add(-10*time.Minute))
	w := NewWatchdog(l, time.Minute, 2*time.Minute, metrics.Noop(), zerolog.Nop())

	assert.Len(t, w.Scan(now), 1)
	assert.Len(t, w.Scan(now.Add(time.Minute)), 1)
	assert.Equal(t, 1, l.Len())

	l.Touch("a", now.Add(time.Minute))
	assert.Empty(t, w.Scan(now.Add(time.Minute)))
}

func TestWatchdog_RunStopsOnCancel(t *testing.T) {
	w := NewWatchdog(NewLiveness(), 5*time.Millisecond, time.Minute, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watchdog did not stop")
	}
}
