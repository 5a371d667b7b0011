package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	now := time.Unix(0, 0)
	p := NewProfiler(WithLogger(logger), WithInterval(990*time.Millisecond), WithClock(func() time.Time { return now }))
	assert.True(t, p.Enabled())

	for range 59 {
		now = now.Add(time.Second / 60)
		assert.False(t, p.Tick())
	}
	now = now.Add(time.Second / 60)
	assert.True(t, p.Tick())
	assert.InDelta(t, 60, p.Last().FPS, 0.01)
	assert.Contains(t, buf.String(), "frame stats")

	// counter restarts after a report
	now = now.Add(time.Second / 2)
	assert.False(t, p.Tick())
}

func TestEnabledFollowsLoggerLevel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}))
	assert.False(t, NewProfiler(WithLogger(logger)).Enabled())
}
