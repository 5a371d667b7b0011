package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow closes itself after a fixed number of polls.
type fakeWindow struct {
	polls    int
	closeAt  int
	closed   bool
	onClose  func()
	onResize func(int, int)
	title    string
}

var _ window.Window = &fakeWindow{}

func (f *fakeWindow) SetResizeCallback(cb func(int, int)) { f.onResize = cb }
func (f *fakeWindow) SetKeyDownCallback(func(uint32)) {}
func (f *fakeWindow) SetKeyUpCallback(func(uint32)) {}
func (f *fakeWindow) SetLeftMouseDownCallback(func(int32, int32)) {}
func (f *fakeWindow) SetLeftMouseUpCallback(func(int32, int32)) {}
func (f *fakeWindow) SetMouseMoveCallback(func(int32, int32)) {}
func (f *fakeWindow) SetCloseCallback(cb func()) { f.onClose = cb }
func (f *fakeWindow) SetTitle(title string) { f.title = title }
func (f *fakeWindow) Title() string { return f.title }
func (f *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f *fakeWindow) IsRunning() bool { return !f.closed }
func (f *fakeWindow) Close() error {
	f.closed = true
	return nil
}
func (f *fakeWindow) Width() int { return 800 }
func (f *fakeWindow) Height() int { return 600 }
func (f *fakeWindow) PollEvents() bool {
	f.polls++
	if f.closeAt > 0 && f.polls >= f.closeAt {
		f.closed = true
	}
	return !f.closed
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	w := &fakeWindow{closeAt: 4}
	frames := 0
	e := NewEngine(WithWindow(w), WithFrameCallback(func(float32) { frames++ }))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, frames)
}

func TestRunStopsOnQuit(t *testing.T) {
	w := &fakeWindow{}
	frames := 0
	var e Engine
	e = NewEngine(WithWindow(w), WithFrameCallback(func(float32) {
		frames++
		if frames == 5 {
			e.Quit()
			e.Quit()
		}
	}))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 5, frames)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	e := NewEngine(WithWindow(&fakeWindow{}))
	e.SetFrameCallback(func(float32) {
		frames++
		cancel()
	})

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 1, frames)
}

func TestRunRecoversFramePanic(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{}), WithFrameCallback(func(float32) { panic("boom") }))
	err := e.Run(context.Background())
	assert.EqualError(t, err, "frame panicked: boom")
}

func TestRunWithoutWindow(t *testing.T) {
	assert.ErrorIs(t, NewEngine().Run(context.Background()), ErrNoWindow)
}

func TestFrameDuration(t *testing.T) {
	assert.Zero(t, frameDuration(0))
	assert.Zero(t, frameDuration(-30))
	assert.Equal(t, 20*time.Millisecond, frameDuration(50))
}
