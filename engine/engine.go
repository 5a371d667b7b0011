package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
type engine struct {
	window window.Window
	logger *slog.Logger

	quitChannel chan struct{}
	quitOnce    sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback    func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine drives the frame loop. Everything happens on the calling goroutine, which must be
// the one that created the window: each iteration polls window events (dispatching input
// callbacks), then runs the frame callback once.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables frame statistics at debug level.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetFrameCallback registers the function called once per frame after input is processed.
	//
	// Parameters:
	//   - callback: function receiving the time since the previous frame in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (the surface present mode still applies).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run blocks until the window closes, Quit is called or ctx is cancelled.
	// A panic in the frame callback is recovered, logged and returned as an error.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: nil on a normal stop
	Run(ctx context.Context) error

	// Quit stops the loop after the current frame. Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run(ctx context.Context) error {
	if e.window == nil {
		return ErrNoWindow
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("engine stopped", "reason", ctx.Err())
			return nil
		case <-e.quitChannel:
			e.logger.Debug("engine stopped", "reason", "quit")
			return nil
		default:
		}

		if !e.window.PollEvents() {
			e.logger.Debug("engine stopped", "reason", "window closed")
			return nil
		}

		start := time.Now()
		dt := float32(start.Sub(last).Seconds())
		last = start

		if err := e.frame(dt); err != nil {
			e.Quit()
			return err
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// frame runs the frame callback, converting a panic into an error.
func (e *engine) frame(dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame panicked", "panic", r)
			err = fmt.Errorf("frame panicked: %v", r)
		}
	}()
	if e.frameCallback != nil {
		e.frameCallback(dt)
	}
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
