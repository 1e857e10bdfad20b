package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/window"
	"github.com/Carmen-Shannon/oxy-raymarch/log"
)

var logger = log.New("engine")

// DefaultAnimationRate is the animation tick rate in ticks per second.
const DefaultAnimationRate = 30.0

// engine implements the Engine interface.
// Coordinates the animation, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	renderRequests  chan struct{}      // Pending frame; a buffer of one coalesces requests

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	scene  scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	animationTickRate  time.Duration
	animationSuspended atomic.Bool
	startTime          time.Time
}

// Engine is the main entry point for the viewer.
// It draws the scene on demand and, while animation is on, at a fixed tick rate.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine draws.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the animation tick rate in ticks per second.
	// While the scene is animated, every tick requests a frame.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to DefaultAnimationRate if <= 0)
	SetTickRate(fps float64)

	// RequestRender schedules a frame. Requests made before the render loop picks up
	// the pending one are merged into it.
	RequestRender()

	// SetAnimationSuspended stops or restarts the animation tick without changing the scene's
	// animated flag. Used while the view is being dragged.
	//
	// Parameters:
	//   - suspended: true to hold the animation
	SetAnimationSuspended(suspended bool)

	// Run starts the animation and render loops, then processes window messages until the
	// window closes. Blocks until every engine goroutine has exited.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine drawing the scene set with WithScene.
// Panics if no scene is given.
//
// Parameters:
//   - options: functional options for engine configuration (window, scene, tick rate, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:   make(chan time.Duration, 1),
		renderRequests:    make(chan struct{}, 1),
		quitChannel:       make(chan struct{}),
		wg:                sync.WaitGroup{},
		profiler:          profiler.NewProfiler(time.Second),
		animationTickRate: tickInterval(DefaultAnimationRate),
		startTime:         time.Now(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.scene == nil {
		panic("engine: NewEngine requires a scene, use WithScene")
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = DefaultAnimationRate
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() {
	e.handle()
	e.RequestRender()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the animation and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running.Store(true)
	e.wg.Add(2)
	go e.handleAnimation()
	go e.handleRender()
}

// resize reconfigures the surface and redraws. A minimised window reports a zero size,
// which the renderer keeps until the window is restored.
func (e *engine) resize(width, height int) {
	if r := e.scene.Renderer(); r != nil {
		r.Resize(width, height)
	}
	logger.Debugf("resized to %dx%d", width, height)
	e.RequestRender()
}

// handleAnimation runs the fixed-rate animation ticker in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleAnimation() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.animationTickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			e.animationTick()
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.animationTickRate = newRate
		}
	}
}

// animationTick requests a frame when the scene is animated and no drag holds the animation.
func (e *engine) animationTick() bool {
	if e.animationSuspended.Load() || !e.scene.State().Animated {
		return false
	}
	e.RequestRender()
	return true
}

// handleRender draws one frame per pending request in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-e.renderRequests:
			e.renderFrame()
		}
	}
}

func (e *engine) renderFrame() {
	if err := e.scene.Render(time.Since(e.startTime).Seconds()); err != nil {
		logger.Errorf("failed to render frame: %v", err)
	}
	if e.profilingEnabled.Load() && e.profiler != nil {
		e.profiler.Tick()
	}
}

func (e *engine) RequestRender() {
	select {
	case e.renderRequests <- struct{}{}:
	default:
	}
}

func (e *engine) SetAnimationSuspended(suspended bool) {
	e.animationSuspended.Store(suspended)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the animation tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if !e.running.Load() {
		e.animationTickRate = newRate
		return
	}

	// Non-blocking send - if a pending update exists, replace it
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}
