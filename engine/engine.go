package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/profiler"
	"github.com/Carmen-Shannon/starfield/engine/renderer"
	"github.com/Carmen-Shannon/starfield/engine/scene"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRunning is returned when Run is called while the engine is running or after it
// has been shut down.
var ErrAlreadyRunning = errors.New("engine: already running or shut down")

// idleWait is how long the frame loop waits when no scene is active.
const idleWait = time.Millisecond

// FrameCallback receives every packed frame, once per active scene and frame, in ascending
// scene key order. The frame stays valid until the callback returns.
type FrameCallback func(key int, f *frame.Frame) error

// engine implements the Engine interface.
// Coordinates the tick loop and the frame loop.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running  atomic.Bool
	started  atomic.Bool
	quitChan chan struct{}
	quitOnce sync.Once // Ensures quitChan is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float64)
	frameCallback  FrameCallback

	packer   *frame.Packer
	renderer renderer.Renderer

	scenes map[int]scene.Scene

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames  int64
	frames     atomic.Int64
}

// Engine drives the scenes of a simulation. A fixed-rate tick loop runs game logic and records
// orbit trails; a frame loop packs every active scene each frame and hands the frames to the
// renderer and the frame callback.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for orbital motion, camera movement and input processing.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float64))

	// SetFrameCallback registers the function that receives every packed frame.
	// A non-nil error returned by the callback stops Run with that error.
	//
	// Parameters:
	//   - callback: the frame consumer
	SetFrameCallback(callback FrameCallback)

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are packed in ascending key order during the frame loop.
	//
	// Parameters:
	//   - key: the z-index determining pack order (lower packs first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Packer returns the frame packer shared by every scene.
	//
	// Returns:
	//   - *frame.Packer: the packer
	Packer() *frame.Packer

	// Frames returns the number of completed frames.
	Frames() int64

	// Run starts the tick and frame loops and blocks until Quit is called, ctx is canceled,
	// the frame budget set with WithMaxFrames is spent, or a loop fails. Run may be called once.
	//
	// Parameters:
	//   - ctx: cancels both loops
	//
	// Returns:
	//   - error: nil on a clean stop, otherwise the pack, render or callback error that stopped
	//     the frame loop
	Run(ctx context.Context) error

	// Quit signals both loops to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChan:        make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		packer:          frame.NewPacker(),
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Run(ctx context.Context) error {
	if e.started.Swap(true) {
		return ErrAlreadyRunning
	}
	e.running.Store(true)
	defer e.running.Store(false)
	defer e.signalQuit()

	e.mu.RLock()
	log.Printf("[Engine] running %d scenes at %v per tick", len(e.scenes), e.engineTickRate)
	e.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.handleTicks(gctx) })
	g.Go(func() error { return e.handleFrames(gctx) })
	err := g.Wait()

	log.Printf("[Engine] stopped after %d frames", e.frames.Load())
	return err
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChan)
	})
}

// handleTicks runs the fixed-rate tick loop. Fires the tick callback at the configured rate,
// then records orbit trails of the active scenes, and listens for rate changes via
// tickRateChannel.
func (e *engine) handleTicks(ctx context.Context) error {
	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChan:
			return nil
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			e.mu.RLock()
			cb := e.tickCallback
			e.mu.RUnlock()
			if cb != nil {
				cb(dt)
			}
			for _, s := range e.activeScenes() {
				s.RecordTrails()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// handleFrames runs the uncapped (or frame-limited) frame loop. A panic inside the loop is
// recovered and returned as an error.
func (e *engine) handleFrames(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame loop recovered from panic: %v", r)
			err = fmt.Errorf("engine: frame loop panic: %v", r)
		}
	}()

	for {
		select {
		case <-e.quitChan:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		start := time.Now()
		packed, err := e.frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if packed {
			if n := e.frames.Add(1); e.maxFrames > 0 && n >= e.maxFrames {
				e.signalQuit()
				return nil
			}
		}

		wait := e.frameLimitValue() - time.Since(start)
		if !packed {
			wait = max(wait, idleWait)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-e.quitChan:
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
		}
	}
}

// frame packs every active scene once in ascending key order.
func (e *engine) frame(ctx context.Context) (bool, error) {
	e.mu.RLock()
	keys := slices.Sorted(maps.Keys(e.scenes))
	scenes := make([]scene.Scene, 0, len(keys))
	active := make([]int, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s != nil && s.Active() {
			scenes = append(scenes, s)
			active = append(active, k)
		}
	}
	cb := e.frameCallback
	e.mu.RUnlock()

	for i, s := range scenes {
		f, err := s.Pack(ctx, e.packer)
		if err != nil {
			return false, fmt.Errorf("scene %d (%s): %w", active[i], s.Name(), err)
		}
		if e.renderer != nil {
			if err := e.renderer.Render(f); err != nil {
				return false, fmt.Errorf("scene %d (%s): render: %w", active[i], s.Name(), err)
			}
		}
		if e.profilingEnabled.Load() && e.profiler != nil {
			e.profiler.Record(f.Stats)
		}
		if cb != nil {
			if err := cb(active[i], f); err != nil {
				return false, err
			}
		}
	}
	return len(scenes) > 0, nil
}

func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]scene.Scene, 0, len(e.scenes))
	for _, s := range e.scenes {
		if s != nil && s.Active() {
			out = append(out, s)
		}
	}
	return out
}

func (e *engine) frameLimitValue() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameLimit
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()

	if e.running.Load() {
		// replace any pending update so the loop only sees the latest rate
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
}

func (e *engine) SetTickCallback(callback func(deltaTime float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback FrameCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.scenes)
}

func (e *engine) Packer() *frame.Packer {
	return e.packer
}

func (e *engine) Frames() int64 {
	return e.frames.Load()
}
