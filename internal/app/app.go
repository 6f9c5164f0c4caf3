// Package app wires the capture, gesture and mode layers into the
// installation runtime: a single pipeline goroutine that pulls landmark
// frames, classifies gestures, drives the active mode's simulators and
// publishes render snapshots.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/gesture"
	"github.com/ronkaldes/lumina/internal/mode"
)

// Pipeline timing constants.
const (
	// IdleFPS is the tick rate while no hands are tracked.
	IdleFPS = 10
	// ActiveFPS is the tick rate while at least one hand is tracked.
	ActiveFPS = 30
	// IdleTimeoutMs is how long after the last tracked hand the
	// pipeline drops back to the idle tick rate.
	IdleTimeoutMs = 2000
	// ResetAfterEmptyFrames is the number of consecutive zero-hand
	// frames after which the gesture detector state is reset, so a
	// returning visitor always starts from a clean slate.
	ResetAfterEmptyFrames = 45
)

// ErrUnknownMode is returned by SwitchMode for a mode name that was
// not registered.
var ErrUnknownMode = errors.New("app: unknown mode")

// Snapshot is one published tick of installation state, consumed by
// the render bridge.
type Snapshot struct {
	Mode        string `json:"mode"`
	TimestampMs int64  `json:"timestampMs"`
	Hands       int    `json:"hands"`
	State       any    `json:"state"`
}

// SnapshotFunc receives each tick's snapshot. It is called from the
// pipeline goroutine and must not block.
type SnapshotFunc func(Snapshot)

// Config holds the runtime options for the installation.
type Config struct {
	// StartMode is the mode the installation boots into.
	StartMode string
	// Gesture configures the gesture detector.
	Gesture gesture.Config
}

// App owns the detection pipeline and the registered modes. One mode
// is active at a time; switching resets the outgoing mode so no
// interaction state leaks across visitors.
type App struct {
	source   detector.Source
	gestures *gesture.Detector
	onSnap   SnapshotFunc

	mu          sync.RWMutex
	modes       map[string]mode.Mode
	current     mode.Mode
	enabled     bool
	stopCh      chan struct{}
	lastSnap    Snapshot
	lastTickMs  int64
	emptyFrames int
}

// New creates an App reading landmark frames from source and driving
// the given modes. The first mode matching cfg.StartMode (or the first
// registered mode when StartMode is empty) starts active.
func New(cfg Config, source detector.Source, modes ...mode.Mode) (*App, error) {
	if len(modes) == 0 {
		return nil, errors.New("app: at least one mode is required")
	}

	a := &App{
		source:   source,
		gestures: gesture.NewDetector(cfg.Gesture),
		modes:    make(map[string]mode.Mode, len(modes)),
		enabled:  true,
	}
	for _, m := range modes {
		a.modes[m.Name()] = m
	}

	start := cfg.StartMode
	if start == "" {
		start = modes[0].Name()
	}
	m, ok := a.modes[start]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, start)
	}
	a.current = m

	return a, nil
}

// OnSnapshot registers the per-tick snapshot consumer. It must be set
// before Start.
func (a *App) OnSnapshot(fn SnapshotFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSnap = fn
}

// SetEnabled pauses or resumes gesture processing. While paused the
// pipeline keeps ticking so physics settle, but no frames are read.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether gesture processing is active.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// CurrentMode returns the name of the active mode.
func (a *App) CurrentMode() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current.Name()
}

// ModeNames returns the registered mode names.
func (a *App) ModeNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.modes))
	for name := range a.modes {
		names = append(names, name)
	}
	return names
}

// SwitchMode activates the named mode. The outgoing mode is reset so
// its interaction state cannot leak into the next activation, and the
// gesture detector starts fresh.
func (a *App) SwitchMode(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, ok := a.modes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	if next == a.current {
		return nil
	}

	a.current.Reset()
	a.current = next
	a.gestures.Reset()
	log.Printf("Switched to %s mode", name)
	return nil
}

// LastSnapshot returns the most recently published snapshot.
func (a *App) LastSnapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastSnap
}

// Start launches the pipeline goroutine. Calling Start on a running
// app is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Installation pipeline started")
	return nil
}

// Stop halts the pipeline and releases the frame source.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			log.Printf("Error closing frame source: %v", err)
		}
	}

	log.Println("Installation pipeline stopped")
}
