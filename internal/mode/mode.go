// Package mode contains the per-mode interaction orchestrators: they
// map gesture events to simulator commands, enforce mutual exclusion
// between competing interactions, and guarantee that interaction state
// recovers when hand tracking drops out mid-gesture.
package mode

import (
	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/gesture"
)

// Mode is one interactive installation mode. A mode owns its simulators
// and is driven synchronously once per tick: HandleFrame with the
// tick's landmark frame and gesture events, then Update to advance the
// physics. Not safe for concurrent use.
type Mode interface {
	// Name returns the mode identifier.
	Name() string

	// HandleFrame consumes one tick's gesture events. frame may carry
	// zero hands, which forces interaction recovery.
	HandleFrame(frame *detector.Frame, events []gesture.Event, nowMs int64)

	// Update advances the mode's simulators by dt seconds.
	Update(dt float64, nowMs int64)

	// Reset forcibly clears all interaction state, leaving the
	// simulators in a safe idle configuration.
	Reset()

	// Snapshot returns the render-ready state for this tick. The result
	// is JSON-marshalable.
	Snapshot() any
}

// pinchGate counts consecutive strong-pinch frames before an
// interaction commits, rejecting noisy single-frame detections.
type pinchGate struct {
	minFrames int
	count     int
}

// observe feeds one frame's candidate pinch into the gate and reports
// whether the interaction may commit. A missing or weak pinch resets
// the gate.
func (g *pinchGate) observe(strong bool) bool {
	if !strong {
		g.count = 0
		return false
	}
	g.count++
	return g.count >= g.minFrames
}

// reset clears the gate.
func (g *pinchGate) reset() {
	g.count = 0
}

// firstEvent returns the first event of the given kind, or nil.
func firstEvent(events []gesture.Event, k gesture.Kind) *gesture.Event {
	for i := range events {
		if events[i].Kind == k {
			return &events[i]
		}
	}
	return nil
}
