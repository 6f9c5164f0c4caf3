package mode

import (
	"math/rand"

	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/gesture"
	"github.com/ronkaldes/lumina/internal/physics"
	"github.com/ronkaldes/lumina/internal/physics/dotfield"
)

// StellarConfig holds the stellar-wave mode tunables. All fields have
// defaults; zero values in a partial config are replaced by
// DefaultStellarConfig values.
type StellarConfig struct {
	// RepulsorStrength scales the open-palm repulsor force.
	RepulsorStrength float64
	// FullChargeMs is the fist hold duration producing charge
	// intensity 1.0.
	FullChargeMs int64
	// StuckChargeTimeoutMs force-resolves a charging surge that stops
	// receiving fist events without an explicit release, so the phase
	// machine can never be left charging.
	StuckChargeTimeoutMs int64
}

// DefaultStellarConfig returns the stellar-mode tunables used by the
// installation.
func DefaultStellarConfig() StellarConfig {
	return StellarConfig{
		RepulsorStrength:     0.22,
		FullChargeMs:         2200,
		StuckChargeTimeoutMs: 600,
	}
}

func (c StellarConfig) withDefaults() StellarConfig {
	d := DefaultStellarConfig()
	if c.RepulsorStrength <= 0 {
		c.RepulsorStrength = d.RepulsorStrength
	}
	if c.FullChargeMs <= 0 {
		c.FullChargeMs = d.FullChargeMs
	}
	if c.StuckChargeTimeoutMs <= 0 {
		c.StuckChargeTimeoutMs = d.StuckChargeTimeoutMs
	}
	return c
}

// StellarMode is the stellar-wave orchestrator. Each pinch kind drives
// one dot-field interaction: index plucks a cosmic string, middle
// holds the gravity well, ring holds the vortex, pinky fires ripple
// pulses, and a held fist charges the quasar surge released on open.
// An open palm drives the repulsor; any pinch on that hand suppresses
// it (the grabber wins over the repulsor).
type StellarMode struct {
	cfg   StellarConfig
	field *dotfield.Simulator

	lastFistMs int64
}

// NewStellarMode creates the stellar mode over a fresh dot field.
func NewStellarMode(cfg StellarConfig, fieldCfg dotfield.Config, rng *rand.Rand) *StellarMode {
	return &StellarMode{
		cfg:   cfg.withDefaults(),
		field: dotfield.New(fieldCfg, rng),
	}
}

// Name returns the mode identifier.
func (m *StellarMode) Name() string { return "stellar" }

// Field exposes the dot-field simulator for rendering and tests.
func (m *StellarMode) Field() *dotfield.Simulator { return m.field }

// fieldPos maps a normalized landmark point into field coordinates,
// mirroring x so the interaction follows the on-screen hand.
func (m *StellarMode) fieldPos(p detector.Point3D) physics.Vec2 {
	b := m.field.Bounds()
	return physics.Vec2{X: (1 - p.X) * b.X, Y: p.Y * b.Y}
}

// HandleFrame maps this tick's gesture events onto dot-field inputs.
// Interaction centers not re-asserted this frame are cleared, so a hand
// that vanishes mid-gesture cannot leave a force stuck on.
func (m *StellarMode) HandleFrame(frame *detector.Frame, events []gesture.Event, nowMs int64) {
	if frame == nil || len(frame.Hands) == 0 {
		m.recover()
		return
	}

	var pluckSeen, wellSeen, vortexSeen, repulsorBlocked bool

	for i := range events {
		ev := &events[i]
		pos := m.fieldPos(ev.Normalized)

		switch ev.Kind {
		case gesture.KindPinchIndex:
			repulsorBlocked = true
			if ev.State == gesture.StateEnded {
				m.field.ClearPluck()
			} else {
				m.field.SetPluck(pos)
				pluckSeen = true
			}

		case gesture.KindPinchMiddle:
			repulsorBlocked = true
			if ev.State == gesture.StateEnded {
				m.field.ClearGravityWell()
			} else {
				m.field.SetGravityWell(pos)
				wellSeen = true
			}

		case gesture.KindPinchRing:
			repulsorBlocked = true
			if ev.State == gesture.StateEnded {
				m.field.ClearVortex()
			} else {
				m.field.SetVortex(pos)
				vortexSeen = true
			}

		case gesture.KindPinchPinky:
			repulsorBlocked = true
			if ev.State == gesture.StateStarted {
				m.field.TriggerRipple(pos)
			}

		case gesture.KindFist:
			repulsorBlocked = true
			if ev.State == gesture.StateEnded {
				m.field.TriggerBurst()
			} else {
				intensity := float64(ev.HoldMs) / float64(m.cfg.FullChargeMs)
				if intensity > 1 {
					intensity = 1
				}
				m.field.StartCharge(pos, intensity)
				m.lastFistMs = nowMs
			}
		}
	}

	// Clear held centers whose driving gesture went silent this frame
	// (e.g. the hand dropped out without an ended event).
	if !pluckSeen {
		m.field.ClearPluck()
	}
	if !wellSeen {
		m.field.ClearGravityWell()
	}
	if !vortexSeen {
		m.field.ClearVortex()
	}

	if repulsorBlocked {
		m.field.ClearRepulsor()
	} else {
		// Open-palm hover repels: center the field on the first hand's
		// palm.
		palm := frame.Hands[0].Points[detector.MiddleMCP]
		m.field.SetRepulsor(m.fieldPos(palm), m.cfg.RepulsorStrength)
	}
}

// recover clears every interaction center and force-resolves a stuck
// charging surge so no force survives the loss of hand tracking.
func (m *StellarMode) recover() {
	m.field.ClearPluck()
	m.field.ClearGravityWell()
	m.field.ClearVortex()
	m.field.ClearRepulsor()
	if m.field.SurgePhase() == dotfield.PhaseCharging {
		m.field.TriggerBurst()
	}
}

// Update advances the dot field one tick. A surge left charging past
// the stuck timeout is force-burst here as the last line of defense.
func (m *StellarMode) Update(dt float64, nowMs int64) {
	if m.field.SurgePhase() == dotfield.PhaseCharging &&
		nowMs-m.lastFistMs > m.cfg.StuckChargeTimeoutMs {
		m.field.TriggerBurst()
	}
	m.field.Update(nowMs)
}

// Reset clears all interactions and leaves the field relaxing back to
// rest.
func (m *StellarMode) Reset() {
	m.recover()
}

// Snapshot returns the render-ready field state for this tick.
func (m *StellarMode) Snapshot() any {
	return m.field.Snapshot()
}
