package mode

import (
	"math"
	"math/rand"

	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/gesture"
	"github.com/ronkaldes/lumina/internal/physics"
	"github.com/ronkaldes/lumina/internal/physics/cord"
)

// HitTester answers the per-frame zone checks for the bulb mode. The
// actual ray casting against scene geometry lives in the renderer; the
// orchestrator only consumes boolean hits.
type HitTester interface {
	// HitCord reports whether a ray through pos hits the cord.
	HitCord(pos physics.Vec3) bool
	// HitBody reports whether a ray through pos hits the bulb body.
	HitBody(pos physics.Vec3) bool
}

// BulbConfig holds the bulb-mode tunables. All fields have defaults;
// zero values in a partial config are replaced by DefaultBulbConfig
// values.
type BulbConfig struct {
	// StrongPinchStrength is the minimum pinch strength that counts
	// toward committing an interaction, and below which a committed
	// interaction releases.
	StrongPinchStrength float64
	// CommitFrames is the number of consecutive strong-pinch frames
	// required before an interaction starts.
	CommitFrames int

	// AnchorPivot is the ceiling point the bulb assembly hangs from.
	AnchorPivot physics.Vec3
	// AnchorRadius is the distance from the pivot to the cord
	// attachment, which orbits the pivot as the bulb rotates.
	AnchorRadius float64
	// RotateSpeed converts horizontal pinch movement into angular
	// velocity.
	RotateSpeed float64
	// RotateDamping is the per-second decay of the angular velocity.
	RotateDamping float64

	// ToggleExtension is the extension ratio a pull must reach for its
	// release to toggle the light.
	ToggleExtension float64

	// Fatigue holds the cord stress machine constants.
	Fatigue FatigueConfig
}

// FatigueConfig holds the cord fatigue/break constants. Stress only
// accumulates when pull velocity and extension ratio exceed their
// thresholds jointly.
type FatigueConfig struct {
	// VelocityThreshold is the minimum pull speed of an aggressive pull.
	VelocityThreshold float64
	// ExtensionThreshold is the minimum extension ratio (current length
	// over rest length) of an aggressive pull.
	ExtensionThreshold float64
	// StressRate is the stress accumulated per second of aggressive
	// pulling.
	StressRate float64
	// MaxStress caps the accumulated stress.
	MaxStress float64
	// StressThreshold arms the probabilistic pending break.
	StressThreshold float64
	// BreakProbability is the per-tick chance of arming the pending
	// break once the stress threshold is reached.
	BreakProbability float64
	// OverstretchRatio forces a pending break immediately regardless of
	// velocity.
	OverstretchRatio float64
	// BounceVelocity is the upward handle velocity that converts an
	// armed pending break into the actual break.
	BounceVelocity float64
	// DecayCooldownMs is the idle period after which stress starts
	// decaying.
	DecayCooldownMs int64
	// DecayRate is the linear stress decay per second once cooling.
	DecayRate float64
}

// DefaultBulbConfig returns the bulb-mode tunables used by the
// installation.
func DefaultBulbConfig() BulbConfig {
	return BulbConfig{
		StrongPinchStrength: 0.35,
		CommitFrames:        3,
		AnchorPivot:         physics.Vec3{X: 0, Y: 1.6, Z: 0},
		AnchorRadius:        0.12,
		RotateSpeed:         6.0,
		RotateDamping:       2.5,
		ToggleExtension:     1.08,
		Fatigue: FatigueConfig{
			VelocityThreshold:  1.2,
			ExtensionThreshold: 1.15,
			StressRate:         0.9,
			MaxStress:          1.5,
			StressThreshold:    1.0,
			BreakProbability:   0.08,
			OverstretchRatio:   1.6,
			BounceVelocity:     0.8,
			DecayCooldownMs:    1500,
			DecayRate:          0.25,
		},
	}
}

func (c BulbConfig) withDefaults() BulbConfig {
	d := DefaultBulbConfig()
	if c.StrongPinchStrength <= 0 {
		c.StrongPinchStrength = d.StrongPinchStrength
	}
	if c.CommitFrames <= 0 {
		c.CommitFrames = d.CommitFrames
	}
	if c.AnchorPivot == (physics.Vec3{}) {
		c.AnchorPivot = d.AnchorPivot
	}
	if c.AnchorRadius <= 0 {
		c.AnchorRadius = d.AnchorRadius
	}
	if c.RotateSpeed <= 0 {
		c.RotateSpeed = d.RotateSpeed
	}
	if c.RotateDamping <= 0 {
		c.RotateDamping = d.RotateDamping
	}
	if c.ToggleExtension <= 0 {
		c.ToggleExtension = d.ToggleExtension
	}
	if c.Fatigue == (FatigueConfig{}) {
		c.Fatigue = d.Fatigue
	}
	return c
}

// interaction is the bulb mode's current committed interaction.
type interaction int

const (
	interactionNone interaction = iota
	interactionPullCord
	interactionRotateBulb
)

// fatigueState is the cord stress record. pendingBreak resolves on the
// next upward bounce of the handle, not immediately, so the break lands
// on a visible beat.
type fatigueState struct {
	stress       float64
	lastPullMs   int64
	pullCount    int
	pendingBreak bool
}

// BulbMode is the pull-cord light bulb orchestrator.
type BulbMode struct {
	cfg  BulbConfig
	cord *cord.Simulator
	hits HitTester
	rng  *rand.Rand

	gate        pinchGate
	current     interaction
	grabIndex   int
	grabTarget  physics.Vec3
	prevTarget  physics.Vec3
	hasPrev     bool
	lightOn     bool
	broken      bool
	rotation    float64
	rotationVel float64
	lastPinchX  float64
	fatigue     fatigueState
}

// NewBulbMode creates the bulb mode. The rng drives the probabilistic
// break roll and the cord's construction jitter; pass a seeded source
// for deterministic tests.
func NewBulbMode(cfg BulbConfig, cordCfg cord.Config, hits HitTester, rng *rand.Rand) *BulbMode {
	cfg = cfg.withDefaults()
	anchor := anchorFor(cfg, 0)
	return &BulbMode{
		cfg:  cfg,
		cord: cord.New(cordCfg, anchor, rng),
		hits: hits,
		rng:  rng,
		gate: pinchGate{minFrames: cfg.CommitFrames},
	}
}

// anchorFor computes the cord attachment point for a bulb rotation
// angle: it orbits the pivot in the horizontal plane.
func anchorFor(cfg BulbConfig, angle float64) physics.Vec3 {
	return physics.Vec3{
		X: cfg.AnchorPivot.X + math.Sin(angle)*cfg.AnchorRadius,
		Y: cfg.AnchorPivot.Y,
		Z: cfg.AnchorPivot.Z + math.Cos(angle)*cfg.AnchorRadius - cfg.AnchorRadius,
	}
}

// Name returns the mode identifier.
func (m *BulbMode) Name() string { return "bulb" }

// Cord exposes the cord simulator for rendering and tests.
func (m *BulbMode) Cord() *cord.Simulator { return m.cord }

// HandleFrame maps this tick's gesture events onto cord and rotation
// commands. A frame with zero hands forces full interaction recovery.
func (m *BulbMode) HandleFrame(frame *detector.Frame, events []gesture.Event, nowMs int64) {
	if frame == nil || len(frame.Hands) == 0 {
		m.recover()
		return
	}

	pinch := firstEvent(events, gesture.KindPinchIndex)

	if m.current != interactionNone {
		m.continueInteraction(pinch)
		return
	}

	strong := pinch != nil && pinch.State != gesture.StateEnded &&
		pinch.Strength >= m.cfg.StrongPinchStrength
	if !m.gate.observe(strong) {
		return
	}

	// Committed: resolve the zone by fixed priority, cord before body.
	// Once an interaction starts, continuation no longer checks zones.
	pos := pinch.Position
	switch {
	case m.hits != nil && m.hits.HitCord(pos):
		m.current = interactionPullCord
		m.grabIndex = m.cord.ParticleCount() - 1
		m.grabTarget = pos
		m.hasPrev = false
		m.cord.PinParticle(m.grabIndex)
		m.cord.GrabParticle(m.grabIndex, pos)
	case m.hits != nil && m.hits.HitBody(pos):
		m.current = interactionRotateBulb
		m.lastPinchX = pos.X
	default:
		// Not over an interactive target; keep the gate armed so the
		// pinch can drift into a zone.
	}
}

// continueInteraction advances a committed interaction, or releases it
// when the pinch ends or weakens below the hold threshold.
func (m *BulbMode) continueInteraction(pinch *gesture.Event) {
	if pinch == nil || pinch.State == gesture.StateEnded ||
		pinch.Strength < m.cfg.StrongPinchStrength {
		m.release()
		return
	}

	switch m.current {
	case interactionPullCord:
		m.prevTarget = m.grabTarget
		m.hasPrev = true
		m.grabTarget = pinch.Position
		m.cord.GrabParticle(m.grabIndex, m.grabTarget)
	case interactionRotateBulb:
		dx := pinch.Position.X - m.lastPinchX
		m.lastPinchX = pinch.Position.X
		m.rotationVel += dx * m.cfg.RotateSpeed
	}
}

// release ends the committed interaction, freeing any grabbed particle.
// A pull released past the toggle extension flips the light.
func (m *BulbMode) release() {
	if m.current == interactionPullCord {
		if !m.broken && m.cord.Length()/m.cord.RestLength() > m.cfg.ToggleExtension {
			m.lightOn = !m.lightOn
		}
		m.cord.UnpinParticle(m.grabIndex)
	}
	m.current = interactionNone
	m.hasPrev = false
	m.gate.reset()
}

// recover forcibly clears all interaction state; called when hand
// tracking reports zero hands so nothing stays stuck.
func (m *BulbMode) recover() {
	m.release()
	m.rotationVel = 0
}

// Update advances rotation, fatigue and cord physics by dt seconds.
func (m *BulbMode) Update(dt float64, nowMs int64) {
	if dt < 0 {
		dt = 0
	}

	// Bulb rotation integrates pinch-driven angular velocity with
	// exponential decay.
	m.rotation += m.rotationVel * dt
	m.rotationVel *= math.Exp(-m.cfg.RotateDamping * dt)

	// The cord anchor follows the rotating attachment while attached.
	if m.cord.Attached() {
		m.cord.SetAnchor(anchorFor(m.cfg, m.rotation))
	}

	if m.current == interactionPullCord {
		m.accumulateStress(dt, nowMs)
	}

	m.cord.Update(dt)

	m.resolvePendingBreak()
	m.decayStress(dt, nowMs)
}

// accumulateStress advances the fatigue machine during a pull.
// Aggressive pulls require pull velocity and extension ratio to exceed
// their thresholds jointly; an instantaneous overstretch forces the
// pending break regardless of velocity.
func (m *BulbMode) accumulateStress(dt float64, nowMs int64) {
	if dt <= 0 {
		return
	}
	fc := m.cfg.Fatigue

	ext := m.cord.Length() / m.cord.RestLength()

	var pullVel float64
	if m.hasPrev {
		pullVel = m.grabTarget.Distance(m.prevTarget) / dt
	}

	if pullVel > fc.VelocityThreshold && ext > fc.ExtensionThreshold {
		m.fatigue.stress += fc.StressRate * dt
		if m.fatigue.stress > fc.MaxStress {
			m.fatigue.stress = fc.MaxStress
		}
		m.fatigue.lastPullMs = nowMs
		m.fatigue.pullCount++

		if m.fatigue.stress >= fc.StressThreshold && !m.fatigue.pendingBreak {
			if m.rng != nil && m.rng.Float64() < fc.BreakProbability {
				m.fatigue.pendingBreak = true
			}
		}
	}

	if ext > fc.OverstretchRatio {
		m.fatigue.pendingBreak = true
		m.fatigue.lastPullMs = nowMs
	}
}

// resolvePendingBreak converts an armed pending break into the actual
// break when the free end next bounces upward past the velocity
// threshold.
func (m *BulbMode) resolvePendingBreak() {
	if !m.fatigue.pendingBreak || m.broken {
		return
	}
	handle := m.cord.ParticleCount() - 1
	if m.cord.Velocity(handle).Y > m.cfg.Fatigue.BounceVelocity {
		m.breakCord()
	}
}

// breakCord detaches the cord so it free-falls.
func (m *BulbMode) breakCord() {
	m.cord.DetachAnchor()
	m.broken = true
	m.fatigue.pendingBreak = false
}

// decayStress relaxes accumulated stress linearly toward zero after the
// idle cooldown.
func (m *BulbMode) decayStress(dt float64, nowMs int64) {
	fc := m.cfg.Fatigue
	if m.fatigue.stress <= 0 {
		return
	}
	if nowMs-m.fatigue.lastPullMs < fc.DecayCooldownMs {
		return
	}
	m.fatigue.stress -= fc.DecayRate * dt
	if m.fatigue.stress < 0 {
		m.fatigue.stress = 0
	}
}

// Reset restores the attached cord, zeroes fatigue and clears any
// interaction, returning the mode to its initial narrative state.
func (m *BulbMode) Reset() {
	m.release()
	m.rotation = 0
	m.rotationVel = 0
	m.broken = false
	m.fatigue = fatigueState{}
	m.cord.ReattachAnchor(anchorFor(m.cfg, 0))
}

// Stress returns the current fatigue stress, for rendering and tests.
func (m *BulbMode) Stress() float64 { return m.fatigue.stress }

// PendingBreak reports whether a break is armed, for tests.
func (m *BulbMode) PendingBreak() bool { return m.fatigue.pendingBreak }

// Broken reports whether the cord has broken free.
func (m *BulbMode) Broken() bool { return m.broken }

// LightOn reports whether the bulb is lit.
func (m *BulbMode) LightOn() bool { return m.lightOn }

// Pulling reports whether a cord pull is in progress.
func (m *BulbMode) Pulling() bool { return m.current == interactionPullCord }

// Rotating reports whether a bulb rotation is in progress.
func (m *BulbMode) Rotating() bool { return m.current == interactionRotateBulb }

// Rotation returns the current bulb rotation angle in radians.
func (m *BulbMode) Rotation() float64 { return m.rotation }

// BulbSnapshot is the render-ready bulb-mode state for one tick.
type BulbSnapshot struct {
	Particles []physics.Vec3 `json:"particles"`
	Attached  bool           `json:"attached"`
	Broken    bool           `json:"broken"`
	LightOn   bool           `json:"lightOn"`
	Rotation  float64        `json:"rotation"`
	Stress    float64        `json:"stress"`
}

// Snapshot returns the render-ready state for this tick.
func (m *BulbMode) Snapshot() any {
	return BulbSnapshot{
		Particles: m.cord.ParticlePositions(),
		Attached:  m.cord.Attached(),
		Broken:    m.broken,
		LightOn:   m.lightOn,
		Rotation:  m.rotation,
		Stress:    m.fatigue.stress,
	}
}
