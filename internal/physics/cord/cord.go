// Package cord implements a position-based-dynamics particle chain
// representing the hanging pull-cord of the light bulb installation.
//
// The simulator runs on a fixed internal timestep driven by an
// accumulator, so one caller tick may advance zero, one, or several
// physics steps regardless of the caller's frame rate.
package cord

import (
	"math/rand"

	"github.com/ronkaldes/lumina/internal/physics"
)

// Config holds the tunable solver constants. All fields have defaults;
// zero values in a partial config are replaced by DefaultConfig values.
type Config struct {
	// SegmentCount is the number of distance constraints; the chain has
	// SegmentCount+1 particles.
	SegmentCount int
	// SegmentLength is the rest length of each constraint.
	SegmentLength float64
	// Gravity is the vertical acceleration (negative is down). Exactly
	// zero means unset and falls back to the default; a zero-gravity
	// rig is not expressible through this config.
	Gravity float64
	// Damping is the per-step exponential velocity damping factor.
	Damping float64
	// Iterations is the number of constraint relaxation passes per step.
	Iterations int
	// FixedDt is the internal physics timestep in seconds.
	FixedDt float64
	// MaxFrameDelta clamps the caller's frame delta to avoid runaway
	// catch-up after a long stall.
	MaxFrameDelta float64
	// FloorY is the floor plane height. Exactly zero means unset and
	// falls back to the default; a floor at the origin is not
	// expressible through this config.
	FloorY float64
	// FloorFriction scales horizontal velocity on floor contact.
	FloorFriction float64
	// SleepThreshold zeroes residual velocity below this magnitude after
	// a floor clamp, avoiding micro-jitter.
	SleepThreshold float64
	// Jitter is the magnitude of the per-particle offset applied to the
	// initial hanging layout so the chain does not start in perfect
	// equilibrium.
	Jitter float64
}

// DefaultConfig returns the solver constants tuned for the installation.
func DefaultConfig() Config {
	return Config{
		SegmentCount:   12,
		SegmentLength:  0.08,
		Gravity:        -9.8,
		Damping:        0.98,
		Iterations:     8,
		FixedDt:        1.0 / 120.0,
		MaxFrameDelta:  0.05,
		FloorY:         -1.5,
		FloorFriction:  0.8,
		SleepThreshold: 0.01,
		Jitter:         0.002,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SegmentCount <= 0 {
		c.SegmentCount = d.SegmentCount
	}
	if c.SegmentLength <= 0 {
		c.SegmentLength = d.SegmentLength
	}
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.Damping <= 0 {
		c.Damping = d.Damping
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.FixedDt <= 0 {
		c.FixedDt = d.FixedDt
	}
	if c.MaxFrameDelta <= 0 {
		c.MaxFrameDelta = d.MaxFrameDelta
	}
	if c.FloorY == 0 {
		c.FloorY = d.FloorY
	}
	if c.FloorFriction <= 0 {
		c.FloorFriction = d.FloorFriction
	}
	if c.SleepThreshold <= 0 {
		c.SleepThreshold = d.SleepThreshold
	}
	return c
}

// particle is one mass point of the chain. A pinned particle has zero
// inverse mass and receives no constraint correction.
type particle struct {
	pos     physics.Vec3
	prev    physics.Vec3
	vel     physics.Vec3
	invMass float64
}

// constraint keeps two adjacent particles at a fixed rest distance.
// Constraints are created once at construction and never change.
type constraint struct {
	a, b int
	rest float64
}

// Simulator is the cord physics engine. It is owned by a single
// orchestrator and must not be shared across goroutines.
type Simulator struct {
	cfg         Config
	particles   []particle
	constraints []constraint
	accumulator float64
}

// New creates a cord hanging from anchor. The rng seeds the small
// initial layout jitter; pass a seeded source for deterministic tests.
func New(cfg Config, anchor physics.Vec3, rng *rand.Rand) *Simulator {
	cfg = cfg.withDefaults()

	n := cfg.SegmentCount + 1
	s := &Simulator{
		cfg:         cfg,
		particles:   make([]particle, n),
		constraints: make([]constraint, cfg.SegmentCount),
	}

	jitter := func() float64 {
		if rng == nil || cfg.Jitter == 0 {
			return 0
		}
		return (rng.Float64()*2 - 1) * cfg.Jitter
	}

	for i := 0; i < n; i++ {
		p := physics.Vec3{
			X: anchor.X + jitter(),
			Y: anchor.Y - float64(i)*cfg.SegmentLength,
			Z: anchor.Z + jitter(),
		}
		s.particles[i] = particle{pos: p, prev: p, invMass: 1}
	}

	// Particle 0 starts pinned to the anchor.
	s.particles[0].invMass = 0
	s.particles[0].pos = anchor
	s.particles[0].prev = anchor

	for i := 0; i < cfg.SegmentCount; i++ {
		s.constraints[i] = constraint{a: i, b: i + 1, rest: cfg.SegmentLength}
	}

	return s
}

// Update advances the simulation by frameDelta seconds, stepping the
// internal fixed timestep as many times as the accumulator allows.
// Negative deltas are ignored; large deltas are clamped.
func (s *Simulator) Update(frameDelta float64) {
	if frameDelta < 0 {
		return
	}
	if frameDelta > s.cfg.MaxFrameDelta {
		frameDelta = s.cfg.MaxFrameDelta
	}

	s.accumulator += frameDelta
	for s.accumulator >= s.cfg.FixedDt {
		s.step(s.cfg.FixedDt)
		s.accumulator -= s.cfg.FixedDt
	}
}

// step runs one fixed-timestep pass: predict, constrain, derive
// velocity, collide with the floor.
func (s *Simulator) step(dt float64) {
	// Predict positions from velocity plus gravity.
	for i := range s.particles {
		p := &s.particles[i]
		if p.invMass == 0 {
			p.prev = p.pos
			continue
		}
		p.vel.Y += s.cfg.Gravity * dt
		p.prev = p.pos
		p.pos = p.pos.Add(p.vel.Scale(dt))
	}

	// Gauss-Seidel relaxation over the distance constraints. Corrections
	// move positions directly, split by inverse mass.
	for iter := 0; iter < s.cfg.Iterations; iter++ {
		for _, c := range s.constraints {
			pa := &s.particles[c.a]
			pb := &s.particles[c.b]

			wSum := pa.invMass + pb.invMass
			if wSum == 0 {
				continue
			}

			delta := pb.pos.Sub(pa.pos)
			dist := delta.Length()
			if dist < 1e-9 {
				continue
			}

			corr := delta.Scale((dist - c.rest) / dist / wSum)
			pa.pos = pa.pos.Add(corr.Scale(pa.invMass))
			pb.pos = pb.pos.Sub(corr.Scale(pb.invMass))
		}
	}

	// Derive velocity from the position delta, then damp.
	for i := range s.particles {
		p := &s.particles[i]
		if p.invMass == 0 {
			p.vel = physics.Vec3{}
			continue
		}
		p.vel = p.pos.Sub(p.prev).Scale(1 / dt).Scale(s.cfg.Damping)
	}

	// Floor collision with friction and a sleep threshold.
	for i := range s.particles {
		p := &s.particles[i]
		if p.invMass == 0 || p.pos.Y >= s.cfg.FloorY {
			continue
		}
		p.pos.Y = s.cfg.FloorY
		p.vel.Y = 0
		p.vel.X *= s.cfg.FloorFriction
		p.vel.Z *= s.cfg.FloorFriction
		if p.vel.Length() < s.cfg.SleepThreshold {
			p.vel = physics.Vec3{}
		}
	}
}

// SetAnchor moves particle 0 to pos. It only applies while the anchor
// is attached (particle 0 pinned); a detached cord ignores it.
func (s *Simulator) SetAnchor(pos physics.Vec3) {
	p := &s.particles[0]
	if p.invMass != 0 {
		return
	}
	p.pos = pos
	p.prev = pos
}

// PinParticle pins the particle at index in place, zeroing its
// velocity. Out-of-range indices are silently ignored.
func (s *Simulator) PinParticle(index int) {
	if index < 0 || index >= len(s.particles) {
		return
	}
	s.particles[index].invMass = 0
	s.particles[index].vel = physics.Vec3{}
}

// UnpinParticle restores unit inverse mass to the particle at index.
// Out-of-range indices are silently ignored.
func (s *Simulator) UnpinParticle(index int) {
	if index < 0 || index >= len(s.particles) {
		return
	}
	s.particles[index].invMass = 1
}

// GrabParticle hard-snaps a particle's position and previous position
// to target. Callers should pin the particle first; grabbing an
// unpinned particle is allowed but produces velocity spikes on release.
// Out-of-range indices are silently ignored.
func (s *Simulator) GrabParticle(index int, target physics.Vec3) {
	if index < 0 || index >= len(s.particles) {
		return
	}
	s.particles[index].pos = target
	s.particles[index].prev = target
}

// DetachAnchor releases particle 0 so the whole cord free-falls.
func (s *Simulator) DetachAnchor() {
	s.particles[0].invMass = 1
}

// ReattachAnchor pins particle 0 back at pos.
func (s *Simulator) ReattachAnchor(pos physics.Vec3) {
	p := &s.particles[0]
	p.pos = pos
	p.prev = pos
	p.vel = physics.Vec3{}
	p.invMass = 0
}

// Attached reports whether particle 0 is pinned to the anchor.
func (s *Simulator) Attached() bool {
	return s.particles[0].invMass == 0
}

// ParticleCount returns the number of particles in the chain.
func (s *Simulator) ParticleCount() int {
	return len(s.particles)
}

// ParticlePositions returns a copy of all particle positions, ordered
// from the anchor (index 0) to the free handle end.
func (s *Simulator) ParticlePositions() []physics.Vec3 {
	out := make([]physics.Vec3, len(s.particles))
	for i := range s.particles {
		out[i] = s.particles[i].pos
	}
	return out
}

// Velocity returns the velocity of the particle at index, or a zero
// vector for out-of-range indices.
func (s *Simulator) Velocity(index int) physics.Vec3 {
	if index < 0 || index >= len(s.particles) {
		return physics.Vec3{}
	}
	return s.particles[index].vel
}

// IsPinned reports whether the particle at index has zero inverse
// mass. Out-of-range indices report false.
func (s *Simulator) IsPinned(index int) bool {
	if index < 0 || index >= len(s.particles) {
		return false
	}
	return s.particles[index].invMass == 0
}

// Length returns the current end-to-end arc length of the chain.
func (s *Simulator) Length() float64 {
	var total float64
	for _, c := range s.constraints {
		total += s.particles[c.a].pos.Distance(s.particles[c.b].pos)
	}
	return total
}

// RestLength returns the total rest length of the chain.
func (s *Simulator) RestLength() float64 {
	return float64(s.cfg.SegmentCount) * s.cfg.SegmentLength
}
