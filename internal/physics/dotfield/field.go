// Package dotfield implements the stellar-wave particle grid: a
// pinned-border mesh of spring-damped points subjected to composable
// force fields (ripple pulses, a gravity well, a vortex, a repulsor and
// a cosmic-string pluck) plus the three-phase quasar surge.
//
// The simulator is a per-tick state transformer: Update must be called
// once per frame with a monotonically non-decreasing timestamp, and is
// not safe for concurrent use.
package dotfield

import (
	"math"
	"math/rand"

	"github.com/ronkaldes/lumina/internal/physics"
)

// point is one mesh vertex. Border points are pinned and never move.
type point struct {
	pos    physics.Vec3
	rest   physics.Vec2
	vel    physics.Vec3
	pinned bool
	ripple float64
}

// Simulator is the dot-field physics engine. It is owned by a single
// orchestrator and must not be shared across goroutines.
type Simulator struct {
	cfg    Config
	points []point
	rng    *rand.Rand

	ripples []ripple
	surge   surge

	// Nullable per-tick interaction centers, cleared by Clear methods.
	well         *physics.Vec2
	vortex       *physics.Vec2
	pluck        *physics.Vec2
	repulsor     *physics.Vec2
	repulsorStr  float64
	lastUpdateMs int64
}

// New creates a grid of Cols x Rows points at rest. The rng seeds the
// burst dispersal jitter; pass a seeded source for deterministic tests.
func New(cfg Config, rng *rand.Rand) *Simulator {
	cfg = cfg.withDefaults()

	s := &Simulator{
		cfg:    cfg,
		points: make([]point, cfg.Cols*cfg.Rows),
		rng:    rng,
	}

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			rest := physics.Vec2{
				X: float64(c) * cfg.Spacing,
				Y: float64(r) * cfg.Spacing,
			}
			s.points[r*cfg.Cols+c] = point{
				pos:    physics.Vec3{X: rest.X, Y: rest.Y},
				rest:   rest,
				pinned: r == 0 || c == 0 || r == cfg.Rows-1 || c == cfg.Cols-1,
			}
		}
	}

	return s
}

// Size returns the grid dimensions.
func (s *Simulator) Size() (cols, rows int) {
	return s.cfg.Cols, s.cfg.Rows
}

// Bounds returns the field extent in field units.
func (s *Simulator) Bounds() physics.Vec2 {
	return physics.Vec2{
		X: float64(s.cfg.Cols-1) * s.cfg.Spacing,
		Y: float64(s.cfg.Rows-1) * s.cfg.Spacing,
	}
}

// SetGravityWell places the gravity well at p.
func (s *Simulator) SetGravityWell(p physics.Vec2) {
	s.well = &p
}

// ClearGravityWell removes the gravity well.
func (s *Simulator) ClearGravityWell() {
	s.well = nil
}

// SetVortex places the vortex at p.
func (s *Simulator) SetVortex(p physics.Vec2) {
	s.vortex = &p
}

// ClearVortex removes the vortex.
func (s *Simulator) ClearVortex() {
	s.vortex = nil
}

// SetPluck places the held cosmic-string pluck point at p.
func (s *Simulator) SetPluck(p physics.Vec2) {
	s.pluck = &p
}

// ClearPluck releases the pluck point; the rest springs snap the
// displaced points back.
func (s *Simulator) ClearPluck() {
	s.pluck = nil
}

// SetRepulsor places the force-field repulsor at p with the given
// strength.
func (s *Simulator) SetRepulsor(p physics.Vec2, strength float64) {
	s.repulsor = &p
	s.repulsorStr = strength
}

// ClearRepulsor removes the repulsor.
func (s *Simulator) ClearRepulsor() {
	s.repulsor = nil
	s.repulsorStr = 0
}

// PluckActive reports whether a pluck point is currently held.
func (s *Simulator) PluckActive() bool { return s.pluck != nil }

// WellActive reports whether the gravity well is currently placed.
func (s *Simulator) WellActive() bool { return s.well != nil }

// VortexActive reports whether the vortex is currently placed.
func (s *Simulator) VortexActive() bool { return s.vortex != nil }

// RepulsorActive reports whether the repulsor is currently placed.
func (s *Simulator) RepulsorActive() bool { return s.repulsor != nil }

// Update advances the field one tick. nowMs drives ripple and surge
// timing and must be monotonically non-decreasing.
func (s *Simulator) Update(nowMs int64) {
	s.lastUpdateMs = nowMs

	// Point ripple intensity decays every tick, independent of active
	// pulses, so color fades smoothly after a ring passes.
	for i := range s.points {
		s.points[i].ripple *= s.cfg.RippleDecay
	}

	s.updateRipples(nowMs)
	s.updateSurge(nowMs)
	s.updatePluck()
	s.integrate()
}

// updatePluck pulls nearby points toward the held pluck point with
// linear falloff and extra damping to keep the hold stable.
func (s *Simulator) updatePluck() {
	if s.pluck == nil {
		return
	}
	center := *s.pluck

	for i := range s.points {
		p := &s.points[i]
		if p.pinned {
			continue
		}
		dist := center.Distance(physics.Vec2{X: p.pos.X, Y: p.pos.Y})
		if dist >= s.cfg.PluckReach {
			continue
		}
		influence := 1 - dist/s.cfg.PluckReach
		p.vel.X += (center.X - p.pos.X) * s.cfg.PluckStrength * influence
		p.vel.Y += (center.Y - p.pos.Y) * s.cfg.PluckStrength * influence
		p.vel.X *= s.cfg.PluckDamping
		p.vel.Y *= s.cfg.PluckDamping
	}
}

// integrate runs the unified rest-spring pass: the gravity well,
// repulsor and vortex forces accumulate into velocity first, then the
// rest spring, damping and position update apply.
func (s *Simulator) integrate() {
	for i := range s.points {
		p := &s.points[i]
		if p.pinned {
			continue
		}

		pos2 := physics.Vec2{X: p.pos.X, Y: p.pos.Y}

		if s.well != nil {
			delta := s.well.Sub(pos2)
			distSq := delta.X*delta.X + delta.Y*delta.Y
			force := s.cfg.WellStrength / (distSq + s.cfg.WellSoftening*s.cfg.WellSoftening)
			dist := math.Sqrt(distSq)
			if dist > 1e-9 {
				p.vel.X += delta.X / dist * force
				p.vel.Y += delta.Y / dist * force
			}
		}

		if s.repulsor != nil {
			delta := pos2.Sub(*s.repulsor)
			dist := delta.Length()
			if dist < s.cfg.RepulsorRadius && dist > 1e-9 {
				falloff := 1 - dist/s.cfg.RepulsorRadius
				push := s.repulsorStr * falloff
				p.vel.X += delta.X / dist * push
				p.vel.Y += delta.Y / dist * push
			}
		}

		if s.vortex != nil {
			delta := pos2.Sub(*s.vortex)
			dist := delta.Length()
			if dist < s.cfg.VortexRadius && dist > 1e-9 {
				falloff := 1 - dist/s.cfg.VortexRadius
				tangent := delta.Perp().Scale(1 / dist)
				p.vel.X += tangent.X * s.cfg.VortexStrength * falloff
				p.vel.Y += tangent.Y * s.cfg.VortexStrength * falloff
				// Small inward bias keeps the spiral tight.
				p.vel.X -= delta.X / dist * s.cfg.VortexStrength * s.cfg.VortexInwardBias * falloff
				p.vel.Y -= delta.Y / dist * s.cfg.VortexStrength * s.cfg.VortexInwardBias * falloff
			}
		}

		// Rest spring, then damping, then position update.
		p.vel.X += (p.rest.X - p.pos.X) * s.cfg.Stiffness
		p.vel.Y += (p.rest.Y - p.pos.Y) * s.cfg.Stiffness

		p.vel.X *= s.cfg.Damping
		p.vel.Y *= s.cfg.Damping
		p.vel.Z *= s.cfg.Damping

		p.pos.X += p.vel.X
		p.pos.Y += p.vel.Y
		p.pos.Z += p.vel.Z
	}
}

// Snapshot is the render-ready copy of the field state for one tick.
type Snapshot struct {
	Cols            int            `json:"cols"`
	Rows            int            `json:"rows"`
	Positions       []physics.Vec3 `json:"positions"`
	RippleIntensity []float64      `json:"rippleIntensity"`
	SurgeIntensity  []float64      `json:"surgeIntensity"`
	VelocityMag     []float64      `json:"velocityMag"`
	SurgePhase      string         `json:"surgePhase"`
	SurgeCenter     *physics.Vec2  `json:"surgeCenter,omitempty"`
}

// Snapshot copies the current field state into render-ready buffers.
func (s *Simulator) Snapshot() Snapshot {
	n := len(s.points)
	snap := Snapshot{
		Cols:            s.cfg.Cols,
		Rows:            s.cfg.Rows,
		Positions:       make([]physics.Vec3, n),
		RippleIntensity: make([]float64, n),
		SurgeIntensity:  make([]float64, n),
		VelocityMag:     make([]float64, n),
		SurgePhase:      s.surge.phase.String(),
	}

	var surgeCenter physics.Vec2
	surgeActive := s.surge.phase != PhaseInactive
	if surgeActive {
		surgeCenter = s.surge.center
		c := surgeCenter
		snap.SurgeCenter = &c
	}
	radius := s.surgeRadius()

	for i := range s.points {
		p := &s.points[i]
		snap.Positions[i] = p.pos
		snap.RippleIntensity[i] = p.ripple
		snap.VelocityMag[i] = p.vel.Length()

		if surgeActive && radius > 0 {
			dist := surgeCenter.Distance(physics.Vec2{X: p.pos.X, Y: p.pos.Y})
			if dist < radius {
				snap.SurgeIntensity[i] = (1 - dist/radius) * s.surge.chargeIntensity
			}
		}
	}

	return snap
}

// RippleIntensityAt returns the current ripple intensity of the point
// at grid coordinates (col, row), or 0 for out-of-range coordinates.
func (s *Simulator) RippleIntensityAt(col, row int) float64 {
	if col < 0 || col >= s.cfg.Cols || row < 0 || row >= s.cfg.Rows {
		return 0
	}
	return s.points[row*s.cfg.Cols+col].ripple
}

// PositionAt returns the current position of the point at grid
// coordinates (col, row), or a zero vector for out-of-range
// coordinates.
func (s *Simulator) PositionAt(col, row int) physics.Vec3 {
	if col < 0 || col >= s.cfg.Cols || row < 0 || row >= s.cfg.Rows {
		return physics.Vec3{}
	}
	return s.points[row*s.cfg.Cols+col].pos
}
