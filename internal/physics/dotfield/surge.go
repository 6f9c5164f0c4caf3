package dotfield

import (
	"math"

	"github.com/ronkaldes/lumina/internal/physics"
)

// Phase is the quasar-surge phase.
type Phase int

const (
	// PhaseInactive means no surge force; residual depth decays.
	PhaseInactive Phase = iota
	// PhaseCharging means points spiral inward toward the center.
	PhaseCharging
	// PhaseBursting means stored energy disperses points outward.
	PhaseBursting
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCharging:
		return "charging"
	case PhaseBursting:
		return "bursting"
	default:
		return "inactive"
	}
}

// surge is the single per-field quasar-surge instance. Fields beyond
// phase and center are only meaningful during their own phase and are
// zeroed on every transition out of it.
type surge struct {
	phase           Phase
	center          physics.Vec2
	chargeStartMs   int64
	chargeIntensity float64
	burstStartMs    int64
	storedEnergy    float64
}

// StartCharge begins (or continues) the charging phase at center with
// the given intensity in [0,1], normally derived from a gesture hold
// duration. Repeated calls while already charging update the center and
// intensity but leave the charge start time untouched; calls while
// bursting are ignored.
func (s *Simulator) StartCharge(center physics.Vec2, intensity float64) {
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}

	switch s.surge.phase {
	case PhaseBursting:
		return
	case PhaseCharging:
		s.surge.center = center
		s.surge.chargeIntensity = intensity
	default:
		s.surge = surge{
			phase:           PhaseCharging,
			center:          center,
			chargeStartMs:   s.lastUpdateMs,
			chargeIntensity: intensity,
		}
	}
}

// TriggerBurst releases the charge, transitioning to the bursting
// phase, and returns the stored energy. Calling it while not charging
// returns 0 and leaves the phase unchanged.
func (s *Simulator) TriggerBurst() float64 {
	if s.surge.phase != PhaseCharging {
		return 0
	}

	chargeMs := s.lastUpdateMs - s.surge.chargeStartMs
	charge := float64(chargeMs) / float64(s.cfg.Surge.FullChargeMs)
	if charge > 1 {
		charge = 1
	}
	if charge < 0 {
		charge = 0
	}

	energy := charge * s.cfg.Surge.BurstVelocity

	s.surge = surge{
		phase:           PhaseBursting,
		center:          s.surge.center,
		chargeIntensity: s.surge.chargeIntensity,
		burstStartMs:    s.lastUpdateMs,
		storedEnergy:    energy,
	}
	return energy
}

// SurgePhase returns the current quasar-surge phase.
func (s *Simulator) SurgePhase() Phase {
	return s.surge.phase
}

// surgeRadius returns the current capture radius, which grows with the
// charge intensity.
func (s *Simulator) surgeRadius() float64 {
	if s.surge.phase == PhaseInactive {
		return 0
	}
	return s.cfg.Surge.RadiusBase + s.cfg.Surge.RadiusGrowth*s.surge.chargeIntensity
}

// updateSurge integrates the quasar-surge phase logic for one tick.
func (s *Simulator) updateSurge(nowMs int64) {
	sc := s.cfg.Surge

	switch s.surge.phase {
	case PhaseInactive:
		// Residual depth decays back to the plane.
		for i := range s.points {
			s.points[i].pos.Z *= sc.DepthDecay
		}

	case PhaseCharging:
		radius := s.surgeRadius()
		intensity := s.surge.chargeIntensity
		center := s.surge.center

		for i := range s.points {
			p := &s.points[i]
			if p.pinned {
				continue
			}
			delta := center.Sub(physics.Vec2{X: p.pos.X, Y: p.pos.Y})
			dist := delta.Length()
			if dist >= radius || dist < 1e-9 {
				continue
			}
			prox := 1 - dist/radius

			// Inward pull steepens sharply near the core.
			coreMult := 1 + sc.CoreSteepness*prox*prox*prox
			pull := sc.PullStrength * intensity * prox * coreMult
			p.vel.X += delta.X / dist * pull
			p.vel.Y += delta.Y / dist * pull

			// Tangential spiral shifts toward pure inward collapse as
			// proximity increases.
			tangent := delta.Perp().Scale(1 / dist)
			spiral := sc.SpiralStrength * intensity * prox * (1 - prox)
			p.vel.X += tangent.X * spiral
			p.vel.Y += tangent.Y * spiral

			// Depth displacement eases toward its target.
			targetZ := -sc.MaxDepth * prox * intensity
			p.pos.Z += (targetZ - p.pos.Z) * sc.DepthEase

			// Stronger damping near the core locks collapsing points.
			damp := 1 - prox*(1-sc.CoreDamping)
			p.vel.X *= damp
			p.vel.Y *= damp
		}

	case PhaseBursting:
		ageMs := nowMs - s.surge.burstStartMs
		if ageMs >= sc.BurstDurationMs {
			s.surge = surge{}
			return
		}

		center := s.surge.center
		energy := s.surge.storedEnergy

		// Initial explosive impulse: more compressed points get more
		// kick, with small angular jitter for organic dispersal.
		if ageMs <= sc.ImpulseWindowMs {
			for i := range s.points {
				p := &s.points[i]
				if p.pinned {
					continue
				}
				delta := physics.Vec2{X: p.pos.X, Y: p.pos.Y}.Sub(center)
				dist := delta.Length()
				if dist < 1e-9 {
					continue
				}
				kick := energy / (dist + sc.Softening)
				angle := math.Atan2(delta.Y, delta.X)
				if s.rng != nil {
					angle += (s.rng.Float64()*2 - 1) * sc.AngularJitter
				}
				p.vel.X += math.Cos(angle) * kick
				p.vel.Y += math.Sin(angle) * kick
				p.pos.Z *= 0.5
			}
		}

		// Expanding shockwave ring, with an extra push to points still
		// inside the ring so no clump is left behind.
		ringRadius := sc.ShockSpeed * float64(ageMs) / 1000.0
		fade := 1 - float64(ageMs)/float64(sc.BurstDurationMs)
		for i := range s.points {
			p := &s.points[i]
			if p.pinned {
				continue
			}
			delta := physics.Vec2{X: p.pos.X, Y: p.pos.Y}.Sub(center)
			dist := delta.Length()
			if dist < 1e-9 {
				continue
			}

			band := math.Abs(dist - ringRadius)
			if band < sc.ShockWidth {
				push := sc.ShockImpulse * (1 - band/sc.ShockWidth) * fade
				p.vel.X += delta.X / dist * push
				p.vel.Y += delta.Y / dist * push
			} else if dist < ringRadius-sc.ShockWidth {
				push := sc.ShockImpulse * 0.4 * fade
				p.vel.X += delta.X / dist * push
				p.vel.Y += delta.Y / dist * push
			}
		}
	}
}
