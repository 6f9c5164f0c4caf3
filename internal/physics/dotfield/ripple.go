package dotfield

import (
	"math"

	"github.com/ronkaldes/lumina/internal/physics"
)

// ripple is one expanding pulse. The ring grows from the center at
// constant speed and expires after the configured duration.
type ripple struct {
	center  physics.Vec2
	startMs int64
}

// TriggerRipple starts a new pulse at p. When the concurrent pulse cap
// is exceeded the oldest pulse is evicted.
func (s *Simulator) TriggerRipple(p physics.Vec2) {
	s.ripples = append(s.ripples, ripple{center: p, startMs: s.lastUpdateMs})
	if len(s.ripples) > s.cfg.MaxRipples {
		s.ripples = s.ripples[len(s.ripples)-s.cfg.MaxRipples:]
	}
}

// ActiveRipples returns the number of live pulses.
func (s *Simulator) ActiveRipples() int {
	return len(s.ripples)
}

// updateRipples integrates every live pulse: points within the band
// around the ring's current radius receive a visual intensity and an
// outward velocity impulse, both scaled by ring proximity and age fade.
func (s *Simulator) updateRipples(nowMs int64) {
	live := s.ripples[:0]
	for _, r := range s.ripples {
		ageMs := nowMs - r.startMs
		if ageMs >= s.cfg.RippleDurationMs {
			continue
		}
		live = append(live, r)

		radius := s.cfg.RippleSpeed * float64(ageMs) / 1000.0
		ageFade := 1 - float64(ageMs)/float64(s.cfg.RippleDurationMs)

		for i := range s.points {
			p := &s.points[i]
			delta := physics.Vec2{X: p.pos.X, Y: p.pos.Y}.Sub(r.center)
			dist := delta.Length()

			band := math.Abs(dist - radius)
			if band >= s.cfg.RippleWidth {
				continue
			}
			ringProx := 1 - band/s.cfg.RippleWidth
			factor := ringProx * ageFade

			if factor > p.ripple {
				p.ripple = factor
			}

			if p.pinned || dist < 1e-9 {
				continue
			}
			impulse := s.cfg.RippleImpulse * factor
			p.vel.X += delta.X / dist * impulse
			p.vel.Y += delta.Y / dist * impulse
		}
	}
	s.ripples = live
}
