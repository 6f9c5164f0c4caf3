package mode

import (
	"github.com/ronkaldes/lumina/internal/physics"
	"github.com/ronkaldes/lumina/internal/physics/cord"
)

// HitConfig holds the proximity hit-test radii. All fields have
// defaults; zero values are replaced by DefaultHitConfig values.
type HitConfig struct {
	// CordRadius is the grab distance around any cord particle.
	CordRadius float64
	// BodyRadius is the grab distance around the bulb body center.
	BodyRadius float64
	// BodyOffset is the vertical distance from the cord's free end down
	// to the bulb body center.
	BodyOffset float64
}

// DefaultHitConfig returns the hit radii used by the installation.
func DefaultHitConfig() HitConfig {
	return HitConfig{
		CordRadius: 0.1,
		BodyRadius: 0.22,
		BodyOffset: 0.15,
	}
}

func (c HitConfig) withDefaults() HitConfig {
	d := DefaultHitConfig()
	if c.CordRadius <= 0 {
		c.CordRadius = d.CordRadius
	}
	if c.BodyRadius <= 0 {
		c.BodyRadius = d.BodyRadius
	}
	if c.BodyOffset <= 0 {
		c.BodyOffset = d.BodyOffset
	}
	return c
}

// ProximityHitTester answers zone checks by distance to the live cord
// geometry: the cord zone is a capsule of particle positions, the body
// zone a sphere hanging under the free end. Bind the cord after the
// mode constructs it.
type ProximityHitTester struct {
	cfg  HitConfig
	cord *cord.Simulator
}

// NewProximityHitTester creates an unbound tester.
func NewProximityHitTester(cfg HitConfig) *ProximityHitTester {
	return &ProximityHitTester{cfg: cfg.withDefaults()}
}

// Bind attaches the tester to the cord it tests against.
func (h *ProximityHitTester) Bind(c *cord.Simulator) {
	h.cord = c
}

// HitCord reports whether pos is within the grab radius of any cord
// particle.
func (h *ProximityHitTester) HitCord(pos physics.Vec3) bool {
	if h.cord == nil {
		return false
	}
	for _, p := range h.cord.ParticlePositions() {
		if pos.Distance(p) <= h.cfg.CordRadius {
			return true
		}
	}
	return false
}

// HitBody reports whether pos is within the bulb body sphere. The body
// hangs under the cord's free end.
func (h *ProximityHitTester) HitBody(pos physics.Vec3) bool {
	if h.cord == nil {
		return false
	}
	positions := h.cord.ParticlePositions()
	center := positions[len(positions)-1]
	center.Y -= h.cfg.BodyOffset
	return pos.Distance(center) <= h.cfg.BodyRadius
}
