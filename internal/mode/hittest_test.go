package mode

import (
	"testing"

	"github.com/ronkaldes/lumina/internal/physics"
	"github.com/ronkaldes/lumina/internal/physics/cord"
)

func TestProximityHitTesterUnboundMissesEverything(t *testing.T) {
	h := NewProximityHitTester(HitConfig{})
	if h.HitCord(physics.Vec3{}) || h.HitBody(physics.Vec3{}) {
		t.Error("expected unbound tester to report no hits")
	}
}

func TestProximityHitTesterTracksCordGeometry(t *testing.T) {
	anchor := physics.Vec3{X: 0, Y: 1.6, Z: 0}
	c := cord.New(cord.Config{}, anchor, nil)
	h := NewProximityHitTester(HitConfig{})
	h.Bind(c)

	// On the hanging chain, mid-height.
	if !h.HitCord(physics.Vec3{X: 0.05, Y: 1.2, Z: 0}) {
		t.Error("expected hit next to a cord particle")
	}
	// Far off to the side.
	if h.HitCord(physics.Vec3{X: 1.0, Y: 1.2, Z: 0}) {
		t.Error("expected miss away from the cord")
	}

	// Body sphere hangs under the free end.
	positions := c.ParticlePositions()
	end := positions[len(positions)-1]
	bodyCenter := physics.Vec3{X: end.X, Y: end.Y - DefaultHitConfig().BodyOffset, Z: end.Z}
	if !h.HitBody(bodyCenter) {
		t.Error("expected hit at the body center")
	}
	if h.HitBody(physics.Vec3{X: end.X, Y: end.Y - 1.0, Z: end.Z}) {
		t.Error("expected miss well below the body")
	}
}
