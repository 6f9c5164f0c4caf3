package dotfield

import (
	"math/rand"
	"testing"

	"github.com/ronkaldes/lumina/internal/physics"
)

func testField() *Simulator {
	cfg := DefaultConfig()
	cfg.Cols = 24
	cfg.Rows = 24
	cfg.Spacing = 0.5
	return New(cfg, rand.New(rand.NewSource(7)))
}

func (s *Simulator) centerPoint() physics.Vec2 {
	b := s.Bounds()
	return physics.Vec2{X: b.X / 2, Y: b.Y / 2}
}

func TestBorderPointsNeverMove(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	s.SetGravityWell(center)
	s.SetVortex(center)
	s.TriggerRipple(center)
	for tick := int64(0); tick < 120; tick++ {
		s.Update(tick * 16)
	}

	cols, rows := s.Size()
	for c := 0; c < cols; c++ {
		top := s.PositionAt(c, 0)
		if top.X != float64(c)*0.5 || top.Y != 0 {
			t.Fatalf("border point (%d,0) moved to %v", c, top)
		}
	}
	for r := 0; r < rows; r++ {
		left := s.PositionAt(0, r)
		if left.X != 0 || left.Y != float64(r)*0.5 {
			t.Fatalf("border point (0,%d) moved to %v", r, left)
		}
	}
}

func TestRippleIntensityPeaksOnRing(t *testing.T) {
	s := testField()
	cols, rows := s.Size()
	centerCol, centerRow := cols/2, rows/2
	center := physics.Vec2{X: float64(centerCol) * 0.5, Y: float64(centerRow) * 0.5}

	s.Update(0)
	s.TriggerRipple(center)

	// Advance until the ring radius reaches a point 4 columns to the
	// right of the center (rest distance 2.0 field units).
	targetDist := 2.0
	msToReach := int64(targetDist / s.cfg.RippleSpeed * 1000)
	s.Update(msToReach)

	onRing := s.RippleIntensityAt(centerCol+4, centerRow)
	further := s.RippleIntensityAt(centerCol+8, centerRow)

	if onRing <= 0 {
		t.Fatal("expected positive intensity on the ring")
	}
	if onRing <= further {
		t.Errorf("expected ring point intensity (%f) above a point beyond the ring (%f)", onRing, further)
	}
}

func TestRippleCapEvictsOldest(t *testing.T) {
	s := testField()
	s.Update(0)

	for i := 0; i < s.cfg.MaxRipples+3; i++ {
		s.TriggerRipple(physics.Vec2{X: float64(i)})
	}
	if got := s.ActiveRipples(); got != s.cfg.MaxRipples {
		t.Errorf("expected %d active ripples after overflow, got %d", s.cfg.MaxRipples, got)
	}
	if s.ripples[0].center.X != 3 {
		t.Errorf("expected the three oldest ripples evicted, first remaining center.X=%f", s.ripples[0].center.X)
	}
}

func TestGravityWellPullsInward(t *testing.T) {
	s := testField()
	center := s.centerPoint()
	s.SetGravityWell(center)

	cols, rows := s.Size()
	probeCol, probeRow := cols/2+3, rows/2
	before := s.PositionAt(probeCol, probeRow)
	distBefore := center.Distance(physics.Vec2{X: before.X, Y: before.Y})

	for tick := int64(1); tick <= 20; tick++ {
		s.Update(tick * 16)
	}

	after := s.PositionAt(probeCol, probeRow)
	distAfter := center.Distance(physics.Vec2{X: after.X, Y: after.Y})

	if distAfter >= distBefore {
		t.Errorf("expected point to move toward the well: before=%f after=%f", distBefore, distAfter)
	}
}

func TestVortexOnlyAffectsPointsInRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cols = 24
	cfg.Rows = 24
	cfg.Spacing = 0.5
	cfg.VortexRadius = 1.0
	s := New(cfg, rand.New(rand.NewSource(7)))

	center := s.centerPoint()
	s.SetVortex(center)

	farCol, farRow := 2, 2 // well outside the radius, not on the border
	farBefore := s.PositionAt(farCol, farRow)

	for tick := int64(1); tick <= 30; tick++ {
		s.Update(tick * 16)
	}

	if got := s.PositionAt(farCol, farRow); got != farBefore {
		t.Errorf("expected point outside vortex radius to stay at rest, moved to %v", got)
	}
}

func TestPluckReleaseSnapsBack(t *testing.T) {
	s := testField()
	center := s.centerPoint()
	pluck := physics.Vec2{X: center.X + 0.6, Y: center.Y}

	s.SetPluck(pluck)
	for tick := int64(1); tick <= 40; tick++ {
		s.Update(tick * 16)
	}

	cols, rows := s.Size()
	probeCol, probeRow := cols/2, rows/2
	held := s.PositionAt(probeCol, probeRow)
	rest := physics.Vec2{X: float64(probeCol) * 0.5, Y: float64(probeRow) * 0.5}
	heldDist := rest.Distance(physics.Vec2{X: held.X, Y: held.Y})
	if heldDist < 1e-4 {
		t.Fatal("expected held point displaced toward the pluck")
	}

	s.ClearPluck()
	for tick := int64(41); tick <= 400; tick++ {
		s.Update(tick * 16)
	}

	released := s.PositionAt(probeCol, probeRow)
	releasedDist := rest.Distance(physics.Vec2{X: released.X, Y: released.Y})
	if releasedDist > heldDist/4 {
		t.Errorf("expected point to snap back after release: held=%f released=%f", heldDist, releasedDist)
	}
}

func TestClearingCentersStopsForces(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	s.SetGravityWell(center)
	s.SetVortex(center)
	s.SetRepulsor(center, 0.3)
	s.SetPluck(center)

	s.ClearGravityWell()
	s.ClearVortex()
	s.ClearRepulsor()
	s.ClearPluck()

	for tick := int64(1); tick <= 10; tick++ {
		s.Update(tick * 16)
	}

	cols, rows := s.Size()
	probe := s.PositionAt(cols/2+1, rows/2)
	rest := physics.Vec2{X: float64(cols/2+1) * 0.5, Y: float64(rows/2) * 0.5}
	if d := rest.Distance(physics.Vec2{X: probe.X, Y: probe.Y}); d > 1e-9 {
		t.Errorf("expected no displacement with all centers cleared, got %f", d)
	}
}
