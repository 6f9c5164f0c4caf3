package dotfield

import (
	"math/rand"
	"testing"

	"github.com/ronkaldes/lumina/internal/physics"
)

func TestStartChargeInitializesOnce(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	s.Update(1000)
	s.StartCharge(center, 0.2)
	start := s.surge.chargeStartMs

	s.Update(1500)
	s.StartCharge(center, 0.6)
	s.Update(2000)
	s.StartCharge(physics.Vec2{X: center.X + 0.1, Y: center.Y}, 0.9)

	if s.SurgePhase() != PhaseCharging {
		t.Fatalf("expected phase charging, got %v", s.SurgePhase())
	}
	if s.surge.chargeStartMs != start {
		t.Errorf("expected charge start time unchanged, got %d want %d", s.surge.chargeStartMs, start)
	}
	if s.surge.chargeIntensity != 0.9 {
		t.Errorf("expected intensity updated to 0.9, got %f", s.surge.chargeIntensity)
	}
}

func TestTriggerBurstWhileInactiveIsNoOp(t *testing.T) {
	s := testField()
	s.Update(0)

	if energy := s.TriggerBurst(); energy != 0 {
		t.Errorf("expected zero energy from inactive burst, got %f", energy)
	}
	if s.SurgePhase() != PhaseInactive {
		t.Errorf("expected phase unchanged, got %v", s.SurgePhase())
	}
}

func TestSurgePhaseMachineFullCycle(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	s.Update(0)
	s.StartCharge(center, 0.5)
	if s.SurgePhase() != PhaseCharging {
		t.Fatalf("expected charging, got %v", s.SurgePhase())
	}

	// Charge for the full duration so the stored energy saturates.
	s.Update(s.cfg.Surge.FullChargeMs)

	energy := s.TriggerBurst()
	if energy <= 0 {
		t.Fatal("expected positive stored energy from a charged burst")
	}
	if energy != s.cfg.Surge.BurstVelocity {
		t.Errorf("expected saturated energy %f, got %f", s.cfg.Surge.BurstVelocity, energy)
	}
	if s.SurgePhase() != PhaseBursting {
		t.Fatalf("expected bursting, got %v", s.SurgePhase())
	}

	// A charge attempt while bursting is ignored.
	s.StartCharge(center, 1)
	if s.SurgePhase() != PhaseBursting {
		t.Fatal("expected charge attempt during burst to be ignored")
	}

	// After the burst duration the phase auto-returns to inactive and
	// burst fields are zeroed.
	s.Update(s.cfg.Surge.FullChargeMs + s.cfg.Surge.BurstDurationMs + 16)
	if s.SurgePhase() != PhaseInactive {
		t.Fatalf("expected inactive after burst duration, got %v", s.SurgePhase())
	}
	if s.surge != (surge{}) {
		t.Errorf("expected surge state zeroed after burst, got %+v", s.surge)
	}
}

func TestChargingCollapsesPointsInward(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	cols, rows := s.Size()
	probeCol, probeRow := cols/2+2, rows/2
	before := s.PositionAt(probeCol, probeRow)
	distBefore := center.Distance(physics.Vec2{X: before.X, Y: before.Y})

	s.Update(0)
	s.StartCharge(center, 1)
	for tick := int64(1); tick <= 60; tick++ {
		s.Update(tick * 16)
		s.StartCharge(center, 1)
	}

	after := s.PositionAt(probeCol, probeRow)
	distAfter := center.Distance(physics.Vec2{X: after.X, Y: after.Y})

	if distAfter >= distBefore {
		t.Errorf("expected inward collapse while charging: before=%f after=%f", distBefore, distAfter)
	}
	if after.Z >= 0 {
		t.Errorf("expected negative depth displacement while charging, got %f", after.Z)
	}
}

func TestBurstDispersesCollapsedPoints(t *testing.T) {
	s := New(DefaultConfig(), rand.New(rand.NewSource(11)))
	center := s.centerPoint()

	s.Update(0)
	s.StartCharge(center, 1)
	for tick := int64(1); tick <= 100; tick++ {
		s.Update(tick * 16)
		s.StartCharge(center, 1)
	}

	cols, rows := s.Size()
	probeCol, probeRow := cols/2+2, rows/2
	collapsed := s.PositionAt(probeCol, probeRow)
	distCollapsed := center.Distance(physics.Vec2{X: collapsed.X, Y: collapsed.Y})

	s.TriggerBurst()
	for tick := int64(101); tick <= 160; tick++ {
		s.Update(tick * 16)
	}

	dispersed := s.PositionAt(probeCol, probeRow)
	distDispersed := center.Distance(physics.Vec2{X: dispersed.X, Y: dispersed.Y})

	if distDispersed <= distCollapsed {
		t.Errorf("expected burst to disperse point outward: collapsed=%f dispersed=%f", distCollapsed, distDispersed)
	}
}

func TestDepthDecaysWhileInactive(t *testing.T) {
	s := testField()
	center := s.centerPoint()

	s.Update(0)
	s.StartCharge(center, 1)
	for tick := int64(1); tick <= 60; tick++ {
		s.Update(tick * 16)
	}

	cols, rows := s.Size()
	probeCol, probeRow := cols/2, rows/2+1
	charged := s.PositionAt(probeCol, probeRow).Z
	if charged >= 0 {
		t.Fatal("expected depth displacement while charging")
	}

	s.TriggerBurst()
	// Run far past the burst so the phase is inactive and decay applies.
	for tick := int64(61); tick <= 600; tick++ {
		s.Update(tick * 16)
	}
	if s.SurgePhase() != PhaseInactive {
		t.Fatalf("expected inactive phase, got %v", s.SurgePhase())
	}

	final := s.PositionAt(probeCol, probeRow).Z
	if final < charged/10 {
		t.Errorf("expected depth to decay toward zero: charged=%f final=%f", charged, final)
	}
}
