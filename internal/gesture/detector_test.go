package gesture

import (
	"testing"

	"github.com/ronkaldes/lumina/internal/detector"
)

var pinchCenter = detector.Point3D{X: 0.5, Y: 0.5, Z: 0}

// eventsOf filters events by kind.
func eventsOf(events []Event, k Kind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func TestPinchStartsOnFirstQualifyingFrame(t *testing.T) {
	d := NewDetector(Config{})

	hand := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	events := d.Detect([]detector.HandLandmarks{hand}, 1000)

	pinches := eventsOf(events, KindPinchIndex)
	if len(pinches) != 1 {
		t.Fatalf("expected one index-pinch event, got %d", len(pinches))
	}

	ev := pinches[0]
	if ev.State != StateStarted {
		t.Errorf("expected started, got %v", ev.State)
	}
	if ev.Hand != HandRight {
		t.Errorf("expected right hand, got %v", ev.Hand)
	}
	if ev.Strength <= 0.5 {
		t.Errorf("expected strength > 0.5 for a tight pinch, got %f", ev.Strength)
	}
}

func TestPinchLifecycleStartedActiveEnded(t *testing.T) {
	d := NewDetector(Config{})

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	released := detector.PinchHand("Right", detector.IndexTip, 0.2, pinchCenter)

	ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1000), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Fatalf("expected started on frame 1, got %v", ev)
	}

	ev = eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1033), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateActive {
		t.Fatalf("expected active on frame 2, got %v", ev)
	}

	ev = eventsOf(d.Detect([]detector.HandLandmarks{released}, 1066), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateEnded {
		t.Fatalf("expected ended on release, got %v", ev)
	}

	// Once released and idle, further released frames emit nothing.
	ev = eventsOf(d.Detect([]detector.HandLandmarks{released}, 1100), KindPinchIndex)
	if len(ev) != 0 {
		t.Errorf("expected no events while idle, got %v", ev)
	}
}

func TestHysteresisBandHoldsActive(t *testing.T) {
	d := NewDetector(Config{})

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	// Between threshold (0.06) and release threshold (0.09).
	band := detector.PinchHand("Right", detector.IndexTip, 0.075, pinchCenter)

	d.Detect([]detector.HandLandmarks{engaged}, 1000)

	ev := eventsOf(d.Detect([]detector.HandLandmarks{band}, 1033), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateActive {
		t.Fatalf("expected active inside the hysteresis band, got %v", ev)
	}

	ev = eventsOf(d.Detect([]detector.HandLandmarks{band}, 1066), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateActive {
		t.Errorf("expected band to hold active without oscillating, got %v", ev)
	}
}

func TestSustainCounterResetsOnDip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PinchIndex.MinSustainFrames = 3
	d := NewDetector(cfg)

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	released := detector.PinchHand("Right", detector.IndexTip, 0.2, pinchCenter)

	// Two engaged frames: not enough sustain, no events.
	for i, ts := range []int64{1000, 1033} {
		if ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, ts), KindPinchIndex); len(ev) != 0 {
			t.Fatalf("expected no event on engaged frame %d, got %v", i+1, ev)
		}
	}

	// Single-frame dip resets the counter.
	d.Detect([]detector.HandLandmarks{released}, 1066)

	// Re-engagement must re-accumulate from zero: frames 1 and 2 silent,
	// frame 3 starts.
	if ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1100), KindPinchIndex); len(ev) != 0 {
		t.Fatalf("expected counter reset after dip, got %v", ev)
	}
	if ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1133), KindPinchIndex); len(ev) != 0 {
		t.Fatalf("expected no event on second re-engaged frame, got %v", ev)
	}
	ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1166), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Fatalf("expected started after full re-accumulation, got %v", ev)
	}
}

func TestCooldownBlocksRetrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PinchIndex.CooldownMs = 300
	d := NewDetector(cfg)

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	released := detector.PinchHand("Right", detector.IndexTip, 0.2, pinchCenter)

	d.Detect([]detector.HandLandmarks{engaged}, 1000)  // started
	d.Detect([]detector.HandLandmarks{released}, 1033) // ended

	// Re-engagement within the cooldown window must not start.
	ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1100), KindPinchIndex)
	if len(ev) != 0 {
		t.Fatalf("expected cooldown to block retrigger, got %v", ev)
	}

	// After the window it may start again.
	ev = eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 1400), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Errorf("expected started after cooldown, got %v", ev)
	}
}

func TestHandsTrackIndependently(t *testing.T) {
	d := NewDetector(Config{})

	right := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	leftOpen := detector.OpenPalmHand("Left")

	events := d.Detect([]detector.HandLandmarks{leftOpen, right}, 1000)

	pinches := eventsOf(events, KindPinchIndex)
	if len(pinches) != 1 {
		t.Fatalf("expected exactly one pinch event, got %d", len(pinches))
	}
	if pinches[0].Hand != HandRight {
		t.Errorf("expected the pinch attributed to the right hand, got %v", pinches[0].Hand)
	}

	// Releasing the right pinch must not disturb a left pinch started later.
	leftPinch := detector.PinchHand("Left", detector.IndexTip, 0.02, pinchCenter)
	rightOpen := detector.OpenPalmHand("Right")
	events = d.Detect([]detector.HandLandmarks{leftPinch, rightOpen}, 1033)

	var leftStarted, rightEnded bool
	for _, e := range eventsOf(events, KindPinchIndex) {
		if e.Hand == HandLeft && e.State == StateStarted {
			leftStarted = true
		}
		if e.Hand == HandRight && e.State == StateEnded {
			rightEnded = true
		}
	}
	if !leftStarted {
		t.Error("expected left pinch to start independently")
	}
	if !rightEnded {
		t.Error("expected right pinch to end on its own hand")
	}
}

func TestDuplicateHandednessDrivesOneSlotOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PinchIndex.MinSustainFrames = 2
	d := NewDetector(cfg)

	a := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	b := detector.PinchHand("Right", detector.IndexTip, 0.02, detector.Point3D{X: 0.4, Y: 0.5})

	// Two same-handedness detections share one tracker slot. Were both
	// to advance it, the two-frame sustain would already be met here.
	if ev := eventsOf(d.Detect([]detector.HandLandmarks{a, b}, 1000), KindPinchIndex); len(ev) != 0 {
		t.Fatalf("expected no event before sustain, got %v", ev)
	}

	ev := eventsOf(d.Detect([]detector.HandLandmarks{a, b}, 1033), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Fatalf("expected exactly one started event for the shared slot, got %v", ev)
	}
}

func TestFistEmitsHoldDuration(t *testing.T) {
	d := NewDetector(Config{})

	fist := detector.FistHand("Right")

	// MinSustainFrames is 2 for the fist: first frame accumulates only.
	if ev := eventsOf(d.Detect([]detector.HandLandmarks{fist}, 1000), KindFist); len(ev) != 0 {
		t.Fatalf("expected no fist event before sustain, got %v", ev)
	}

	ev := eventsOf(d.Detect([]detector.HandLandmarks{fist}, 1033), KindFist)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Fatalf("expected fist started on second frame, got %v", ev)
	}
	if ev[0].HoldMs != 0 {
		t.Errorf("expected zero hold duration at start, got %d", ev[0].HoldMs)
	}

	ev = eventsOf(d.Detect([]detector.HandLandmarks{fist}, 1500), KindFist)
	if len(ev) != 1 || ev[0].State != StateActive {
		t.Fatalf("expected fist active, got %v", ev)
	}
	if ev[0].HoldMs != 467 {
		t.Errorf("expected hold duration 467ms, got %d", ev[0].HoldMs)
	}

	open := detector.OpenPalmHand("Right")
	ev = eventsOf(d.Detect([]detector.HandLandmarks{open}, 1533), KindFist)
	if len(ev) != 1 || ev[0].State != StateEnded {
		t.Fatalf("expected fist ended on open palm, got %v", ev)
	}
}

func TestStaleTimestampReturnsCachedResult(t *testing.T) {
	d := NewDetector(Config{})

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	first := d.Detect([]detector.HandLandmarks{engaged}, 1000)

	// An out-of-order timestamp must not recompute or crash.
	stale := d.Detect([]detector.HandLandmarks{}, 500)
	if len(stale) != len(first) {
		t.Fatalf("expected cached events for stale timestamp, got %v", stale)
	}
	for i := range first {
		if stale[i] != first[i] {
			t.Errorf("event %d differs from cached result", i)
		}
	}
}

func TestResetClearsTrackers(t *testing.T) {
	d := NewDetector(Config{})

	engaged := detector.PinchHand("Right", detector.IndexTip, 0.02, pinchCenter)
	d.Detect([]detector.HandLandmarks{engaged}, 1000)

	d.Reset()

	// After reset the tracker is idle again: the next engaged frame is a
	// fresh start, not a continuation. The 1s gap clears the cooldown.
	ev := eventsOf(d.Detect([]detector.HandLandmarks{engaged}, 2000), KindPinchIndex)
	if len(ev) != 1 || ev[0].State != StateStarted {
		t.Errorf("expected fresh start after reset, got %v", ev)
	}
}
