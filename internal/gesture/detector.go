// Package gesture converts per-frame hand landmarks into typed gesture
// lifecycle events. Each supported kind runs a hysteresis + debounce +
// sustain state machine per hand, so noisy single-frame detections
// never fire and an engaged gesture never flickers at the threshold
// boundary.
package gesture

import (
	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/physics"
)

// Kind identifies a supported gesture.
type Kind int

const (
	// KindPinchIndex is a thumb + index fingertip pinch.
	KindPinchIndex Kind = iota
	// KindPinchMiddle is a thumb + middle fingertip pinch.
	KindPinchMiddle
	// KindPinchRing is a thumb + ring fingertip pinch.
	KindPinchRing
	// KindPinchPinky is a thumb + pinky fingertip pinch.
	KindPinchPinky
	// KindFist is a closed fist.
	KindFist

	numKinds
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPinchIndex:
		return "pinch_index"
	case KindPinchMiddle:
		return "pinch_middle"
	case KindPinchRing:
		return "pinch_ring"
	case KindPinchPinky:
		return "pinch_pinky"
	case KindFist:
		return "fist"
	default:
		return "unknown"
	}
}

// fingertip returns the landmark index paired with the thumb for a
// pinch kind.
func (k Kind) fingertip() int {
	switch k {
	case KindPinchMiddle:
		return detector.MiddleTip
	case KindPinchRing:
		return detector.RingTip
	case KindPinchPinky:
		return detector.PinkyTip
	default:
		return detector.IndexTip
	}
}

// State is a gesture lifecycle state.
type State int

const (
	// StateStarted is the first qualifying frame of a gesture.
	StateStarted State = iota
	// StateActive continues while the gesture stays engaged.
	StateActive
	// StateEnded fires once when an active gesture releases.
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Hand identifies the tracker slot for one physical hand.
type Hand int

const (
	// HandLeft is the left-hand tracker slot.
	HandLeft Hand = iota
	// HandRight is the right-hand tracker slot. Hands with unknown
	// handedness also land here.
	HandRight

	numHands
)

// String returns the hand name.
func (h Hand) String() string {
	if h == HandLeft {
		return "left"
	}
	return "right"
}

// handSlot maps a handedness label to a tracker slot.
func handSlot(handedness string) Hand {
	if handedness == "Left" || handedness == "left" {
		return HandLeft
	}
	return HandRight
}

// Event is one immutable gesture lifecycle event.
type Event struct {
	Kind  Kind  `json:"kind"`
	State State `json:"state"`
	Hand  Hand  `json:"hand"`
	// Position is the gesture contact point in world space.
	Position physics.Vec3 `json:"position"`
	// Normalized is the same point in raw landmark space.
	Normalized detector.Point3D `json:"normalized"`
	// Strength is 0-1; for pinches it is 1 - distance/releaseThreshold.
	Strength float64 `json:"strength"`
	// HoldMs is the time since the gesture started, for charge-style
	// consumers.
	HoldMs int64 `json:"holdMs"`
	// Timestamp is the detection timestamp in milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// tracker is the per-hand per-kind mutable detection record.
type tracker struct {
	active        bool
	lastTriggerMs int64
	sustained     int
	holdStartMs   int64
}

// Detector classifies one frame of multi-hand landmarks at a time. It
// keeps one tracker per gesture kind per hand and must be called with
// monotonically non-decreasing timestamps; a stale timestamp returns
// the previous frame's events unchanged. Not safe for concurrent use.
type Detector struct {
	cfg        Config
	trackers   [numKinds][numHands]tracker
	lastMs     int64
	seen       bool
	lastEvents []Event
}

// NewDetector creates a Detector. Zero-valued config fields fall back
// to DefaultConfig.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults()}
}

// Reset reinitializes every tracker to idle. Call it when hand tracking
// is lost or the active mode restarts.
func (d *Detector) Reset() {
	d.trackers = [numKinds][numHands]tracker{}
	d.lastEvents = nil
}

// Detect classifies one frame of hands and returns the gesture events
// it produced, at most one per hand per kind. A timestamp at or before
// the previous call's returns the cached previous result.
func (d *Detector) Detect(hands []detector.HandLandmarks, timestampMs int64) []Event {
	if d.seen && timestampMs <= d.lastMs {
		return d.lastEvents
	}
	d.seen = true
	d.lastMs = timestampMs

	var events []Event
	var claimed [numHands]bool
	for i := range hands {
		hand := &hands[i]
		slot := handSlot(hand.Handedness)

		// MediaPipe can report two hands with the same handedness under
		// occlusion. Only the first may drive the slot, or its sustain
		// counters advance twice per frame and events duplicate.
		if claimed[slot] {
			continue
		}
		claimed[slot] = true

		for k := Kind(0); k < numKinds; k++ {
			if ev, ok := d.classify(k, slot, hand, timestampMs); ok {
				events = append(events, ev)
			}
		}
	}

	d.lastEvents = events
	return events
}

// classify advances one tracker for one hand and kind, returning the
// event it produced, if any.
func (d *Detector) classify(k Kind, slot Hand, hand *detector.HandLandmarks, nowMs int64) (Event, bool) {
	var (
		engaged, released bool
		strength          float64
		contact           detector.Point3D
		ok                bool
	)

	if k == KindFist {
		engaged, released, strength, contact, ok = d.measureFist(hand)
	} else {
		engaged, released, strength, contact, ok = d.measurePinch(k, hand)
	}
	if !ok {
		return Event{}, false
	}

	tr := &d.trackers[k][slot]

	switch {
	case engaged:
		tr.sustained++
	default:
		// The raw condition is false: the sustain counter always resets,
		// even inside the hysteresis band.
		tr.sustained = 0
	}

	var state State
	switch {
	case !tr.active && engaged:
		minSustain, cooldown := d.gating(k)
		if tr.sustained < minSustain {
			return Event{}, false
		}
		if tr.lastTriggerMs != 0 && nowMs-tr.lastTriggerMs < cooldown {
			return Event{}, false
		}
		tr.active = true
		tr.lastTriggerMs = nowMs
		tr.holdStartMs = nowMs
		state = StateStarted

	case tr.active && released:
		tr.active = false
		state = StateEnded

	case tr.active:
		// Engaged, or inside the hysteresis band: hold active rather
		// than oscillating.
		state = StateActive

	default:
		return Event{}, false
	}

	return Event{
		Kind:       k,
		State:      state,
		Hand:       slot,
		Position:   d.cfg.Transform(contact),
		Normalized: contact,
		Strength:   strength,
		HoldMs:     nowMs - tr.holdStartMs,
		Timestamp:  nowMs,
	}, true
}

// gating returns the sustain and cooldown requirements for a kind.
func (d *Detector) gating(k Kind) (minSustain int, cooldownMs int64) {
	if k == KindFist {
		return d.cfg.Fist.MinSustainFrames, d.cfg.Fist.CooldownMs
	}
	pc := d.cfg.pinchConfig(k)
	return pc.MinSustainFrames, pc.CooldownMs
}

// measurePinch computes the engagement of a pinch kind from the thumb
// tip to fingertip distance.
func (d *Detector) measurePinch(k Kind, hand *detector.HandLandmarks) (engaged, released bool, strength float64, contact detector.Point3D, ok bool) {
	pc := d.cfg.pinchConfig(k)

	thumb := hand.Points[detector.ThumbTip]
	tip := hand.Points[k.fingertip()]
	dist := detector.Distance3D(thumb, tip)

	engaged = dist < pc.Threshold
	released = dist > pc.ReleaseThreshold

	strength = 1 - dist/pc.ReleaseThreshold
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}

	contact = detector.Point3D{
		X: (thumb.X + tip.X) / 2,
		Y: (thumb.Y + tip.Y) / 2,
		Z: (thumb.Z + tip.Z) / 2,
	}
	return engaged, released, strength, contact, true
}

// measureFist computes fist engagement from the ratio of each
// fingertip-to-wrist distance to the palm scale. A degenerate palm
// scale skips the hand entirely.
func (d *Detector) measureFist(hand *detector.HandLandmarks) (engaged, released bool, strength float64, contact detector.Point3D, ok bool) {
	wrist := hand.Points[detector.Wrist]
	palmScale := detector.Distance3D(wrist, hand.Points[detector.MiddleMCP])
	if palmScale < 1e-9 {
		return false, false, 0, detector.Point3D{}, false
	}

	tips := [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	allClosed := true
	var maxRatio float64
	for _, t := range tips {
		ratio := detector.Distance3D(wrist, hand.Points[t]) / palmScale
		if ratio >= d.cfg.Fist.CloseThreshold {
			allClosed = false
		}
		if ratio > maxRatio {
			maxRatio = ratio
		}
	}

	engaged = allClosed
	released = maxRatio > d.cfg.Fist.OpenThreshold

	strength = 1 - maxRatio/d.cfg.Fist.OpenThreshold
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}

	// The fist center is approximated by the middle-finger MCP.
	contact = hand.Points[detector.MiddleMCP]
	return engaged, released, strength, contact, true
}
