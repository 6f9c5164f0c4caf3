package gesture

import (
	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/physics"
)

// PinchConfig holds the thresholds of one pinch kind. The gap between
// Threshold and ReleaseThreshold is deliberate hysteresis preventing
// flicker at the boundary.
type PinchConfig struct {
	// Threshold is the thumb-to-fingertip distance below which the
	// pinch engages, in normalized landmark space.
	Threshold float64
	// ReleaseThreshold is the distance above which an active pinch
	// releases. Must exceed Threshold.
	ReleaseThreshold float64
	// CooldownMs blocks a new start within this window of the kind's
	// last trigger on the same hand.
	CooldownMs int64
	// MinSustainFrames is the number of consecutive engaged frames
	// required before a start fires.
	MinSustainFrames int
}

// FistConfig holds the closed-fist thresholds. Engagement uses the
// ratio of each fingertip-to-wrist distance to the palm scale
// (wrist to middle-finger MCP distance).
type FistConfig struct {
	// CloseThreshold: all four ratios must fall below it to engage.
	CloseThreshold float64
	// OpenThreshold: any ratio above it releases the fist.
	OpenThreshold float64
	// CooldownMs blocks a new start within this window.
	CooldownMs int64
	// MinSustainFrames is the consecutive-frame requirement.
	MinSustainFrames int
}

// Config holds the per-kind detection thresholds plus the normalized to
// world coordinate transform. All fields have defaults; zero values in
// a partial config are replaced by DefaultConfig values.
type Config struct {
	PinchIndex  PinchConfig
	PinchMiddle PinchConfig
	PinchRing   PinchConfig
	PinchPinky  PinchConfig
	Fist        FistConfig

	// Transform maps a normalized landmark-space point to world space.
	// The default mirrors x (webcam view), flips y upward and maps both
	// into [-1, 1].
	Transform func(detector.Point3D) physics.Vec3
}

// DefaultConfig returns detection thresholds tuned for MediaPipe
// normalized landmark space.
func DefaultConfig() Config {
	pinch := PinchConfig{
		Threshold:        0.06,
		ReleaseThreshold: 0.09,
		CooldownMs:       250,
		MinSustainFrames: 1,
	}
	return Config{
		PinchIndex:  pinch,
		PinchMiddle: pinch,
		PinchRing:   pinch,
		PinchPinky:  pinch,
		Fist: FistConfig{
			CloseThreshold:   1.3,
			OpenThreshold:    1.6,
			CooldownMs:       400,
			MinSustainFrames: 2,
		},
		Transform: DefaultTransform,
	}
}

// DefaultTransform mirrors x, flips y upward and maps both axes from
// [0, 1] into [-1, 1]. Depth passes through negated so positive z faces
// the viewer.
func DefaultTransform(p detector.Point3D) physics.Vec3 {
	return physics.Vec3{
		X: (0.5 - p.X) * 2,
		Y: (0.5 - p.Y) * 2,
		Z: -p.Z,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	fill := func(pc PinchConfig, def PinchConfig) PinchConfig {
		if pc.Threshold <= 0 {
			pc.Threshold = def.Threshold
		}
		if pc.ReleaseThreshold <= 0 {
			pc.ReleaseThreshold = def.ReleaseThreshold
		}
		if pc.CooldownMs <= 0 {
			pc.CooldownMs = def.CooldownMs
		}
		if pc.MinSustainFrames <= 0 {
			pc.MinSustainFrames = def.MinSustainFrames
		}
		return pc
	}
	c.PinchIndex = fill(c.PinchIndex, d.PinchIndex)
	c.PinchMiddle = fill(c.PinchMiddle, d.PinchMiddle)
	c.PinchRing = fill(c.PinchRing, d.PinchRing)
	c.PinchPinky = fill(c.PinchPinky, d.PinchPinky)

	if c.Fist.CloseThreshold <= 0 {
		c.Fist.CloseThreshold = d.Fist.CloseThreshold
	}
	if c.Fist.OpenThreshold <= 0 {
		c.Fist.OpenThreshold = d.Fist.OpenThreshold
	}
	if c.Fist.CooldownMs <= 0 {
		c.Fist.CooldownMs = d.Fist.CooldownMs
	}
	if c.Fist.MinSustainFrames <= 0 {
		c.Fist.MinSustainFrames = d.Fist.MinSustainFrames
	}
	if c.Transform == nil {
		c.Transform = d.Transform
	}
	return c
}

// pinchConfig returns the config for a pinch kind.
func (c Config) pinchConfig(k Kind) PinchConfig {
	switch k {
	case KindPinchMiddle:
		return c.PinchMiddle
	case KindPinchRing:
		return c.PinchRing
	case KindPinchPinky:
		return c.PinchPinky
	default:
		return c.PinchIndex
	}
}
