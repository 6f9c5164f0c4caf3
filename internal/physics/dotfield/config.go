package dotfield

// Config holds the tunable constants of the dot-field simulator. All
// fields have defaults; zero values in a partial config are replaced by
// DefaultConfig values.
type Config struct {
	// Cols and Rows define the grid dimensions. Border points are pinned.
	Cols int
	Rows int
	// Spacing is the rest distance between adjacent grid points.
	Spacing float64

	// Stiffness pulls each point back toward its rest position.
	Stiffness float64
	// Damping is the per-tick velocity damping factor.
	Damping float64

	// RippleSpeed is the ring expansion speed in field units per second.
	RippleSpeed float64
	// RippleWidth is the half-width of the band around the ring radius
	// that receives intensity and impulse.
	RippleWidth float64
	// RippleDurationMs is the lifetime of one pulse.
	RippleDurationMs int64
	// RippleImpulse scales the outward velocity kick inside the band.
	RippleImpulse float64
	// RippleDecay is the per-tick geometric decay of point intensity.
	RippleDecay float64
	// MaxRipples caps concurrent pulses; the oldest is evicted beyond it.
	MaxRipples int

	// WellStrength and WellSoftening shape the gravity well attraction
	// force = WellStrength / (distSq + WellSoftening^2).
	WellStrength  float64
	WellSoftening float64

	// VortexStrength, VortexRadius and VortexInwardBias shape the
	// tangential swirl force around the vortex center.
	VortexStrength   float64
	VortexRadius     float64
	VortexInwardBias float64

	// RepulsorRadius bounds the repulsor force field; strength comes
	// from the caller per activation.
	RepulsorRadius float64

	// PluckReach, PluckStrength and PluckDamping shape the cosmic-string
	// pull toward the held pluck point.
	PluckReach    float64
	PluckStrength float64
	PluckDamping  float64

	// Surge holds the quasar-surge constants.
	Surge SurgeConfig
}

// SurgeConfig holds the quasar-surge phase-machine constants.
type SurgeConfig struct {
	// RadiusBase and RadiusGrowth define the capture radius:
	// RadiusBase + RadiusGrowth*chargeIntensity.
	RadiusBase   float64
	RadiusGrowth float64
	// PullStrength scales the inward collapse force while charging.
	PullStrength float64
	// CoreSteepness sharpens the pull multiplier near the center.
	CoreSteepness float64
	// SpiralStrength scales the tangential component while charging.
	SpiralStrength float64
	// MaxDepth is the peak z-axis displacement at full charge.
	MaxDepth float64
	// DepthEase eases z displacement toward its target each tick.
	DepthEase float64
	// CoreDamping is the stronger velocity damping applied at the core.
	CoreDamping float64
	// FullChargeMs is the hold duration yielding stored energy 1.0.
	FullChargeMs int64
	// BurstVelocity scales the stored energy into the radial impulse.
	BurstVelocity float64
	// BurstDurationMs is the total burst phase length.
	BurstDurationMs int64
	// ImpulseWindowMs is the initial window of the explosive radial kick.
	ImpulseWindowMs int64
	// ShockSpeed is the shockwave ring expansion speed.
	ShockSpeed float64
	// ShockWidth is the shockwave band half-width.
	ShockWidth float64
	// ShockImpulse scales the ring impulse; interior points still inside
	// the ring receive an extra scaled push to avoid a leftover clump.
	ShockImpulse float64
	// Softening avoids the singularity of the inverse-distance impulse.
	Softening float64
	// AngularJitter is the random angular spread of the burst impulse in
	// radians, for organic dispersal.
	AngularJitter float64
	// DepthDecay is the per-tick z decay applied while inactive.
	DepthDecay float64
}

// DefaultConfig returns the field constants tuned for the installation.
func DefaultConfig() Config {
	return Config{
		Cols:    48,
		Rows:    32,
		Spacing: 0.25,

		Stiffness: 0.04,
		Damping:   0.92,

		RippleSpeed:      6.0,
		RippleWidth:      0.6,
		RippleDurationMs: 2500,
		RippleImpulse:    0.18,
		RippleDecay:      0.92,
		MaxRipples:       5,

		WellStrength:  0.9,
		WellSoftening: 0.5,

		VortexStrength:   0.12,
		VortexRadius:     2.4,
		VortexInwardBias: 0.25,

		RepulsorRadius: 1.8,

		PluckReach:    1.6,
		PluckStrength: 0.08,
		PluckDamping:  0.8,

		Surge: SurgeConfig{
			RadiusBase:      1.2,
			RadiusGrowth:    3.2,
			PullStrength:    0.10,
			CoreSteepness:   4.0,
			SpiralStrength:  0.06,
			MaxDepth:        1.4,
			DepthEase:       0.15,
			CoreDamping:     0.78,
			FullChargeMs:    2200,
			BurstVelocity:   1.6,
			BurstDurationMs: 900,
			ImpulseWindowMs: 100,
			ShockSpeed:      14.0,
			ShockWidth:      0.8,
			ShockImpulse:    0.35,
			Softening:       0.35,
			AngularJitter:   0.25,
			DepthDecay:      0.9,
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cols <= 0 {
		c.Cols = d.Cols
	}
	if c.Rows <= 0 {
		c.Rows = d.Rows
	}
	if c.Spacing <= 0 {
		c.Spacing = d.Spacing
	}
	if c.Stiffness <= 0 {
		c.Stiffness = d.Stiffness
	}
	if c.Damping <= 0 {
		c.Damping = d.Damping
	}
	if c.RippleSpeed <= 0 {
		c.RippleSpeed = d.RippleSpeed
	}
	if c.RippleWidth <= 0 {
		c.RippleWidth = d.RippleWidth
	}
	if c.RippleDurationMs <= 0 {
		c.RippleDurationMs = d.RippleDurationMs
	}
	if c.RippleImpulse <= 0 {
		c.RippleImpulse = d.RippleImpulse
	}
	if c.RippleDecay <= 0 {
		c.RippleDecay = d.RippleDecay
	}
	if c.MaxRipples <= 0 {
		c.MaxRipples = d.MaxRipples
	}
	if c.WellStrength <= 0 {
		c.WellStrength = d.WellStrength
	}
	if c.WellSoftening <= 0 {
		c.WellSoftening = d.WellSoftening
	}
	if c.VortexStrength <= 0 {
		c.VortexStrength = d.VortexStrength
	}
	if c.VortexRadius <= 0 {
		c.VortexRadius = d.VortexRadius
	}
	if c.VortexInwardBias <= 0 {
		c.VortexInwardBias = d.VortexInwardBias
	}
	if c.RepulsorRadius <= 0 {
		c.RepulsorRadius = d.RepulsorRadius
	}
	if c.PluckReach <= 0 {
		c.PluckReach = d.PluckReach
	}
	if c.PluckStrength <= 0 {
		c.PluckStrength = d.PluckStrength
	}
	if c.PluckDamping <= 0 {
		c.PluckDamping = d.PluckDamping
	}
	if c.Surge == (SurgeConfig{}) {
		c.Surge = d.Surge
	}
	return c
}
