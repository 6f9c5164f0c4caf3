// Package config loads the installation's TOML configuration file and
// resolves it against built-in defaults. Only keys present in the file
// override; everything else falls through to each package's defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/gesture"
	"github.com/ronkaldes/lumina/internal/mode"
	"github.com/ronkaldes/lumina/internal/physics/cord"
	"github.com/ronkaldes/lumina/internal/physics/dotfield"
)

// FileConfig represents the TOML configuration file. Pointer fields
// distinguish "absent" from an explicit zero.
type FileConfig struct {
	Camera   CameraConfig   `toml:"camera"`
	Server   ServerConfig   `toml:"server"`
	Detector DetectorConfig `toml:"detector"`
	Gesture  GestureConfig  `toml:"gesture"`
	Mode     ModeConfig     `toml:"mode"`
	Cord     CordConfig     `toml:"cord"`
	DotField DotFieldConfig `toml:"dotfield"`
	Bulb     BulbConfig     `toml:"bulb"`
	Stellar  StellarConfig  `toml:"stellar"`
}

// CameraConfig maps camera settings.
type CameraConfig struct {
	DeviceID *int `toml:"device-id"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	ListenAddr *string `toml:"listen-addr"`
	StaticDir  *string `toml:"static-dir"`
}

// DetectorConfig maps hand-detector settings.
type DetectorConfig struct {
	MaxHands      *int     `toml:"max-hands"`
	MinConfidence *float64 `toml:"min-confidence"`
	ThrottleMs    *int64   `toml:"throttle-ms"`
	Mock          *bool    `toml:"mock"`
}

// GestureConfig maps gesture-detection thresholds. The pinch section
// applies to all four pinch kinds.
type GestureConfig struct {
	Pinch PinchConfig `toml:"pinch"`
	Fist  FistConfig  `toml:"fist"`
}

// PinchConfig maps pinch detection thresholds.
type PinchConfig struct {
	Threshold        *float64 `toml:"threshold"`
	ReleaseThreshold *float64 `toml:"release-threshold"`
	CooldownMs       *int64   `toml:"cooldown-ms"`
	MinSustainFrames *int     `toml:"min-sustain-frames"`
}

// FistConfig maps fist detection thresholds.
type FistConfig struct {
	CloseThreshold   *float64 `toml:"close-threshold"`
	OpenThreshold    *float64 `toml:"open-threshold"`
	CooldownMs       *int64   `toml:"cooldown-ms"`
	MinSustainFrames *int     `toml:"min-sustain-frames"`
}

// ModeConfig maps mode selection.
type ModeConfig struct {
	Start *string `toml:"start"`
}

// CordConfig maps the cord solver tunables.
type CordConfig struct {
	SegmentCount  *int     `toml:"segment-count"`
	SegmentLength *float64 `toml:"segment-length"`
	Gravity       *float64 `toml:"gravity"`
	Damping       *float64 `toml:"damping"`
	Iterations    *int     `toml:"iterations"`
}

// DotFieldConfig maps the dot field tunables.
type DotFieldConfig struct {
	Cols      *int     `toml:"cols"`
	Rows      *int     `toml:"rows"`
	Spacing   *float64 `toml:"spacing"`
	Stiffness *float64 `toml:"stiffness"`
	Damping   *float64 `toml:"damping"`
}

// BulbConfig maps bulb-mode tunables.
type BulbConfig struct {
	StrongPinchStrength *float64 `toml:"strong-pinch-strength"`
	CommitFrames        *int     `toml:"commit-frames"`
	ToggleExtension     *float64 `toml:"toggle-extension"`
	BreakProbability    *float64 `toml:"break-probability"`
	OverstretchRatio    *float64 `toml:"overstretch-ratio"`
}

// StellarConfig maps stellar-mode tunables.
type StellarConfig struct {
	RepulsorStrength *float64 `toml:"repulsor-strength"`
	FullChargeMs     *int64   `toml:"full-charge-ms"`
}

// Load reads a TOML config from the given path. A missing file is not
// an error; the zero FileConfig resolves to all defaults.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// CameraID resolves the camera device ID.
func (c FileConfig) CameraID() int {
	if c.Camera.DeviceID != nil {
		return *c.Camera.DeviceID
	}
	return 0
}

// ListenAddr resolves the HTTP listen address.
func (c FileConfig) ListenAddr() string {
	if c.Server.ListenAddr != nil {
		return *c.Server.ListenAddr
	}
	return ":8080"
}

// StaticDir resolves the static asset directory. Empty disables static
// serving.
func (c FileConfig) StaticDir() string {
	if c.Server.StaticDir != nil {
		return *c.Server.StaticDir
	}
	return ""
}

// UseMockSource reports whether the mock frame source was requested.
func (c FileConfig) UseMockSource() bool {
	return c.Detector.Mock != nil && *c.Detector.Mock
}

// ThrottleMs resolves the detector throttle interval.
func (c FileConfig) ThrottleMs() int64 {
	if c.Detector.ThrottleMs != nil {
		return *c.Detector.ThrottleMs
	}
	return 33
}

// MediaPipeConfig resolves the hand-detector settings.
func (c FileConfig) MediaPipeConfig() detector.MediaPipeConfig {
	mp := detector.DefaultMediaPipeConfig()
	if c.Detector.MaxHands != nil {
		mp.MaxHands = *c.Detector.MaxHands
	}
	if c.Detector.MinConfidence != nil {
		mp.MinConfidence = *c.Detector.MinConfidence
	}
	return mp
}

// GestureConfig resolves the gesture thresholds. The pinch section
// applies uniformly to all four pinch kinds.
func (c FileConfig) GestureConfig() gesture.Config {
	var pinch gesture.PinchConfig
	if v := c.Gesture.Pinch.Threshold; v != nil {
		pinch.Threshold = *v
	}
	if v := c.Gesture.Pinch.ReleaseThreshold; v != nil {
		pinch.ReleaseThreshold = *v
	}
	if v := c.Gesture.Pinch.CooldownMs; v != nil {
		pinch.CooldownMs = *v
	}
	if v := c.Gesture.Pinch.MinSustainFrames; v != nil {
		pinch.MinSustainFrames = *v
	}

	var fist gesture.FistConfig
	if v := c.Gesture.Fist.CloseThreshold; v != nil {
		fist.CloseThreshold = *v
	}
	if v := c.Gesture.Fist.OpenThreshold; v != nil {
		fist.OpenThreshold = *v
	}
	if v := c.Gesture.Fist.CooldownMs; v != nil {
		fist.CooldownMs = *v
	}
	if v := c.Gesture.Fist.MinSustainFrames; v != nil {
		fist.MinSustainFrames = *v
	}

	return gesture.Config{
		PinchIndex:  pinch,
		PinchMiddle: pinch,
		PinchRing:   pinch,
		PinchPinky:  pinch,
		Fist:        fist,
	}
}

// StartMode resolves the boot mode name.
func (c FileConfig) StartMode() string {
	if c.Mode.Start != nil {
		return *c.Mode.Start
	}
	return "bulb"
}

// CordConfig resolves the cord solver tunables. Unset keys stay zero
// and fall through to the solver's own defaults.
func (c FileConfig) CordConfig() cord.Config {
	var cc cord.Config
	if v := c.Cord.SegmentCount; v != nil {
		cc.SegmentCount = *v
	}
	if v := c.Cord.SegmentLength; v != nil {
		cc.SegmentLength = *v
	}
	if v := c.Cord.Gravity; v != nil {
		cc.Gravity = *v
	}
	if v := c.Cord.Damping; v != nil {
		cc.Damping = *v
	}
	if v := c.Cord.Iterations; v != nil {
		cc.Iterations = *v
	}
	return cc
}

// FieldConfig resolves the dot field tunables.
func (c FileConfig) FieldConfig() dotfield.Config {
	var fc dotfield.Config
	if v := c.DotField.Cols; v != nil {
		fc.Cols = *v
	}
	if v := c.DotField.Rows; v != nil {
		fc.Rows = *v
	}
	if v := c.DotField.Spacing; v != nil {
		fc.Spacing = *v
	}
	if v := c.DotField.Stiffness; v != nil {
		fc.Stiffness = *v
	}
	if v := c.DotField.Damping; v != nil {
		fc.Damping = *v
	}
	return fc
}

// BulbModeConfig resolves the bulb-mode tunables.
func (c FileConfig) BulbModeConfig() mode.BulbConfig {
	var bc mode.BulbConfig
	if v := c.Bulb.StrongPinchStrength; v != nil {
		bc.StrongPinchStrength = *v
	}
	if v := c.Bulb.CommitFrames; v != nil {
		bc.CommitFrames = *v
	}
	if v := c.Bulb.ToggleExtension; v != nil {
		bc.ToggleExtension = *v
	}
	if c.Bulb.BreakProbability != nil || c.Bulb.OverstretchRatio != nil {
		bc.Fatigue = mode.DefaultBulbConfig().Fatigue
		if v := c.Bulb.BreakProbability; v != nil {
			bc.Fatigue.BreakProbability = *v
		}
		if v := c.Bulb.OverstretchRatio; v != nil {
			bc.Fatigue.OverstretchRatio = *v
		}
	}
	return bc
}

// StellarModeConfig resolves the stellar-mode tunables.
func (c FileConfig) StellarModeConfig() mode.StellarConfig {
	var sc mode.StellarConfig
	if v := c.Stellar.RepulsorStrength; v != nil {
		sc.RepulsorStrength = *v
	}
	if v := c.Stellar.FullChargeMs; v != nil {
		sc.FullChargeMs = *v
	}
	return sc
}
