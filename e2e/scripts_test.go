package e2e

import (
	"github.com/ronkaldes/lumina/internal/detector"
)

// Scripted landmark frame sequences, played through a MockSource to
// drive the full pipeline without a camera. Normalized coordinates map
// to world space by mirroring x and flipping y from [0,1] into [-1,1],
// so a hand at normalized (0.5, 0.18) sits at world (0, 0.64) -- the
// free end of the default cord.

// presence returns n open-palm frames.
func presence(n int) []detector.Frame {
	frames := make([]detector.Frame, n)
	for i := range frames {
		frames[i] = detector.Frame{
			Hands: []detector.HandLandmarks{detector.OpenPalmHand("Right")},
		}
	}
	return frames
}

// pinchFrames returns n frames pinching index-to-thumb at the given
// normalized center.
func pinchFrames(n int, center detector.Point3D) []detector.Frame {
	frames := make([]detector.Frame, n)
	for i := range frames {
		frames[i] = detector.Frame{
			Hands: []detector.HandLandmarks{
				detector.PinchHand("Right", detector.IndexTip, 0.02, center),
			},
		}
	}
	return frames
}

// fistFrames returns n closed-fist frames.
func fistFrames(n int) []detector.Frame {
	frames := make([]detector.Frame, n)
	for i := range frames {
		frames[i] = detector.Frame{
			Hands: []detector.HandLandmarks{detector.FistHand("Right")},
		}
	}
	return frames
}

// cordPullScript walks a visitor through the light-bulb interaction:
// approach, pinch the cord's free end, drag it down far enough to arm
// the toggle, and let go.
func cordPullScript() []detector.Frame {
	grab := detector.Point3D{X: 0.5, Y: 0.18}   // world (0, 0.64): cord free end
	target := detector.Point3D{X: 0.5, Y: 0.35} // world (0, 0.30): a firm, safe pull

	var script []detector.Frame
	script = append(script, presence(3)...)
	script = append(script, pinchFrames(4, grab)...)   // gate needs 3 strong frames
	script = append(script, pinchFrames(6, target)...) // hold the stretch
	script = append(script, presence(4)...)            // release
	return script
}

// surgeScript charges the quasar surge with a held fist and releases
// it with an open palm.
func surgeScript() []detector.Frame {
	var script []detector.Frame
	script = append(script, presence(2)...)
	script = append(script, fistFrames(8)...) // sustain gate, then charge
	script = append(script, presence(3)...)   // open palm: release
	return script
}
