// Package detector provides the hand landmark data model and the
// landmark sources that feed the gesture pipeline.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in normalized landmark space. X and Y
// are roughly in [0, 1]; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Frame is one detection tick's immutable result: zero or more hands
// plus the timestamp they were captured at.
type Frame struct {
	Hands       []HandLandmarks `json:"hands"`
	TimestampMs int64           `json:"timestamp"`
}

// Distance3D calculates the Euclidean distance between two points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PalmScale returns the hand's palm-scale reference: the distance from
// the wrist to the middle-finger MCP. Geometric gesture ratios divide
// by it so hand size and camera distance cancel out.
func (h *HandLandmarks) PalmScale() float64 {
	return Distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}
