package detector

// MockSource is a scriptable Source for tests and headless demo mode.
// It plays back a queue of frames, holding the last one once the queue
// is exhausted.
type MockSource struct {
	frames []Frame
	cursor int
	err    error
}

// NewMockSource creates a MockSource with no frames queued.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Queue appends frames to the playback queue.
func (m *MockSource) Queue(frames ...Frame) {
	m.frames = append(m.frames, frames...)
}

// SetError makes Detect return err until cleared with nil.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// Detect returns the next queued frame, restamped with the caller's
// timestamp. With an empty queue it returns an empty frame.
func (m *MockSource) Detect(timestampMs int64) (*Frame, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return &Frame{TimestampMs: timestampMs}, nil
	}

	f := m.frames[m.cursor]
	if m.cursor < len(m.frames)-1 {
		m.cursor++
	}
	f.TimestampMs = timestampMs
	return &f, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}

// baseHand returns a neutral open hand used as the canvas for the
// fixture builders: wrist bottom center, fingers extended upward.
func baseHand(handedness string) HandLandmarks {
	h := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side.
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward.
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward.
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward.
	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward.
	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	h.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return h
}

// OpenPalmHand returns a preset open hand with all fingers extended.
func OpenPalmHand(handedness string) HandLandmarks {
	return baseHand(handedness)
}

// PinchHand returns a hand pinching the given fingertip landmark
// against the thumb with the requested gap. The contact sits at
// center; the other fingers stay extended.
func PinchHand(handedness string, fingertip int, gap float64, center Point3D) HandLandmarks {
	h := baseHand(handedness)

	h.Points[ThumbTip] = Point3D{X: center.X - gap/2, Y: center.Y, Z: center.Z}
	h.Points[fingertip] = Point3D{X: center.X + gap/2, Y: center.Y, Z: center.Z}

	return h
}

// FistHand returns a closed fist: every fingertip curled in close to
// the wrist, well inside the close-ratio threshold.
func FistHand(handedness string) HandLandmarks {
	h := baseHand(handedness)
	wrist := h.Points[Wrist]

	// Palm scale is |wrist - middleMCP| = ~0.14; tips at ~0.1 from the
	// wrist give ratios well below 1.
	curl := []struct {
		idx  int
		x, y float64
	}{
		{ThumbTip, wrist.X + 0.06, wrist.Y - 0.06},
		{IndexTip, wrist.X + 0.05, wrist.Y - 0.09},
		{MiddleTip, wrist.X + 0.02, wrist.Y - 0.10},
		{RingTip, wrist.X - 0.02, wrist.Y - 0.10},
		{PinkyTip, wrist.X - 0.05, wrist.Y - 0.08},
	}
	for _, c := range curl {
		h.Points[c.idx] = Point3D{X: c.x, Y: c.y, Z: -0.02}
	}

	return h
}
