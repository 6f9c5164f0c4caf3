package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ronkaldes/lumina/internal/capture"
)

// FrameDetector analyzes a single video frame for hand landmarks.
type FrameDetector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Source supplies one landmark frame per detection tick. Detect must be
// called with monotonically non-decreasing timestamps; implementations
// may return a cached previous frame when polled too fast, and callers
// must tolerate stale results.
type Source interface {
	Detect(timestampMs int64) (*Frame, error)
	Close() error
}

// CameraSource reads frames from a camera and runs a FrameDetector over
// them, yielding landmark frames.
type CameraSource struct {
	camera   capture.Camera
	detector FrameDetector
}

// NewCameraSource creates a Source backed by the given camera and
// frame detector.
func NewCameraSource(camera capture.Camera, detector FrameDetector) *CameraSource {
	return &CameraSource{camera: camera, detector: detector}
}

// Detect reads one frame from the camera and runs hand detection on it.
func (s *CameraSource) Detect(timestampMs int64) (*Frame, error) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	hands, err := s.detector.Detect(frame)
	if err != nil {
		return nil, err
	}

	return &Frame{Hands: hands, TimestampMs: timestampMs}, nil
}

// Close releases the underlying frame detector. The camera is owned by
// the caller and stays open.
func (s *CameraSource) Close() error {
	return s.detector.Close()
}

// ThrottledSource wraps a Source and enforces a minimum interval
// between real detections. Polls arriving within the interval return
// the cached previous frame, so render loops can poll every tick while
// the expensive vision model runs at its own rate.
type ThrottledSource struct {
	src        Source
	intervalMs int64

	mu         sync.Mutex
	lastMs     int64
	lastResult *Frame
}

// staleLimitIntervals bounds how many detection intervals the cached
// frame may cover failures before the error surfaces. A dead camera
// must read as lost input downstream, never as an eternally frozen
// hand.
const staleLimitIntervals = 3

// NewThrottledSource wraps src with the given minimum detection
// interval in milliseconds.
func NewThrottledSource(src Source, intervalMs int64) *ThrottledSource {
	return &ThrottledSource{src: src, intervalMs: intervalMs}
}

// Detect runs a real detection if the interval has elapsed since the
// previous one, and returns the cached result otherwise. The cached
// result keeps its original timestamp so downstream consumers can
// recognize it as stale. Transient detection failures are bridged with
// the cached frame; once failures span staleLimitIntervals intervals
// the cache is dropped and the error propagates.
func (t *ThrottledSource) Detect(timestampMs int64) (*Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastResult != nil && timestampMs-t.lastMs < t.intervalMs {
		return t.lastResult, nil
	}

	frame, err := t.src.Detect(timestampMs)
	if err != nil {
		if t.lastResult != nil && timestampMs-t.lastMs < staleLimitIntervals*t.intervalMs {
			return t.lastResult, nil
		}
		t.lastResult = nil
		return nil, err
	}

	t.lastMs = timestampMs
	t.lastResult = frame
	return frame, nil
}

// Close releases the wrapped source.
func (t *ThrottledSource) Close() error {
	return t.src.Close()
}
