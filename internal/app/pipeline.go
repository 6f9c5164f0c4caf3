package app

import (
	"log"
	"time"
)

// runPipeline is the installation loop. Each tick it pulls one landmark
// frame, classifies gestures, drives the active mode and publishes a
// snapshot.
//
// Tick rate adapts to presence: idle rate with no hands, active rate
// while at least one hand is tracked, and back to idle after the
// timeout. A long run of empty frames additionally resets the gesture
// detector so stale hold/cooldown state never greets the next visitor.
func (a *App) runPipeline(stopCh chan struct{}) {
	interval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	active := false
	lastHandTime := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			now := time.Now().UnixMilli()
			hands := a.Tick(now)

			if hands > 0 {
				lastHandTime = time.Now()
				if !active {
					active = true
					ticker.Reset(time.Second / time.Duration(ActiveFPS))
					log.Println("Hands tracked, switching to active rate")
				}
			} else if active && time.Since(lastHandTime) > IdleTimeoutMs*time.Millisecond {
				active = false
				ticker.Reset(time.Second / time.Duration(IdleFPS))
				log.Println("No hands, switching to idle rate")
			}
		}
	}
}

// Tick advances the installation by one frame at nowMs and returns the
// number of tracked hands. The pipeline goroutine calls it once per
// ticker fire; replay harnesses call it directly with scripted
// timestamps. It is the single place the mode is driven, so mode
// internals never see concurrent calls.
func (a *App) Tick(nowMs int64) int {
	a.mu.Lock()

	var dt float64
	if a.lastTickMs > 0 && nowMs > a.lastTickMs {
		dt = float64(nowMs-a.lastTickMs) / 1000.0
	}
	a.lastTickMs = nowMs

	hands := 0
	if a.enabled {
		frame, err := a.source.Detect(nowMs)
		if err != nil {
			log.Printf("Error reading frame: %v", err)
			// A failing source is lost input, not a pause: the mode
			// must see zero hands so a committed interaction (a grabbed
			// cord handle, a held charge) force-recovers instead of
			// freezing mid-gesture.
			a.current.HandleFrame(nil, nil, nowMs)
		} else if frame != nil {
			hands = len(frame.Hands)
			events := a.gestures.Detect(frame.Hands, nowMs)
			a.current.HandleFrame(frame, events, nowMs)
		}

		if hands == 0 {
			a.emptyFrames++
			if a.emptyFrames == ResetAfterEmptyFrames {
				a.gestures.Reset()
			}
		} else {
			a.emptyFrames = 0
		}
	}

	a.current.Update(dt, nowMs)

	snap := Snapshot{
		Mode:        a.current.Name(),
		TimestampMs: nowMs,
		Hands:       hands,
		State:       a.current.Snapshot(),
	}
	a.lastSnap = snap
	fn := a.onSnap
	a.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return hands
}
