package e2e

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ronkaldes/lumina/internal/app"
	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/mode"
	"github.com/ronkaldes/lumina/internal/physics/cord"
	"github.com/ronkaldes/lumina/internal/physics/dotfield"
	"github.com/ronkaldes/lumina/internal/server"
)

// installation bundles the full stack driven by a scripted frame
// source.
type installation struct {
	src     *detector.MockSource
	bulb    *mode.BulbMode
	stellar *mode.StellarMode
	app     *app.App
	srv     *server.Server
	nowMs   int64
}

func newInstallation(t *testing.T) *installation {
	t.Helper()

	rng := rand.New(rand.NewSource(11))
	hits := mode.NewProximityHitTester(mode.HitConfig{})
	bulb := mode.NewBulbMode(mode.BulbConfig{}, cord.Config{}, hits, rng)
	hits.Bind(bulb.Cord())
	stellar := mode.NewStellarMode(mode.StellarConfig{}, dotfield.Config{}, rng)

	src := detector.NewMockSource()
	a, err := app.New(app.Config{StartMode: "bulb"}, src, bulb, stellar)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}

	return &installation{
		src:     src,
		bulb:    bulb,
		stellar: stellar,
		app:     a,
		srv:     server.New(server.Config{App: a}),
		nowMs:   1000,
	}
}

// play ticks the pipeline once per scripted frame at ~30 FPS.
func (in *installation) play(script []detector.Frame) {
	in.src.Queue(script...)
	for range script {
		in.app.Tick(in.nowMs)
		in.nowMs += 33
	}
}

func TestCordPullTogglesLight(t *testing.T) {
	in := newInstallation(t)

	in.play(cordPullScript())

	snap := in.app.LastSnapshot()
	if snap.Mode != "bulb" {
		t.Fatalf("expected bulb mode active, got %s", snap.Mode)
	}
	state, ok := snap.State.(mode.BulbSnapshot)
	if !ok {
		t.Fatalf("expected BulbSnapshot state, got %T", snap.State)
	}
	if !state.LightOn {
		t.Error("expected the pull-and-release script to switch the light on")
	}
	if state.Broken || !state.Attached {
		t.Errorf("expected an intact attached cord, got broken=%v attached=%v",
			state.Broken, state.Attached)
	}

	// Let the cord swing back to rest, then an identical pull switches
	// the light back off.
	in.play(presence(30))
	in.play(cordPullScript())
	state = in.app.LastSnapshot().State.(mode.BulbSnapshot)
	if state.LightOn {
		t.Error("expected the second pull to switch the light off")
	}
}

func TestModeSwitchAndSurgeOverHTTP(t *testing.T) {
	in := newInstallation(t)
	ts := httptest.NewServer(in.srv)
	defer ts.Close()

	// Switch to the stellar mode through the control API.
	body := bytes.NewBufferString(`{"mode":"stellar"}`)
	resp, err := ts.Client().Post(ts.URL+"/api/mode", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/mode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from mode switch, got %d", resp.StatusCode)
	}

	in.play(surgeScript())

	if got := in.stellar.Field().SurgePhase(); got != dotfield.PhaseBursting {
		t.Errorf("expected a bursting surge after the fist script, got %v", got)
	}

	snap := in.app.LastSnapshot()
	if snap.Mode != "stellar" {
		t.Errorf("expected stellar snapshots after the switch, got %s", snap.Mode)
	}
	if _, ok := snap.State.(dotfield.Snapshot); !ok {
		t.Errorf("expected dot-field snapshot state, got %T", snap.State)
	}
}

func TestSnapshotsReachRendererOverWebSocket(t *testing.T) {
	in := newInstallation(t)
	ts := httptest.NewServer(in.srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the upgrade handler to register the client, then tick.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if resp, err := ts.Client().Get(ts.URL + "/api/health"); err == nil {
			var health map[string]any
			json.NewDecoder(resp.Body).Decode(&health)
			resp.Body.Close()
			if n, ok := health["clients"].(float64); ok && n >= 1 {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	in.play(presence(3))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var snap struct {
		Mode  string `json:"mode"`
		Hands int    `json:"hands"`
	}
	if err := json.Unmarshal(msg, &snap); err != nil {
		t.Fatalf("invalid snapshot JSON: %v", err)
	}
	if snap.Mode != "bulb" || snap.Hands != 1 {
		t.Errorf("unexpected snapshot over the wire: %+v", snap)
	}
}
