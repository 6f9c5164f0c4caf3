// Package server provides the HTTP surface of the installation: the
// WebSocket state bridge the renderer subscribes to, an MJPEG camera
// preview, mode control, and static file serving for the front end.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ronkaldes/lumina/internal/app"
	"github.com/ronkaldes/lumina/internal/capture"
)

// Config holds the server configuration.
type Config struct {
	// StaticDir is the directory of front-end assets served at /.
	// Empty disables static serving.
	StaticDir string
	// Camera enables the /api/stream MJPEG preview when set.
	Camera capture.Camera
	// App is the installation runtime the server controls.
	App *app.App
}

// Server is the HTTP handler for the installation.
type Server struct {
	config Config
	mux    *http.ServeMux
	state  *StateHandler
	start  time.Time
}

// New creates a Server and registers it as the app's snapshot
// consumer, so every pipeline tick reaches connected renderers.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		state:  NewStateHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()

	if config.App != nil {
		config.App.OnSnapshot(s.state.Publish)
	}
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/mode", s.handleMode)
	s.mux.Handle("/api/state", s.state)

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.start).String(),
		"clients": s.state.ClientCount(),
	}
	if s.config.App != nil {
		response["mode"] = s.config.App.CurrentMode()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleMode handles GET and POST requests to /api/mode. GET reports
// the active and available modes; POST switches the active mode.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if s.config.App == nil {
		http.Error(w, "Mode control unavailable", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"mode":      s.config.App.CurrentMode(),
			"available": s.config.App.ModeNames(),
		})

	case http.MethodPost:
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.config.App.SwitchMode(req.Mode); err != nil {
			if errors.Is(err, app.ErrUnknownMode) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"mode": req.Mode})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
