// Package main provides the CLI entrypoint for the lumina installation
// runtime.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ronkaldes/lumina/internal/app"
	"github.com/ronkaldes/lumina/internal/capture"
	"github.com/ronkaldes/lumina/internal/config"
	"github.com/ronkaldes/lumina/internal/detector"
	"github.com/ronkaldes/lumina/internal/mode"
	"github.com/ronkaldes/lumina/internal/server"
)

var (
	flagConfig string
	flagCamera int
	flagListen string
	flagStatic string
	flagMode   string
	flagMock   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lumina",
		Short:        "Hand-gesture interactive light installation",
		SilenceUsage: true,
		RunE:         runInstallation,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", defaultConfigPath(), "TOML config file path")
	rootCmd.Flags().IntVar(&flagCamera, "camera", 0, "camera device ID")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "HTTP listen address (default from config)")
	rootCmd.Flags().StringVar(&flagStatic, "static", "", "front-end asset directory")
	rootCmd.Flags().StringVar(&flagMode, "mode", "", "start mode: bulb or stellar")
	rootCmd.Flags().BoolVar(&flagMock, "mock", false, "use the mock frame source instead of a camera")

	return rootCmd
}

// defaultConfigPath returns ~/.lumina/config.toml, or the bare file
// name when the home directory cannot be resolved.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".lumina", "config.toml")
}

func runInstallation(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cameraID := cfg.CameraID()
	if cmd.Flags().Changed("camera") {
		cameraID = flagCamera
	}
	listenAddr := cfg.ListenAddr()
	if cmd.Flags().Changed("listen") {
		listenAddr = flagListen
	}
	staticDir := cfg.StaticDir()
	if cmd.Flags().Changed("static") {
		staticDir = flagStatic
	}
	startMode := cfg.StartMode()
	if cmd.Flags().Changed("mode") {
		startMode = flagMode
	}
	useMock := cfg.UseMockSource() || flagMock

	source, camera, err := buildSource(cfg, cameraID, useMock)
	if err != nil {
		return err
	}
	if camera != nil {
		defer camera.Close()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	hits := mode.NewProximityHitTester(mode.HitConfig{})
	bulb := mode.NewBulbMode(cfg.BulbModeConfig(), cfg.CordConfig(), hits, rng)
	hits.Bind(bulb.Cord())
	stellar := mode.NewStellarMode(cfg.StellarModeConfig(), cfg.FieldConfig(), rng)

	installation, err := app.New(app.Config{
		StartMode: startMode,
		Gesture:   cfg.GestureConfig(),
	}, source, bulb, stellar)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Camera:    camera,
		App:       installation,
	})

	if err := installation.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	defer installation.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving on %s", listenAddr)
		errCh <- srv.ListenAndServe(listenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
		return nil
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
}

// buildSource assembles the landmark frame source: the camera plus the
// MediaPipe sidecar in production, or the mock source for development
// without hardware. The camera is returned separately for the MJPEG
// preview endpoint.
func buildSource(cfg config.FileConfig, cameraID int, useMock bool) (detector.Source, capture.Camera, error) {
	if useMock {
		log.Println("Using mock frame source")
		return detector.NewMockSource(), nil, nil
	}

	camera := capture.NewCamera(cameraID)
	if err := camera.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to open camera %d: %w", cameraID, err)
	}

	mp, err := detector.NewMediaPipeDetector(cfg.MediaPipeConfig())
	if err != nil {
		camera.Close()
		return nil, nil, fmt.Errorf("failed to start hand detector: %w", err)
	}

	src := detector.NewCameraSource(camera, mp)
	return detector.NewThrottledSource(src, cfg.ThrottleMs()), camera, nil
}
