package lib

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sdklib "github.com/slok/seqr/pkg/lib"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	// RunTimeout bounds each test, overridable for slow CI boxes.
	RunTimeout time.Duration
}

func (c *Config) defaults() error {
	if c.RunTimeout == 0 {
		c.RunTimeout = time.Minute
	}

	if c.RunTimeout < 0 {
		return fmt.Errorf("run timeout must be positive, got %s", c.RunTimeout)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "SEQR_INTEGRATION"
		envRunTimeout = "SEQR_INTEGRATION_TIMEOUT"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{}
	if v := os.Getenv(envRunTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			t.Skipf("Skipping due to invalid config: bad %s: %s", envRunTimeout, err)
		}
		c.RunTimeout = d
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// WriteTemplate writes a small gradient tile into dir as a PNG and returns
// the tile for stamping into frames. The detector loads it under the given
// name. The gradient keeps neighboring placements from matching: shifting
// the tile by a single pixel moves some of its pixels onto colors that are
// past the detector's rejection limits.
func WriteTemplate(t *testing.T, dir, name string) image.Image {
	t.Helper()

	tile := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			tile.SetRGBA(x, y, color.RGBA{
				R: uint8(40 + x*20),
				G: uint8(200 - y*15),
				B: 90,
				A: 255,
			})
		}
	}

	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, tile))
	require.NoError(t, f.Close())

	return tile
}

// NewFrame returns a uniformly dark frame of the given size, far from any
// template color so nothing matches by accident.
func NewFrame(width, height int) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	dark := image.Uniform{C: color.RGBA{R: 10, G: 10, B: 10, A: 255}}
	draw.Draw(frame, frame.Bounds(), &dark, image.Point{}, draw.Src)
	return frame
}

// Stamp draws img onto frame with its top left corner at (x, y).
func Stamp(frame *image.RGBA, img image.Image, x, y int) {
	draw.Draw(frame, img.Bounds().Add(image.Pt(x, y)), img, img.Bounds().Min, draw.Src)
}

// NewTestClient creates an SDK client with a temp SQLite DB for test
// isolation. Collaborators set on cfg are kept; the storage paths and the
// polling intervals are overridden so tests stay fast and hermetic.
func NewTestClient(t *testing.T, cfg sdklib.Config) *sdklib.Client {
	t.Helper()

	dir := t.TempDir()
	cfg.DBPath = filepath.Join(dir, "test.db")
	cfg.DataDir = dir
	if cfg.SearchInterval == 0 {
		cfg.SearchInterval = 5 * time.Millisecond
	}
	if cfg.TextInterval == 0 {
		cfg.TextInterval = 5 * time.Millisecond
	}
	if cfg.ControlInterval == 0 {
		cfg.ControlInterval = 2 * time.Millisecond
	}

	client, err := sdklib.New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}
