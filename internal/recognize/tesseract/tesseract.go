package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// execTimeout caps a single tesseract invocation.
const execTimeout = 10 * time.Second

// RecognizerConfig is the configuration for the tesseract recognizer.
type RecognizerConfig struct {
	// Binary is the tesseract executable to run.
	Binary string
	// Language is the OCR language passed to tesseract.
	Language string
	Logger   log.Logger
}

func (c *RecognizerConfig) defaults() error {
	if c.Binary == "" {
		c.Binary = "tesseract"
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "recognize.Tesseract"})
	return nil
}

// Recognizer extracts text from frames by shelling out to the tesseract
// binary.
type Recognizer struct {
	binary   string
	language string
	logger   log.Logger
}

// NewRecognizer creates a new tesseract recognizer.
func NewRecognizer(cfg RecognizerConfig) (*Recognizer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Recognizer{
		binary:   cfg.Binary,
		language: cfg.Language,
		logger:   cfg.Logger,
	}, nil
}

// ExtractText runs tesseract over the frame (or the region of it) and
// returns the recognized text.
func (r *Recognizer) ExtractText(ctx context.Context, frame image.Image, region *model.Region) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("frame is required: %w", model.ErrNotValid)
	}

	img := frame
	if region != nil {
		img = crop(frame, *region)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("could not encode frame: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.binary, "stdin", "stdout", "-l", r.language)
	cmd.Stdin = &buf

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	text := strings.TrimSpace(stdout.String())
	r.logger.Debugf("Extracted %d characters", len(text))

	return text, nil
}

// Check performs preflight checks for OCR.
func (r *Recognizer) Check(ctx context.Context) []model.CheckResult {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return []model.CheckResult{{
			ID:      "tesseract_available",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("Binary %q not found in PATH, text waits will fail", r.binary),
		}}
	}

	return []model.CheckResult{{
		ID:      "tesseract_available",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("Found %s", path),
	}}
}

// crop copies the region out of the frame. Areas outside the frame bounds
// are clamped.
func crop(frame image.Image, region model.Region) image.Image {
	b := frame.Bounds()
	rect := image.Rect(
		b.Min.X+region.X,
		b.Min.Y+region.Y,
		b.Min.X+region.X+region.Width,
		b.Min.Y+region.Y+region.Height,
	).Intersect(b)
	if rect.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, rect.Min, draw.Src)
	return dst
}
