package pixel

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

const (
	// defaultTolerance is the per-channel color difference below which a
	// pixel still counts as matching.
	defaultTolerance = 60
	// maxFailRate is the fraction of template pixels allowed to miss before
	// a candidate placement is rejected.
	maxFailRate = 0.03
	// maxPixelDiff rejects a candidate placement outright when any single
	// pixel differs by more than this across all channels.
	maxPixelDiff = 150
)

// DetectorConfig is the configuration for the pixel detector.
type DetectorConfig struct {
	// TemplatesFS holds the template images as PNG files at its root. The
	// template name is the file name without extension.
	TemplatesFS fs.FS
	// Tolerance overrides the per-channel color tolerance.
	Tolerance int
	Logger    log.Logger
}

func (c *DetectorConfig) defaults() error {
	if c.TemplatesFS == nil {
		return fmt.Errorf("templates filesystem is required")
	}
	if c.Tolerance <= 0 {
		c.Tolerance = defaultTolerance
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "detect.Pixel"})
	return nil
}

// Detector finds templates in frames by direct pixel comparison with a color
// tolerance and a bounded failure rate.
type Detector struct {
	templates map[string]*image.RGBA
	names     []string
	tolerance int
	logger    log.Logger
}

// NewDetector creates a new pixel detector, loading every PNG template from
// the configured filesystem.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	entries, err := fs.ReadDir(cfg.TemplatesFS, ".")
	if err != nil {
		return nil, fmt.Errorf("could not read templates directory: %w", err)
	}

	templates := map[string]*image.RGBA{}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}

		f, err := cfg.TemplatesFS.Open(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("could not open template %s: %w", entry.Name(), err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not decode template %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(path.Base(entry.Name()), ".png")
		templates[name] = toRGBA(img)
		names = append(names, name)
	}
	sort.Strings(names)

	cfg.Logger.Debugf("Loaded %d templates", len(names))

	return &Detector{
		templates: templates,
		names:     names,
		tolerance: cfg.Tolerance,
		logger:    cfg.Logger,
	}, nil
}

// Templates returns the names of all loaded templates.
func (d *Detector) Templates() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Match searches the frame for the given templates. It returns at most one
// match per template, the placement with the highest confidence at or above
// minConfidence.
func (d *Detector) Match(ctx context.Context, frame image.Image, templates []string, minConfidence float64) ([]model.Match, error) {
	if frame == nil {
		return nil, fmt.Errorf("frame is required: %w", model.ErrNotValid)
	}

	rgba := toRGBA(frame)

	matches := []model.Match{}
	for _, name := range templates {
		tpl, ok := d.templates[name]
		if !ok {
			return nil, fmt.Errorf("template %s: %w", name, model.ErrNotFound)
		}

		m, found, err := d.scan(ctx, rgba, tpl, minConfidence)
		if err != nil {
			return nil, err
		}
		if found {
			m.Template = name
			matches = append(matches, m)
		}
	}

	return matches, nil
}

// Check performs preflight checks for the detector.
func (d *Detector) Check(ctx context.Context) []model.CheckResult {
	if len(d.names) == 0 {
		return []model.CheckResult{{
			ID:      "templates_loaded",
			Status:  model.CheckStatusWarning,
			Message: "No templates loaded, template searches will have nothing to match",
		}}
	}

	return []model.CheckResult{{
		ID:      "templates_loaded",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("%d templates loaded", len(d.names)),
	}}
}

// scan slides the template over the frame and returns the best placement.
func (d *Detector) scan(ctx context.Context, frame, tpl *image.RGBA, minConfidence float64) (model.Match, bool, error) {
	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	tw, th := tpl.Rect.Dx(), tpl.Rect.Dy()
	if tw > fw || th > fh {
		return model.Match{}, false, nil
	}

	total := tw * th
	maxFails := int(float64(total) * maxFailRate)

	best := model.Match{Confidence: -1}
	for y := 0; y <= fh-th; y++ {
		if err := ctx.Err(); err != nil {
			return model.Match{}, false, err
		}
		for x := 0; x <= fw-tw; x++ {
			// Cheap gate on the top-left pixel before walking the template.
			if !d.pixelMatches(frame, tpl, x, y, 0, 0) {
				continue
			}

			fails, rejected := d.compareAt(frame, tpl, x, y, maxFails)
			if rejected {
				continue
			}

			confidence := 1 - float64(fails)/float64(total)
			if confidence >= minConfidence && confidence > best.Confidence {
				best = model.Match{
					X:          x,
					Y:          y,
					Width:      tw,
					Height:     th,
					Confidence: confidence,
				}
				if fails == 0 {
					return best, true, nil
				}
			}
		}
	}

	return best, best.Confidence >= 0, nil
}

// compareAt counts failing pixels for a candidate placement, rejecting early
// when the failure budget or the hard per-pixel limit is exceeded.
func (d *Detector) compareAt(frame, tpl *image.RGBA, ox, oy, maxFails int) (fails int, rejected bool) {
	tw, th := tpl.Rect.Dx(), tpl.Rect.Dy()
	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			fo := frame.PixOffset(frame.Rect.Min.X+ox+tx, frame.Rect.Min.Y+oy+ty)
			to := tpl.PixOffset(tpl.Rect.Min.X+tx, tpl.Rect.Min.Y+ty)

			dr := absDiff(frame.Pix[fo], tpl.Pix[to])
			dg := absDiff(frame.Pix[fo+1], tpl.Pix[to+1])
			db := absDiff(frame.Pix[fo+2], tpl.Pix[to+2])

			if dr+dg+db > maxPixelDiff {
				return fails, true
			}
			if dr > d.tolerance || dg > d.tolerance || db > d.tolerance {
				fails++
				if fails > maxFails {
					return fails, true
				}
			}
		}
	}
	return fails, false
}

func (d *Detector) pixelMatches(frame, tpl *image.RGBA, ox, oy, tx, ty int) bool {
	fo := frame.PixOffset(frame.Rect.Min.X+ox+tx, frame.Rect.Min.Y+oy+ty)
	to := tpl.PixOffset(tpl.Rect.Min.X+tx, tpl.Rect.Min.Y+ty)

	return absDiff(frame.Pix[fo], tpl.Pix[to]) <= d.tolerance &&
		absDiff(frame.Pix[fo+1], tpl.Pix[to+1]) <= d.tolerance &&
		absDiff(frame.Pix[fo+2], tpl.Pix[to+2]) <= d.tolerance
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
