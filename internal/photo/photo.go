package photo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/arcanaland/planche/internal/card"
)

// Options controls how photos are loaded and judged
type Options struct {
	// AspectHeuristic enables the AspectAdjust flag
	AspectHeuristic bool
	// AspectTarget is the width/height ratio the card template is designed for
	AspectTarget float64
	// AspectTolerance is the largest distance to AspectTarget still flagged as adjusted
	AspectTolerance float64
	// MaxDimension shrinks photos whose longest side exceeds it, 0 disables
	MaxDimension int
}

// Load reads a photo and its dimensions. Only the header is decoded unless the
// photo has to be shrunk.
func Load(path string, opts Options) (*card.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading photo: %w", err)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.MIME.Type != "image" {
		return nil, fmt.Errorf("not a recognized image: %s", path)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error reading photo dimensions: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("photo has no size: %s", path)
	}

	p := &card.Photo{
		Path:   path,
		MIME:   kind.MIME.Value,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	if opts.MaxDimension > 0 && max(cfg.Width, cfg.Height) > opts.MaxDimension {
		if err := shrink(p, opts.MaxDimension); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// shrink re-encodes the payload so that its longest side fits in limit. PNG stays
// PNG to keep transparency, anything else becomes JPEG.
func shrink(p *card.Photo, limit int) error {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return fmt.Errorf("error decoding photo: %w", err)
	}

	small := resize.Thumbnail(uint(limit), uint(limit), img, resize.Lanczos3)

	buf := new(bytes.Buffer)
	if p.MIME == "image/png" {
		err = png.Encode(buf, small)
	} else {
		err = jpeg.Encode(buf, small, &jpeg.Options{Quality: 85})
		p.MIME = "image/jpeg"
	}
	if err != nil {
		return fmt.Errorf("error encoding shrunk photo: %w", err)
	}
	p.Data = buf.Bytes()
	return nil
}

// NearTarget reports whether ratio is within the tolerance of the target
func (o Options) NearTarget(ratio float64) bool {
	return math.Abs(o.AspectTarget-ratio) < o.AspectTolerance
}

// Enrich attaches photos to cards. A missing or unreadable photo leaves the card
// without payload; the validity filter rejects it later.
func Enrich(cards []card.Card, ix Index, opts Options, log *zap.Logger) {
	for i := range cards {
		c := &cards[i]
		c.Photo = nil
		c.AspectAdjust = false

		path, ok := ix.Lookup(c.Number)
		if !ok {
			continue
		}

		p, err := Load(path, opts)
		if err != nil {
			log.Warn("Unable to load photo", zap.Int("number", c.Number), zap.String("path", path), zap.Error(err))
			continue
		}

		c.Photo = p
		if opts.AspectHeuristic {
			c.AspectAdjust = opts.NearTarget(p.Ratio())
		}
		log.Debug("Photo attached", zap.Int("number", c.Number), zap.String("mime", p.MIME),
			zap.Float64("ratio", p.Ratio()), zap.Bool("adjust", c.AspectAdjust))
	}
}
