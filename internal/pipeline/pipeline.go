package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arcanaland/planche/internal/config"
	"github.com/arcanaland/planche/internal/deck"
	"github.com/arcanaland/planche/internal/ledger"
	"github.com/arcanaland/planche/internal/photo"
	"github.com/arcanaland/planche/internal/render"
	"github.com/arcanaland/planche/internal/validator"
)

// Options change what a run does
type Options struct {
	// CardTemplate is the resolved path of the card template
	CardTemplate string
	// DryRun renders every page in memory but writes nothing
	DryRun bool
}

// Batch is everything known about the cards before rendering
type Batch struct {
	Deck    *deck.Deck
	Photos  photo.Index
	Ledger  *ledger.Ledger
	Results validator.Results
}

// Stats summarizes a run
type Stats struct {
	RunID     string
	Cards     int
	Rendered  int
	Pages     []int
	Files     []string
	Bytes     int64
	Malformed int
	Rejected  map[validator.Reason]int
	DryRun    bool
}

// PhotoOptions derives the photo loading options of a pipeline
func PhotoOptions(cfg *config.Pipeline) photo.Options {
	return photo.Options{
		AspectHeuristic: cfg.AspectHeuristic,
		AspectTarget:    cfg.AspectTarget,
		AspectTolerance: cfg.AspectTolerance,
		MaxDimension:    cfg.MaxPhotoDimension,
	}
}

// Prepare reads every input and decides which cards can be rendered. Nothing is written.
func Prepare(cfg *config.Pipeline, log *zap.Logger) (*Batch, error) {
	rendered, err := ledger.Load(cfg.LedgerPath, log)
	if err != nil {
		return nil, err
	}

	scan := photo.Scan
	if cfg.NumberUnnumbered {
		scan = photo.ScanAll
	}
	ix, err := scan(cfg.ImageDir, log)
	if err != nil {
		return nil, err
	}

	var d *deck.Deck
	if cfg.Photos() {
		d = deck.FromPhotos(ix, cfg.CardType, cfg.CaptionPrefix, cfg.Palette, log)
	} else if d, err = deck.Load(cfg.DescriptionPath, cfg.Palette, log); err != nil {
		return nil, err
	}

	photo.Enrich(d.Cards, ix, PhotoOptions(cfg), log)

	return &Batch{
		Deck:    d,
		Photos:  ix,
		Ledger:  rendered,
		Results: validator.NewValidator(rendered, log).Filter(d.Cards),
	}, nil
}

// Run renders every card not yet in the ledger and records where it went
func Run(cfg *config.Pipeline, opts Options, log *zap.Logger) (stats *Stats, err error) {
	runID := uuid.NewString()
	log = log.With(zap.String("run", runID))

	if !opts.DryRun {
		var unlock func() error
		if unlock, err = ledger.Lock(cfg.LedgerPath); err != nil {
			return nil, err
		}
		defer func() {
			if e := unlock(); e != nil {
				err = multierr.Append(err, fmt.Errorf("release ledger lock: %w", e))
			}
		}()
	}

	pageTemplate, err := cfg.GetTemplatePath(cfg.PageTemplate)
	if err != nil {
		return nil, err
	}
	if opts.CardTemplate == "" {
		return nil, errors.New("no card template given")
	}
	r, err := render.New(opts.CardTemplate, pageTemplate, render.Options{CheckSVG: cfg.CheckSVG})
	if err != nil {
		return nil, err
	}

	batch, err := Prepare(cfg, log)
	if err != nil {
		return nil, err
	}

	stats = &Stats{
		RunID:     runID,
		Cards:     len(batch.Deck.Cards),
		Malformed: len(batch.Deck.Issues),
		Rejected:  make(map[validator.Reason]int),
		DryRun:    opts.DryRun,
	}
	for _, rej := range batch.Results.Rejected {
		stats.Rejected[rej.Reason]++
	}

	pages := render.Paginate(batch.Results.Accepted, cfg.PageSize, batch.Ledger.MaxPage()+1)
	if len(pages) == 0 {
		log.Info("Nothing new to render", zap.Int("cards", stats.Cards), zap.Int("ledger", batch.Ledger.Len()))
		return stats, nil
	}

	var fresh []ledger.Entry
	for _, p := range pages {
		if opts.DryRun {
			doc, err := r.Page(p)
			if err != nil {
				return nil, err
			}
			stats.Bytes += int64(len(doc))
		} else {
			path, size, err := r.Write(cfg.OutputDir, p)
			if err != nil {
				return nil, err
			}
			stats.Files = append(stats.Files, path)
			stats.Bytes += int64(size)
			log.Info("Page written", zap.Int("page", p.Number), zap.Int("cards", len(p.Cards)), zap.String("path", path))
		}

		stats.Pages = append(stats.Pages, p.Number)
		stats.Rendered += len(p.Cards)
		for _, c := range p.Cards {
			fresh = append(fresh, ledger.Entry{Number: c.Number, Page: c.Page, Title: c.Title})
		}
	}

	if opts.DryRun {
		log.Info("Dry run, ledger left untouched", zap.Int("pages", len(pages)))
		return stats, nil
	}

	batch.Ledger.Merge(fresh)
	if err := batch.Ledger.Save(cfg.LedgerPath); err != nil {
		return nil, err
	}
	log.Info("Ledger updated", zap.String("path", cfg.LedgerPath), zap.Int("entries", batch.Ledger.Len()))
	return stats, nil
}
