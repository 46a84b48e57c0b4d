package deck

import (
	"strings"

	"go.uber.org/zap"

	"github.com/arcanaland/planche/internal/card"
	"github.com/arcanaland/planche/internal/photo"
)

// FromPhotos builds one card per indexed photo, in number order, for decks that
// have no description file. Every card gets cardType and a title taken from the
// file name, with captionPrefix removed.
func FromPhotos(ix photo.Index, cardType, captionPrefix string, palette card.Palette, log *zap.Logger) *Deck {
	d := &Deck{}
	for _, n := range ix.Numbers() {
		path, _ := ix.Lookup(n)
		c := card.Card{
			Number: n,
			Type:   cardType,
			Title:  card.NormalizeTitle(strings.TrimPrefix(photo.Caption(path), captionPrefix)),
		}
		palette.Paint(&c)
		d.Cards = append(d.Cards, c)
	}
	log.Debug("Cards built from photos", zap.Int("cards", len(d.Cards)))
	return d
}
