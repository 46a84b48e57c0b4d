package card

import (
	"encoding/base64"
	"strings"
)

// Card represents one game prompt destined for a planche
type Card struct {
	Number          int    // Identifier taken from the description file (e.g., 5 for "5. Bonus|...")
	Type            string // Category as written by the author (ami, bonus, défi, malus)
	Title           string // Normalized title (no diacritics, title case)
	Description     string // Free text printed under the title
	BackgroundColor string // Derived from Type through the palette
	FontColor       string // Derived from Type through the palette
	Photo           *Photo // Attached during enrichment, nil when no photo was found
	AspectAdjust    bool   // Photo is already close to the target aspect ratio
	Page            int    // Page number assigned by the paginator, 0 until then
}

// HasColors reports whether the card type was found in the palette
func (c *Card) HasColors() bool {
	return c.BackgroundColor != "" && c.FontColor != ""
}

// HasPhoto reports whether a photo payload is attached
func (c *Card) HasPhoto() bool {
	return c.Photo != nil && len(c.Photo.Data) > 0
}

// Photo is the image payload embedded in a card
type Photo struct {
	Path   string // Absolute path of the source file
	MIME   string // Detected media type (e.g., image/jpeg)
	Data   []byte // Bytes to embed, possibly downscaled
	Width  int    // Width read from the original header
	Height int    // Height read from the original header
}

// Ratio returns width/height of the original photo
func (p *Photo) Ratio() float64 {
	if p == nil || p.Height == 0 {
		return 0
	}
	return float64(p.Width) / float64(p.Height)
}

// Base64 returns the payload encoded for a data URI
func (p *Photo) Base64() string {
	if p == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Colors is the background/font pair used for a card type
type Colors struct {
	Background string `toml:"background"`
	Font       string `toml:"font"`
}

// Palette maps a lower-cased card type to its colors
type Palette map[string]Colors

// DefaultPalette returns the colors of the four standard card types
func DefaultPalette() Palette {
	return Palette{
		"ami":   {Background: "#E2BD52", Font: "#111111"},
		"bonus": {Background: "#26E2B5", Font: "#111111"},
		"défi":  {Background: "#410157", Font: "#F9F046"},
		"malus": {Background: "#E23279", Font: "#111111"},
	}
}

// Lookup finds the colors of a card type, ignoring case and surrounding spaces
func (p Palette) Lookup(cardType string) (Colors, bool) {
	key := strings.ToLower(strings.TrimSpace(cardType))
	if c, ok := p[key]; ok {
		return c, true
	}
	// Keys written with a different case in the config file still match.
	for k, c := range p {
		if strings.ToLower(k) == key {
			return c, true
		}
	}
	return Colors{}, false
}

// Paint sets the card colors from the palette; unknown types leave them empty
func (p Palette) Paint(c *Card) bool {
	colors, ok := p.Lookup(c.Type)
	c.BackgroundColor = colors.Background
	c.FontColor = colors.Font
	return ok
}
