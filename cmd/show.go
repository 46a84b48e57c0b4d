package cmd

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/arcanaland/planche/internal/card"
	"github.com/arcanaland/planche/internal/config"
	"github.com/arcanaland/planche/internal/pipeline"
	"github.com/arcanaland/planche/internal/validator"
)

const (
	artWidth  = 32
	artHeight = 24
)

var showCmd = &cobra.Command{
	Use:   "show [number]",
	Short: "Display a card with its photo as ANSI art",
	Long: `Show displays everything known about one card: its title, type and colors,
its photo rendered as ANSI terminal art, and whether it is ready, excluded or
already rendered on some page.

Examples:
  planche show 12
  planche show --friends 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid card number: %s", args[0])
		}

		_, p, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		batch, err := pipeline.Prepare(p, log)
		if err != nil {
			return err
		}

		c, status, ok := findCard(batch, number)
		if !ok {
			return fmt.Errorf("card %d not found in %s", number, describeSource(p))
		}

		var ansiArt string
		if c.HasPhoto() {
			ansiArt, err = loadAnsiArt(c.Photo)
			if err != nil {
				return fmt.Errorf("error rendering photo: %w", err)
			}
		}

		displayCard(c, ansiArt, status)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

func describeSource(p *config.Pipeline) string {
	if p.Photos() {
		return p.ImageDir
	}
	return p.DescriptionPath
}

// findCard looks the card up among accepted and rejected cards and describes its state
func findCard(batch *pipeline.Batch, number int) (*card.Card, string, bool) {
	for i := range batch.Results.Accepted {
		if c := &batch.Results.Accepted[i]; c.Number == number {
			return c, colorize.GreenString("ready to render"), true
		}
	}
	for i := range batch.Results.Rejected {
		rej := &batch.Results.Rejected[i]
		if rej.Card.Number != number {
			continue
		}
		if rej.Reason == validator.AlreadyRendered {
			if e, ok := batch.Ledger.Get(number); ok {
				return &rej.Card, colorize.YellowString("rendered on page %d", e.Page), true
			}
		}
		return &rej.Card, colorize.RedString("excluded: %s", rej.Reason), true
	}
	return nil, "", false
}

// loadAnsiArt converts a photo to ANSI art, reusing a cached rendering when one exists
func loadAnsiArt(ph *card.Photo) (string, error) {
	cacheDir := filepath.Join(config.GetCacheDir(), "ansi_cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ANSI cache directory: %w", err)
	}

	cachePath := filepath.Join(cacheDir, fmt.Sprintf("%x.ansi", md5.Sum(ph.Data)))
	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(ph.Data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	width, height := artWidth, artHeight
	if r := ph.Ratio(); r > 0 {
		height = int(float64(width)/r/2 + 0.5)
		if height < 1 {
			height = 1
		}
	}

	ansiArt := imageToAnsi(img, width, height)
	if err := os.WriteFile(cachePath, []byte(ansiArt), 0644); err != nil {
		return "", fmt.Errorf("failed to write ANSI art to file: %w", err)
	}
	return ansiArt, nil
}

// imageToAnsi converts an image to ANSI art using upper half blocks
func imageToAnsi(img image.Image, width, height int) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			c1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			c2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			c3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			c4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			// top pixels as foreground, bottom pixels as background
			buffer.WriteString(ansiColorString('▀', averageColor(c1, c2), averageColor(c3, c4)))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// getColorAt returns the color at a specific coordinate
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// ansiColorString formats a character with 24-bit ANSI color codes
func ansiColorString(char rune, fg, bg colorful.Color) string {
	r1, g1, b1 := fg.Clamped().RGB255()
	r2, g2, b2 := bg.Clamped().RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// swatch renders a card's colors the way its title will look on paper
func swatch(c *card.Card) string {
	bg, err := colorful.Hex(c.BackgroundColor)
	if err != nil {
		return ""
	}
	fg, err := colorful.Hex(c.FontColor)
	if err != nil {
		return ""
	}
	r1, g1, b1 := fg.RGB255()
	r2, g2, b2 := bg.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm %s \x1b[0m",
		r1, g1, b1, r2, g2, b2, c.Title)
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len([]rune(currentLine))+1+len([]rune(word)) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// displayCard displays the card information next to its ANSI art
func displayCard(c *card.Card, ansiArt, status string) {
	var ansiLines []string
	if ansiArt != "" {
		ansiLines = strings.Split(strings.TrimSuffix(ansiArt, "\n"), "\n")
	}
	maxAnsiWidth := 0
	for _, line := range ansiLines {
		if w := visibleWidth(line); w > maxAnsiWidth {
			maxAnsiWidth = w
		}
	}

	var infoLines []string
	infoLines = append(infoLines, colorize.CyanString("Card:   ")+colorize.HiWhiteString("%d. %s", c.Number, c.Title))
	if c.Type != "" {
		infoLines = append(infoLines, colorize.CyanString("Type:   ")+colorize.HiWhiteString("%s", c.Type))
	}
	if c.HasColors() {
		infoLines = append(infoLines, colorize.CyanString("Colors: ")+swatch(c)+
			colorize.HiWhiteString(" %s on %s", c.FontColor, c.BackgroundColor))
	}
	if c.HasPhoto() {
		infoLines = append(infoLines, colorize.CyanString("Photo:  ")+colorize.HiWhiteString("%s", c.Photo.Path))
		infoLines = append(infoLines, colorize.CyanString("Size:   ")+
			colorize.HiWhiteString("%dx%d %s", c.Photo.Width, c.Photo.Height, c.Photo.MIME))
		if c.AspectAdjust {
			infoLines = append(infoLines, colorize.CyanString("Aspect: ")+colorize.HiWhiteString("adjusted"))
		}
	}
	infoLines = append(infoLines, colorize.CyanString("Status: ")+status)

	spacing := 4
	infoStartCol := maxAnsiWidth + spacing
	if maxAnsiWidth == 0 {
		infoStartCol = 0
	}

	infoWidth := terminalWidth() - infoStartCol - 2
	if infoWidth < 20 {
		infoWidth = 20
	}

	if c.Description != "" {
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, colorize.CyanString("Description:"))
		infoLines = append(infoLines, wrapText(c.Description, infoWidth)...)
	}

	fmt.Println()

	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		fmt.Print("  ")
		if i < len(ansiLines) {
			fmt.Print(ansiLines[i])
			fmt.Print(strings.Repeat(" ", infoStartCol-visibleWidth(ansiLines[i])))
		} else {
			fmt.Print(strings.Repeat(" ", infoStartCol))
		}

		if i < len(infoLines) {
			fmt.Print(infoLines[i])
		}

		fmt.Println()
	}

	fmt.Println()
}

// visibleWidth counts the runes of s outside ANSI escape sequences
func visibleWidth(s string) int {
	return len([]rune(stripAnsi(s)))
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
