package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/beevik/etree"
	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/natefinch/atomic"

	"github.com/arcanaland/planche/internal/card"
)

// CardValues is what the card template sees
type CardValues struct {
	Number          int
	Type            string
	Title           string
	Description     string
	BackgroundColor string
	FontColor       string
	Base64Image     string
	MIME            string
	AspectAdjust    bool
	Width           int
	Height          int
	// Index is the zero-based position of the card on its page
	Index int
	I     int
}

// PageValues is what the page template sees
type PageValues struct {
	Number int
	Svgs   []string
	Cards  []card.Card
}

// Options tune the renderer
type Options struct {
	// CheckSVG parses every card fragment as XML before it is embedded
	CheckSVG bool
}

// Renderer turns pages into HTML documents
type Renderer struct {
	card *template.Template
	page *template.Template
	opts Options
}

// New loads the card and page templates
func New(cardPath, pagePath string, opts Options) (*Renderer, error) {
	cardTpl, err := parseFile(cardPath)
	if err != nil {
		return nil, err
	}
	pageTpl, err := parseFile(pagePath)
	if err != nil {
		return nil, err
	}
	return &Renderer{card: cardTpl, page: pageTpl, opts: opts}, nil
}

// NewFromText builds a renderer from template sources
func NewFromText(cardText, pageText string, opts Options) (*Renderer, error) {
	cardTpl, err := parse("card", cardText)
	if err != nil {
		return nil, err
	}
	pageTpl, err := parse("page", pageText)
	if err != nil {
		return nil, err
	}
	return &Renderer{card: cardTpl, page: pageTpl, opts: opts}, nil
}

func parseFile(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading template: %w", err)
	}
	return parse(filepath.Base(path), string(data))
}

func parse(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template %s: %w", name, err)
	}
	return tpl, nil
}

// Values builds the card template context
func Values(c card.Card, index int) CardValues {
	v := CardValues{
		Number:          c.Number,
		Type:            c.Type,
		Title:           c.Title,
		Description:     c.Description,
		BackgroundColor: c.BackgroundColor,
		FontColor:       c.FontColor,
		AspectAdjust:    c.AspectAdjust,
		Index:           index,
		I:               index,
	}
	if c.Photo != nil {
		v.Base64Image = c.Photo.Base64()
		v.MIME = c.Photo.MIME
		v.Width = c.Photo.Width
		v.Height = c.Photo.Height
	}
	return v
}

// Card renders one card fragment
func (r *Renderer) Card(c card.Card, index int) (string, error) {
	buf := new(bytes.Buffer)
	if err := r.card.Execute(buf, Values(c, index)); err != nil {
		return "", fmt.Errorf("error rendering card %d: %w", c.Number, err)
	}
	if r.opts.CheckSVG {
		if err := etree.NewDocument().ReadFromBytes(buf.Bytes()); err != nil {
			return "", fmt.Errorf("card %d is not well-formed SVG: %w", c.Number, err)
		}
	}
	return buf.String(), nil
}

// Page renders a whole page document
func (r *Renderer) Page(p Page) (string, error) {
	values := PageValues{Number: p.Number, Cards: p.Cards, Svgs: make([]string, 0, len(p.Cards))}
	for i, c := range p.Cards {
		svg, err := r.Card(c, i)
		if err != nil {
			return "", err
		}
		values.Svgs = append(values.Svgs, svg)
	}

	buf := new(bytes.Buffer)
	if err := r.page.Execute(buf, values); err != nil {
		return "", fmt.Errorf("error rendering page %d: %w", p.Number, err)
	}
	return buf.String(), nil
}

// FileName returns the output name of a page
func FileName(number int) string {
	return "index" + strconv.Itoa(number) + ".html"
}

// Write renders p into dir, replacing any previous file of the same page.
// It returns the written path and its size.
func (r *Renderer) Write(dir string, p Page) (string, int, error) {
	doc, err := r.Page(p)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("error creating output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(p.Number))
	if err := atomic.WriteFile(path, bytes.NewBufferString(doc)); err != nil {
		return "", 0, fmt.Errorf("error writing page %d: %w", p.Number, err)
	}
	return path, len(doc), nil
}
