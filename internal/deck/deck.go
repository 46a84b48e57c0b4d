package deck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arcanaland/planche/internal/card"
)

// Sentinel marks the line after which card descriptions start
const Sentinel = "--  DEBUT  DES  CARTES  --"

// Reasons a description line is dropped
const (
	ReasonNoSeparator      = "no '.' after the card number"
	ReasonBadNumber        = "card number is not an integer"
	ReasonMissingFields    = "expected type|title|description"
	ReasonEmptyTitle       = "empty title"
	ReasonEmptyDescription = "empty description"
)

// Issue describes a dropped description line
type Issue struct {
	Line   int    // 1-based line number in the description file
	Text   string // Raw line
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %q", i.Line, i.Reason, i.Text)
}

// Deck is the set of cards read from a description file
type Deck struct {
	Path   string
	Cards  []card.Card
	Issues []Issue
}

// Load reads and parses a description file
func Load(path string, palette card.Palette, log *zap.Logger) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening description file: %w", err)
	}
	defer f.Close()

	d, err := Parse(f, palette, log)
	if err != nil {
		return nil, fmt.Errorf("error reading description file %s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// Parse extracts cards from the lines following the sentinel. Lines that cannot be
// parsed are dropped and reported in Deck.Issues.
func Parse(r io.Reader, palette card.Palette, log *zap.Logger) (*Deck, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	start := 0
	found := false
	for i, line := range lines {
		if strings.Contains(line, Sentinel) {
			start, found = i+1, true
			break
		}
	}
	if !found {
		log.Warn("Sentinel not found, reading every line", zap.String("sentinel", Sentinel))
	}

	d := &Deck{}
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}

		c, reason := ParseLine(line, palette)
		if reason != "" {
			issue := Issue{Line: i + 1, Text: line, Reason: reason}
			d.Issues = append(d.Issues, issue)
			log.Warn("Dropping description line",
				zap.Int("line", issue.Line), zap.String("reason", reason), zap.String("text", line))
			continue
		}
		d.Cards = append(d.Cards, c)
	}

	log.Debug("Description parsed", zap.Int("cards", len(d.Cards)), zap.Int("dropped", len(d.Issues)))
	return d, nil
}

// ParseLine parses "<number>.<type>|<title>|<description>". The returned reason is
// empty when the line produced a card.
func ParseLine(line string, palette card.Palette) (card.Card, string) {
	nb, rest, ok := strings.Cut(line, ".")
	if !ok || strings.TrimSpace(rest) == "" {
		return card.Card{}, ReasonNoSeparator
	}

	number, err := strconv.Atoi(strings.TrimSpace(nb))
	if err != nil {
		return card.Card{}, ReasonBadNumber
	}

	fields := strings.SplitN(rest, "|", 3)
	if len(fields) < 3 {
		return card.Card{}, ReasonMissingFields
	}

	c := card.Card{
		Number:      number,
		Type:        strings.TrimSpace(fields[0]),
		Title:       card.NormalizeTitle(fields[1]),
		Description: strings.TrimSpace(fields[2]),
	}
	if c.Title == "" {
		return card.Card{}, ReasonEmptyTitle
	}
	if c.Description == "" {
		return card.Card{}, ReasonEmptyDescription
	}

	palette.Paint(&c)
	return c, ""
}
