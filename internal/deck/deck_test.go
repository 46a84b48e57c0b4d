package deck

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arcanaland/planche/internal/card"
	"github.com/arcanaland/planche/internal/photo"
)

const sample = `Idées en vrac, pas des cartes
1. ceci n'est pas une carte|non|non

--  DEBUT  DES  CARTES  --

5. Bonus|manger un bonbon|Mange un bonbon au hasard
  6.  Défi | CHANTER une chanson |  Chante le refrain
7. Malus|perdre un tour
pas de numero ici
8. Joker|carte inconnue|Type absent de la palette
x. Ami|numero invalide|Description
9. Ami|   |Sans titre
10. Ami|Sans description|
11. Ami|barre | dans la description|Elle garde la suite
`

func TestParse(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d, err := Parse(strings.NewReader(sample), card.DefaultPalette(), zap.New(core))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	numbers := make([]int, 0, len(d.Cards))
	for _, c := range d.Cards {
		numbers = append(numbers, c.Number)
	}
	if want := []int{5, 6, 8, 11}; !reflect.DeepEqual(numbers, want) {
		t.Fatalf("numbers = %v, want %v", numbers, want)
	}

	bonus := d.Cards[0]
	if bonus.Title != "Manger Un Bonbon" {
		t.Errorf("Title = %q", bonus.Title)
	}
	if bonus.Type != "Bonus" || bonus.BackgroundColor != "#26E2B5" || bonus.FontColor != "#111111" {
		t.Errorf("unexpected bonus card %+v", bonus)
	}
	if bonus.Description != "Mange un bonbon au hasard" {
		t.Errorf("Description = %q", bonus.Description)
	}

	defi := d.Cards[1]
	if defi.Title != "Chanter Une Chanson" || defi.Description != "Chante le refrain" {
		t.Errorf("whitespace should be insignificant: %+v", defi)
	}
	if defi.BackgroundColor != "#410157" || defi.FontColor != "#F9F046" {
		t.Errorf("Défi colors = %s/%s", defi.BackgroundColor, defi.FontColor)
	}

	if d.Cards[2].HasColors() {
		t.Error("Joker is not in the palette and should have no colors")
	}

	if d.Cards[3].Title != "Barre" || d.Cards[3].Description != "dans la description|Elle garde la suite" {
		t.Errorf("extra separators belong to the description: %+v", d.Cards[3])
	}

	wantIssues := map[int]string{
		8:  ReasonMissingFields,
		9:  ReasonNoSeparator,
		11: ReasonBadNumber,
		12: ReasonEmptyTitle,
		13: ReasonEmptyDescription,
	}
	if len(d.Issues) != len(wantIssues) {
		t.Fatalf("got %d issues, want %d: %v", len(d.Issues), len(wantIssues), d.Issues)
	}
	for _, issue := range d.Issues {
		if wantIssues[issue.Line] != issue.Reason {
			t.Errorf("line %d: reason %q, want %q", issue.Line, issue.Reason, wantIssues[issue.Line])
		}
	}

	if got := logs.FilterMessage("Dropping description line").Len(); got != len(wantIssues) {
		t.Errorf("logged %d warnings, want %d", got, len(wantIssues))
	}
}

func TestParseWithoutSentinel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d, err := Parse(strings.NewReader("1. Ami|bonjour|Dis bonjour\n"), card.DefaultPalette(), zap.New(core))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(d.Cards))
	}
	if logs.FilterMessage("Sentinel not found, reading every line").Len() != 1 {
		t.Error("missing sentinel should be logged")
	}
}

func TestParseLineIsIdempotent(t *testing.T) {
	lines := []string{
		"5. Bonus|manger un bonbon|Mange un bonbon au hasard",
		"12. défi|crêpes|Fais sauter une crêpe",
		"3.Malus|x|y",
	}
	for _, line := range lines {
		first, r1 := ParseLine(line, card.DefaultPalette())
		second, r2 := ParseLine(line, card.DefaultPalette())
		if r1 != "" || r2 != "" {
			t.Fatalf("%q: unexpected reasons %q %q", line, r1, r2)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%q parsed differently: %+v vs %+v", line, first, second)
		}
	}
}

func TestParseLineMissingDescription(t *testing.T) {
	_, reason := ParseLine("5. Bonus|manger un bonbon", card.DefaultPalette())
	if reason != ReasonMissingFields {
		t.Errorf("reason = %q, want %q", reason, ReasonMissingFields)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Idées.txt")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path, card.DefaultPalette(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Path != path || len(d.Cards) != 4 {
		t.Errorf("unexpected deck: path %s, %d cards", d.Path, len(d.Cards))
	}

	if _, err := Load(filepath.Join(dir, "absent.txt"), card.DefaultPalette(), zaptest.NewLogger(t)); err == nil {
		t.Error("missing description file should fail")
	}
}

func TestFromPhotos(t *testing.T) {
	ix := photo.NewIndex(map[int]string{
		12: "/photos/12. Jean Dupont.jpg",
		3:  "/photos/3. chloé.png",
		7:  "/photos/7.jpg",
		13: "/photos/Pote | alice.jpg",
	})
	palette := card.Palette{"ami": {Background: "#F9F046", Font: "#00BE91"}}

	d := FromPhotos(ix, "ami", "Pote | ", palette, zaptest.NewLogger(t))
	if len(d.Cards) != 4 {
		t.Fatalf("got %d cards, want 4", len(d.Cards))
	}

	want := []struct {
		number int
		title  string
	}{{3, "Chloe"}, {7, ""}, {12, "Jean Dupont"}, {13, "Alice"}}
	for i, w := range want {
		c := d.Cards[i]
		if c.Number != w.number || c.Title != w.title {
			t.Errorf("card %d = %d %q, want %d %q", i, c.Number, c.Title, w.number, w.title)
		}
		if c.Type != "ami" || c.BackgroundColor != "#F9F046" || c.FontColor != "#00BE91" {
			t.Errorf("card %d should be painted as ami: %+v", i, c)
		}
	}
}
