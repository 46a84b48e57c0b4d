package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestVariantPresets(t *testing.T) {
	cfg := Defaults()

	if cfg.Default.OutputDir != "pages" || cfg.Default.CardTemplate != "card-v2.svg" {
		t.Errorf("default preset = %s, %s", cfg.Default.OutputDir, cfg.Default.CardTemplate)
	}
	if cfg.Default.NumberUnnumbered {
		t.Error("the default preset only indexes numbered photos")
	}

	friends := cfg.Friends
	if friends.OutputDir != "pages-friends" || friends.CardTemplate != "card-friend.svg" {
		t.Errorf("friends preset = %s, %s", friends.OutputDir, friends.CardTemplate)
	}
	if friends.CaptionPrefix != "Pote | " || !friends.NumberUnnumbered {
		t.Errorf("friends captions = %q, numbering = %v", friends.CaptionPrefix, friends.NumberUnnumbered)
	}
	colors, ok := friends.Palette.Lookup(friends.CardType)
	if !ok || colors.Background != "#F9F046" || colors.Font != "#00BE91" {
		t.Errorf("friends colors = %+v", colors)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Default.PageSize != 16 {
		t.Errorf("PageSize = %d, want 16", cfg.Default.PageSize)
	}
	if cfg.Friends.AspectTarget != 0.75 {
		t.Errorf("friends AspectTarget = %v, want 0.75", cfg.Friends.AspectTarget)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[default]
image_dir = "/srv/photos"
page_size = 9

[default.palette.joker]
background = "#000000"
font = "#FFFFFF"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Default.ImageDir != "/srv/photos" {
		t.Errorf("ImageDir = %q", cfg.Default.ImageDir)
	}
	if cfg.Default.PageSize != 9 {
		t.Errorf("PageSize = %d, want 9", cfg.Default.PageSize)
	}
	if _, ok := cfg.Default.Palette.Lookup("joker"); !ok {
		t.Error("joker should have been added to the palette")
	}
	if _, ok := cfg.Default.Palette.Lookup("bonus"); !ok {
		t.Error("default palette entries should be kept")
	}
	if cfg.Default.LedgerPath != "already.txt" {
		t.Errorf("unset keys should keep defaults, LedgerPath = %q", cfg.Default.LedgerPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[default]
page_size = 0

[default.palette.bonus]
background = "green"
font = "#111111"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	for _, want := range []string{"default.page_size", "default.palette.bonus.background"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %s", msg, want)
		}
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Friends.CardType = ""
	cfg.Friends.OutputDir = ""
	cfg.Logging.Level = "loud"

	errs := multierr.Errors(cfg.Validate())
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planche", "config.toml")
	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after WriteDefault: %v", err)
	}
	if cfg.Friends.CardType != "ami" {
		t.Errorf("CardType = %q, want ami", cfg.Friends.CardType)
	}

	if _, err := WriteDefault(path); err == nil {
		t.Error("WriteDefault should refuse to overwrite")
	}
}

func TestVariant(t *testing.T) {
	cfg := Defaults()
	for name, want := range map[string]*Pipeline{
		"":             &cfg.Default,
		VariantDefault: &cfg.Default,
		VariantFriends: &cfg.Friends,
	} {
		got, err := cfg.Variant(name)
		if err != nil {
			t.Fatalf("Variant(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("Variant(%q) returned the wrong pipeline", name)
		}
	}
	if _, err := cfg.Variant("cousins"); err == nil {
		t.Error("unknown variant should fail")
	}
	if !cfg.Friends.Photos() || cfg.Default.Photos() {
		t.Error("only the friends variant reads cards from photos")
	}
}

func TestGetTemplatePath(t *testing.T) {
	dir := t.TempDir()
	tplDir := filepath.Join(dir, "templates")
	if err := os.MkdirAll(tplDir, 0755); err != nil {
		t.Fatal(err)
	}
	inDir := filepath.Join(tplDir, "card-v2.svg")
	if err := os.WriteFile(inDir, []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	p := Pipeline{TemplateDir: tplDir}
	got, err := p.GetTemplatePath("card-v2.svg")
	if err != nil {
		t.Fatalf("GetTemplatePath: %v", err)
	}
	if got != inDir {
		t.Errorf("got %s, want %s", got, inDir)
	}

	direct := filepath.Join(dir, "other.svg")
	if err := os.WriteFile(direct, []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}
	if got, err := p.GetTemplatePath(direct); err != nil || got != direct {
		t.Errorf("GetTemplatePath(%s) = %s, %v", direct, got, err)
	}

	if _, err := p.GetTemplatePath("missing.svg"); err == nil {
		t.Error("missing template should fail")
	}
}
