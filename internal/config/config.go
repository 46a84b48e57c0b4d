package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/natefinch/atomic"
	"go.uber.org/multierr"

	"github.com/arcanaland/planche/internal/card"
)

// Variant names accepted by Config.Variant
const (
	VariantDefault = "default"
	VariantFriends = "friends"
)

// Config represents the application configuration
type Config struct {
	Default Pipeline      `toml:"default"`
	Friends Pipeline      `toml:"friends"`
	Logging LoggingConfig `toml:"logging"`
}

// Pipeline holds everything one rendering variant needs
type Pipeline struct {
	// DescriptionPath is the hand-written card list. Empty means cards are
	// synthesized from the photo directory.
	DescriptionPath string `toml:"description_path"`
	ImageDir        string `toml:"image_dir"`
	LedgerPath      string `toml:"ledger_path"`
	OutputDir       string `toml:"output_dir"`
	TemplateDir     string `toml:"template_dir"`
	PageTemplate    string `toml:"page_template"`
	CardTemplate    string `toml:"card_template"`

	PageSize int `toml:"page_size"`

	AspectHeuristic bool    `toml:"aspect_heuristic"`
	AspectTarget    float64 `toml:"aspect_target"`
	AspectTolerance float64 `toml:"aspect_tolerance"`

	// MaxPhotoDimension shrinks embedded photos whose longest side is larger. 0 keeps originals.
	MaxPhotoDimension int `toml:"max_photo_dimension"`
	// CheckSVG parses every rendered card fragment as XML.
	CheckSVG bool `toml:"check_svg"`

	// Cards synthesized from photos get CardType and a title made from the file
	// name without CaptionPrefix. NumberUnnumbered gives photos without a leading
	// number the numbers following the highest numbered photo, in natural order.
	CardType         string `toml:"card_type"`
	CaptionPrefix    string `toml:"caption_prefix"`
	NumberUnnumbered bool   `toml:"number_unnumbered"`

	Palette card.Palette `toml:"palette"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Default: Pipeline{
			DescriptionPath: "Idées.txt",
			ImageDir:        "Photos",
			LedgerPath:      "already.txt",
			OutputDir:       "pages",
			TemplateDir:     "templates",
			PageTemplate:    "template.html",
			CardTemplate:    "card-v2.svg",
			PageSize:        16,
			AspectHeuristic: true,
			AspectTarget:    1.0,
			AspectTolerance: 0.1,
			CheckSVG:        true,
			Palette:         card.DefaultPalette(),
		},
		Friends: Pipeline{
			ImageDir:         "Photos-Amis",
			LedgerPath:       "already-friends.txt",
			OutputDir:        "pages-friends",
			TemplateDir:      "templates",
			PageTemplate:     "template.html",
			CardTemplate:     "card-friend.svg",
			PageSize:         16,
			AspectHeuristic:  true,
			AspectTarget:     0.75,
			AspectTolerance:  0.1,
			CheckSVG:         true,
			CardType:         "ami",
			CaptionPrefix:    "Pote | ",
			NumberUnnumbered: true,
			Palette: card.Palette{
				"ami": {Background: "#F9F046", Font: "#00BE91"},
			},
		},
		Logging: LoggingConfig{
			Level: "normal",
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "planche", "config.toml")
}

// GetCacheDir returns the directory used for terminal previews
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), "planche")
}

// LoadConfig loads the config file at path, or the default location when path is empty.
// A missing file yields the built-in defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	config := Defaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// WriteDefault writes the built-in configuration to path, refusing to overwrite an existing file
func WriteDefault(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("config file already exists: %s", path)
	}

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Defaults()
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}
	if err := atomic.WriteFile(path, buf); err != nil {
		return nil, fmt.Errorf("error writing config file: %w", err)
	}
	return config, nil
}

// Variant returns the pipeline settings selected by name
func (c *Config) Variant(name string) (*Pipeline, error) {
	switch name {
	case "", VariantDefault:
		return &c.Default, nil
	case VariantFriends:
		return &c.Friends, nil
	default:
		return nil, fmt.Errorf("unknown variant: %s", name)
	}
}

// Validate reports every problem found in the configuration
func (c *Config) Validate() error {
	var err error
	err = multierr.Append(err, c.Default.validate(VariantDefault))
	err = multierr.Append(err, c.Friends.validate(VariantFriends))
	err = multierr.Append(err, c.Logging.validate())
	return err
}

func (p *Pipeline) validate(name string) error {
	var err error
	if p.ImageDir == "" {
		err = multierr.Append(err, fmt.Errorf("%s.image_dir is required", name))
	}
	if p.LedgerPath == "" {
		err = multierr.Append(err, fmt.Errorf("%s.ledger_path is required", name))
	}
	if p.OutputDir == "" {
		err = multierr.Append(err, fmt.Errorf("%s.output_dir is required", name))
	}
	if p.PageTemplate == "" {
		err = multierr.Append(err, fmt.Errorf("%s.page_template is required", name))
	}
	if p.CardTemplate == "" {
		err = multierr.Append(err, fmt.Errorf("%s.card_template is required", name))
	}
	if p.PageSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s.page_size must be positive, got %d", name, p.PageSize))
	}
	if p.AspectHeuristic {
		if p.AspectTarget <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s.aspect_target must be positive", name))
		}
		if p.AspectTolerance < 0 {
			err = multierr.Append(err, fmt.Errorf("%s.aspect_tolerance must not be negative", name))
		}
	}
	if p.MaxPhotoDimension < 0 {
		err = multierr.Append(err, fmt.Errorf("%s.max_photo_dimension must not be negative", name))
	}
	if p.DescriptionPath == "" && p.CardType == "" {
		err = multierr.Append(err, fmt.Errorf("%s.card_type is required when description_path is empty", name))
	}
	if len(p.Palette) == 0 {
		err = multierr.Append(err, fmt.Errorf("%s.palette must define at least one card type", name))
	}
	for cardType, colors := range p.Palette {
		if _, e := colorful.Hex(colors.Background); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s.palette.%s.background: invalid color %q", name, cardType, colors.Background))
		}
		if _, e := colorful.Hex(colors.Font); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s.palette.%s.font: invalid color %q", name, cardType, colors.Font))
		}
	}
	return err
}

// GetTemplatePath resolves a template name, either relative to the working directory or
// inside the template directory
func (p *Pipeline) GetTemplatePath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	if p.TemplateDir != "" && !filepath.IsAbs(name) {
		candidate := filepath.Join(p.TemplateDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("template not found: %s", name)
}

// Photos reports whether cards come from the photo directory instead of a description file
func (p *Pipeline) Photos() bool {
	return p.DescriptionPath == ""
}
