// Package config holds the typed fonts configuration for document generation.
//
// The configuration is loaded once at process start and is immutable for the
// remainder of the run. Absent keys fall back to built-in defaults; a
// malformed file falls back to the defaults entirely rather than failing the
// run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinde/go-md2docx/internal/fileutil"
	"github.com/jinde/go-md2docx/internal/yamlutil"
)

// Sentinel errors for config operations. Both are degraded conditions:
// callers report them and continue with defaults.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// FileName is the config file searched for beside the executable and in the
// working directory.
const FileName = "config"

// RGB is a color as three 0-255 channels.
type RGB [3]int

// Hex returns the color as a lowercase hex string without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", clampChannel(c[0]), clampChannel(c[1]), clampChannel(c[2]))
}

// Channels returns the clamped r, g, b values.
func (c RGB) Channels() (r, g, b int) {
	return clampChannel(c[0]), clampChannel(c[1]), clampChannel(c[2])
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Config is the root of the fonts configuration.
type Config struct {
	Fonts        FontsConfig `yaml:"fonts"`
	PDFFontPaths []string    `yaml:"pdf_font_paths"`
}

// FontsConfig groups the per-role font settings.
type FontsConfig struct {
	Normal  NormalFont  `yaml:"normal"`
	Heading HeadingFont `yaml:"heading"`
	Code    CodeFont    `yaml:"code"`
	Bold    BoldFont    `yaml:"bold"`
}

// NormalFont styles body text.
type NormalFont struct {
	Name     string  `yaml:"name"`
	EastAsia string  `yaml:"eastAsia"`
	Size     float64 `yaml:"size"`
	PDFName  string  `yaml:"pdf_name"`
}

// HeadingFont styles headings. Sizes maps heading level to point size;
// levels beyond the slice use the last entry.
type HeadingFont struct {
	Name           string    `yaml:"name"`
	EastAsia       string    `yaml:"eastAsia"`
	Colors         RGB       `yaml:"colors"`
	Sizes          []float64 `yaml:"sizes"`
	PageBreakLevel int       `yaml:"page_break_level"`
}

// CodeFont styles fenced code blocks and inline code spans.
type CodeFont struct {
	DocxName  string  `yaml:"docx_name"`
	PDFName   string  `yaml:"pdf_name"`
	Size      float64 `yaml:"size"`
	Colors    RGB     `yaml:"colors"`
	Highlight bool    `yaml:"highlight"`
}

// BoldFont styles bold spans.
type BoldFont struct {
	Colors RGB `yaml:"colors"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fonts: FontsConfig{
			Normal: NormalFont{
				Name:     "Calibri",
				EastAsia: "MS Gothic",
				Size:     11,
				PDFName:  "BodyFont",
			},
			Heading: HeadingFont{
				Name:           "Calibri",
				EastAsia:       "MS Gothic",
				Colors:         RGB{31, 73, 125},
				Sizes:          []float64{24, 18, 14, 12},
				PageBreakLevel: 2,
			},
			Code: CodeFont{
				DocxName:  "Consolas",
				PDFName:   "Courier",
				Size:      9,
				Colors:    RGB{0, 100, 0},
				Highlight: false,
			},
			Bold: BoldFont{
				Colors: RGB{192, 0, 0},
			},
		},
		PDFFontPaths: []string{
			"/usr/share/fonts/opentype/ipaexfont-gothic/ipaexg.ttf",
			"/usr/share/fonts/opentype/ipafont-gothic/ipagp.ttf",
			"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		},
	}
}

// Load reads the config at path and overlays it on the defaults, so absent
// keys keep their built-in values. It never returns a nil Config: on a
// missing file it returns the defaults with ErrConfigNotFound, and on a
// malformed file it returns the defaults with ErrConfigParse wrapped around
// the parse error. Callers treat both as degraded, not fatal.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := yamlutil.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Resolve locates the config file. An explicit path is returned as-is; an
// explicit bare name is searched for as <name>.yaml / <name>.yml in the
// same directories the default name is: beside the executable, then the
// working directory. Returns "" when nothing is found and no explicit value
// was given.
func Resolve(explicit string) string {
	if explicit != "" && (fileutil.IsFilePath(explicit) || filepath.Ext(explicit) != "") {
		return explicit
	}

	name := FileName
	if explicit != "" {
		name = explicit
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(dir, name+ext)
			if fileutil.FileExists(candidate) {
				return candidate
			}
		}
	}
	if explicit != "" {
		// Surfaces as ErrConfigNotFound at load time.
		return explicit
	}
	return ""
}

// Normalize repairs values a partial file or a hand-built Config may have
// left zeroed. The config never rejects input: empty values fall back to
// the defaults and out-of-range values are coerced.
func (c *Config) Normalize() {
	def := Default()

	if c.Fonts.Normal.Name == "" {
		c.Fonts.Normal.Name = def.Fonts.Normal.Name
	}
	if c.Fonts.Normal.EastAsia == "" {
		c.Fonts.Normal.EastAsia = def.Fonts.Normal.EastAsia
	}
	if c.Fonts.Normal.Size <= 0 {
		c.Fonts.Normal.Size = def.Fonts.Normal.Size
	}
	if c.Fonts.Normal.PDFName == "" {
		c.Fonts.Normal.PDFName = def.Fonts.Normal.PDFName
	}

	if c.Fonts.Heading.Name == "" {
		c.Fonts.Heading.Name = def.Fonts.Heading.Name
	}
	if c.Fonts.Heading.EastAsia == "" {
		c.Fonts.Heading.EastAsia = def.Fonts.Heading.EastAsia
	}
	if len(c.Fonts.Heading.Sizes) == 0 {
		c.Fonts.Heading.Sizes = def.Fonts.Heading.Sizes
	}
	if c.Fonts.Heading.PageBreakLevel < 0 {
		c.Fonts.Heading.PageBreakLevel = 0
	}
	if c.Fonts.Heading.PageBreakLevel > 6 {
		c.Fonts.Heading.PageBreakLevel = 6
	}

	if c.Fonts.Code.DocxName == "" {
		c.Fonts.Code.DocxName = def.Fonts.Code.DocxName
	}
	if c.Fonts.Code.PDFName == "" {
		c.Fonts.Code.PDFName = def.Fonts.Code.PDFName
	}
	if c.Fonts.Code.Size <= 0 {
		c.Fonts.Code.Size = def.Fonts.Code.Size
	}
}
