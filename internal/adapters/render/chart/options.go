package chart

import "github.com/go-echarts/go-echarts/v2/opts"

// Default interactive chart settings.
const (
	defaultTheme    = "white"
	defaultWidth    = "480px"
	defaultHeight   = "380px"
	defaultIDPrefix = "bilanz"
)

// HTMLOption configures the interactive chart rendering.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	theme    string
	width    string
	height   string
	idPrefix string
}

func newHTMLConfig(options ...HTMLOption) *htmlConfig {
	cfg := &htmlConfig{
		theme:    defaultTheme,
		width:    defaultWidth,
		height:   defaultHeight,
		idPrefix: defaultIDPrefix,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

func (c *htmlConfig) initialization(id string) opts.Initialization {
	return opts.Initialization{
		ChartID: id,
		Theme:   c.theme,
		Width:   c.width,
		Height:  c.height,
	}
}

// WithTheme selects an echarts theme such as "white", "dark" or "vintage".
func WithTheme(theme string) HTMLOption {
	return func(c *htmlConfig) {
		if theme != "" {
			c.theme = theme
		}
	}
}

// WithSize sets the canvas size as CSS lengths.
func WithSize(width, height string) HTMLOption {
	return func(c *htmlConfig) {
		if width != "" && height != "" {
			c.width = width
			c.height = height
		}
	}
}

// WithIDPrefix makes element ids unique when several charts share a page.
func WithIDPrefix(prefix string) HTMLOption {
	return func(c *htmlConfig) {
		if prefix != "" {
			c.idPrefix = prefix
		}
	}
}
