package site

import (
	"time"

	"github.com/okian/bilanz/pkg/logger"
)

type config struct {
	chartTheme   string
	refresh      time.Duration
	maxBodyBytes int64
	logger       logger.Logger
}

func defaultConfig() config {
	return config{
		chartTheme:   "white",
		refresh:      10 * time.Second,
		maxBodyBytes: 1 << 20,
	}
}

// Option applies a configuration option to a new Site.
type Option func(*config)

// WithChartTheme sets the echarts theme of the market charts.
func WithChartTheme(theme string) Option {
	return func(c *config) {
		if theme != "" {
			c.chartTheme = theme
		}
	}
}

// WithRefresh sets how often the markets page reloads itself.
func WithRefresh(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// WithMaxBodyBytes caps the analysis form body.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger of the site handlers.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
