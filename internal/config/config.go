// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a dotenv file, an optional YAML file and BILANZ_ env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
)

// Index feed sources.
const (
	SourceSimulated = "simulated"
	SourceHTTP      = "http"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the encoder: console or json.
	LogFormat string `koanf:"log_format"`
	// LogFile enables rotated file output when set.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`
	LogMaxAgeDays int    `koanf:"log_max_age_days"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes caps request bodies accepted by the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CSVFileName and PDFFileName name the download artifacts.
	CSVFileName string `koanf:"csv_file_name"`
	PDFFileName string `koanf:"pdf_file_name"`

	// DocumentTitle is used for the table artifact and the PDF metadata.
	DocumentTitle string `koanf:"document_title"`

	// ChartTheme is the echarts theme for HTML charts.
	ChartTheme string `koanf:"chart_theme"`

	// IndexEnabled turns the live index panel on.
	IndexEnabled bool `koanf:"index_enabled"`
	// IndexSymbols lists the tracked index tickers.
	IndexSymbols []string `koanf:"index_symbols"`
	// IndexRefreshMS is the polling interval in milliseconds.
	IndexRefreshMS int `koanf:"index_refresh_ms"`
	// IndexHistorySize bounds the kept samples.
	IndexHistorySize int `koanf:"index_history_size"`
	// IndexQueueSize bounds samples waiting to be recorded.
	IndexQueueSize int `koanf:"index_queue_size"`
	// IndexSource is "simulated" or "http".
	IndexSource string `koanf:"index_source"`
	// IndexQuoteURL is a URL template with one %s for the symbol.
	IndexQuoteURL string `koanf:"index_quote_url"`
	// IndexPricePath is a JSONPath selecting the price in the response.
	IndexPricePath string `koanf:"index_price_path"`
	IndexTimeoutMS int    `koanf:"index_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "console",
		LogMaxSizeMB:     50,
		LogMaxBackups:    3,
		LogMaxAgeDays:    14,
		Addr:             ":8080",
		MaxBodyBytes:     1 << 20,
		CSVFileName:      "bilanzanalyse.csv",
		PDFFileName:      "Bilanzanalyse.pdf",
		DocumentTitle:    "Bilanzanalyse",
		ChartTheme:       "white",
		IndexEnabled:     true,
		IndexSymbols:     []string{"^GDAXI", "^STOXX50E", "^GSPC"},
		IndexRefreshMS:   10_000,
		IndexHistorySize: 50,
		IndexQueueSize:   16,
		IndexSource:      SourceSimulated,
		IndexQuoteURL:    "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1m&range=1d",
		IndexPricePath:   "$.chart.result[0].meta.regularMarketPrice",
		IndexTimeoutMS:   5_000,
	}
}

// normalize cleans list values that arrive as one comma separated string.
func (c *Config) normalize() {
	c.IndexSymbols = splitList(c.IndexSymbols)
	c.CORSOrigins = splitList(c.CORSOrigins)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.IndexSource = strings.ToLower(strings.TrimSpace(c.IndexSource))
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.MaxBodyBytes <= 0:
		return invalid("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	case c.CSVFileName == "" || c.PDFFileName == "":
		return invalid("csv_file_name and pdf_file_name must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}
	if !c.IndexEnabled {
		return nil
	}
	switch {
	case len(c.IndexSymbols) == 0:
		return invalid("index_symbols must not be empty")
	case c.IndexRefreshMS < 100:
		return invalid("index_refresh_ms must be at least 100, got %d", c.IndexRefreshMS)
	case c.IndexHistorySize <= 0:
		return invalid("index_history_size must be positive, got %d", c.IndexHistorySize)
	case c.IndexQueueSize <= 0:
		return invalid("index_queue_size must be positive, got %d", c.IndexQueueSize)
	case c.IndexTimeoutMS <= 0:
		return invalid("index_timeout_ms must be positive, got %d", c.IndexTimeoutMS)
	}
	switch c.IndexSource {
	case SourceSimulated:
	case SourceHTTP:
		if !strings.Contains(c.IndexQuoteURL, "%s") {
			return invalid("index_quote_url must contain %%s")
		}
		if c.IndexPricePath == "" {
			return invalid("index_price_path must not be empty")
		}
	default:
		return invalid("unknown index_source %q", c.IndexSource)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
