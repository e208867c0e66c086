package api

import "github.com/okian/bilanz/pkg/logger"

const (
	defaultCSVFileName  = "bilanzanalyse.csv"
	defaultPDFFileName  = "Bilanzanalyse.pdf"
	defaultMaxBodyBytes = 1 << 20
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCSVFileName sets the download name of the CSV export.
func WithCSVFileName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.csvFileName = name
		}
	}
}

// WithPDFFileName sets the download name of the PDF export.
func WithPDFFileName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.pdfFileName = name
		}
	}
}

// WithMaxBodyBytes caps accepted request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
