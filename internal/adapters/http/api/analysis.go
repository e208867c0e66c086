package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/okian/bilanz/internal/adapters/render/table"
	"github.com/okian/bilanz/pkg/logger"
)

// HandleRatios handles POST /api/v1/ratios requests.
func (s *Server) HandleRatios(w http.ResponseWriter, r *http.Request) {
	raw, err := ReadPeriods(w, r, s.maxBodyBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.deps.Analyze(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows := set.Rows()
	writeJSON(w, http.StatusOK, ratiosResponse{Periods: rows, Table: table.ToTable(rows)})
}

// HandleExportCSV handles POST /api/v1/export/csv requests.
func (s *Server) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	raw, err := ReadPeriods(w, r, s.maxBodyBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.ExportCSV(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.attachment(w, r, "text/csv; charset=utf-8", s.csvFileName, out)
}

// HandleExportPDF handles POST /api/v1/export/pdf requests.
func (s *Server) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	raw, err := ReadPeriods(w, r, s.maxBodyBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.ExportPDF(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.attachment(w, r, "application/pdf", s.pdfFileName, out)
}

func (s *Server) attachment(w http.ResponseWriter, r *http.Request, contentType, name string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn(r.Context(), "download interrupted", logger.String("file", name), logger.Error(err))
	}
}
