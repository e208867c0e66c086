package api

import (
	"net/http"
	"strconv"

	"github.com/okian/bilanz/internal/domain/quote"
)

// HandleIndex handles GET /api/v1/index requests. The optional limit query
// parameter keeps only the newest samples.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_index"
	samples := s.deps.IndexHistory(r.Context())

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.writeError(w, r, NewKind(op, ErrBadRequest))
			return
		}
		if limit < len(samples) {
			samples = samples[len(samples)-limit:]
		}
	}
	if samples == nil {
		samples = []quote.Sample{}
	}
	writeJSON(w, http.StatusOK, indexResponse{Symbols: s.deps.IndexSymbols(), Samples: samples})
}
