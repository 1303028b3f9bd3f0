package http

import (
	"net/http"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

type summaryResponse struct {
	services.Summary
	Recent []transactionResponse `json:"recent"`
}

// handleSummary serves the dashboard. Results are cached per user for a
// short TTL; every write through the API invalidates the user's entries.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	key := "summary:" + user + ":dashboard"

	if cached, ok := s.summaryCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "Summary cache hit", log.FieldUser, user)
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	sum, err := s.summary.Build(r.Context(), user)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.summaryCache.Set(key, sum)
	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func toSummaryResponse(sum services.Summary) summaryResponse {
	return summaryResponse{
		Summary: sum,
		Recent:  toTransactionResponses(sum.Recent),
	}
}
