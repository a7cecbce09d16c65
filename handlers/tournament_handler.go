package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/softball-tournament/services"
)

const maxLeaderLimit = 100

type TournamentHandler struct {
	tournamentService services.TournamentService
	exportService     services.ExportService
}

func NewTournamentHandler(ts services.TournamentService, es services.ExportService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		exportService:     es,
	}
}

func (h *TournamentHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings := h.tournamentService.Standings()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLeaders handles GET /api/leaders?limit=N. A missing limit uses the
// default top ten.
func (h *TournamentHandler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLeaderLimit {
			badRequestResponse(w, r, fmt.Errorf("limit must be between 1 and %d", maxLeaderLimit))
			return
		}
		limit = n
	}

	leaders := h.tournamentService.Leaderboard(limit)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaders": leaders}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetChampion responds with a null champion while the final is undecided.
func (h *TournamentHandler) GetChampion(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{"champion": nil}
	if champion, ok := h.tournamentService.Champion(); ok {
		response["champion"] = champion
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Reset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportService.Publish(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"export": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
