package handlers

import (
	"net/http"

	"github.com/Dosada05/softball-tournament/models"
)

type statsInput struct {
	Stats map[string]float64 `json:"stats"`
}

// SaveBatting merges {"stats": {"hits": 2, ...}} into the player's batting
// line for the game. Unknown stat names are rejected.
func (h *GameHandler) SaveBatting(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, input, ok := h.readStatsRequest(w, r)
	if !ok {
		return
	}

	line, err := models.ParseBattingLine(input.Stats)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.SaveBatting(r.Context(), gameID, playerID, line)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SavePitching takes innings_pitched in the box-score notation (6.2 is six
// innings and two outs).
func (h *GameHandler) SavePitching(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, input, ok := h.readStatsRequest(w, r)
	if !ok {
		return
	}

	line, err := models.ParsePitchingLine(input.Stats)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.SavePitching(r.Context(), gameID, playerID, line)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) readStatsRequest(w http.ResponseWriter, r *http.Request) (int, int, statsInput, bool) {
	var input statsInput

	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, input, false
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, input, false
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, input, false
	}
	return gameID, playerID, input, true
}
