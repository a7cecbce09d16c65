package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/services"
	"github.com/go-chi/chi/v5"
)

type GameHandler struct {
	tournamentService services.TournamentService
}

func NewGameHandler(ts services.TournamentService) *GameHandler {
	return &GameHandler{tournamentService: ts}
}

type updateGameInput struct {
	Field string     `json:"field"`
	Value fieldValue `json:"value"`
}

type updateInningInput struct {
	Value fieldValue `json:"value"`
}

func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games := h.tournamentService.Games()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.Game(gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGame applies a single field edit: {"field": "score1", "value": "5"}.
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	field, err := models.ParseGameField(strings.TrimSpace(input.Field))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.UpdateGameField(r.Context(), gameID, field, string(input.Value))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateInning edits one cell of the line score. The inning is the zero-based
// index and the side is 0 for team1 and 1 for team2.
func (h *GameHandler) UpdateInning(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	inning, err := getIndexFromURL(r, "inning")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	side, err := getIndexFromURL(r, "side")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateInningInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.UpdateInning(r.Context(), gameID, inning, side, string(input.Value))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) SwapTeams(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.tournamentService.SwapTeams(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func getIndexFromURL(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid %s value: %q", paramName, raw)
	}
	return idx, nil
}
