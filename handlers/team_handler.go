package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/services"
)

type TeamHandler struct {
	tournamentService services.TournamentService
}

func NewTeamHandler(ts services.TournamentService) *TeamHandler {
	return &TeamHandler{tournamentService: ts}
}

type playerInput struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PlaceOfBirth string `json:"place_of_birth"`
}

type addPlayersInput struct {
	Players []playerInput `json:"players"`
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams := h.tournamentService.Teams()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input models.PlayerUpdate
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.tournamentService.UpdatePlayer(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) AddPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input addPlayersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Players) == 0 {
		badRequestResponse(w, r, errors.New("players must not be empty"))
		return
	}

	players := make([]models.Player, 0, len(input.Players))
	for _, p := range input.Players {
		players = append(players, models.Player{
			Number:       p.Number,
			Name:         p.Name,
			Role:         p.Role,
			PlaceOfBirth: p.PlaceOfBirth,
		})
	}

	created, err := h.tournamentService.AddPlayers(r.Context(), teamID, players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"players": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
