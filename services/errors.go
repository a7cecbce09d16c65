package services

import "errors"

// Errors shared by the services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	ErrGameNotFound   = errors.New("game not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")

	// ErrChampionshipTeamsLocked rejects direct edits of the final's team
	// references; they are always derived from the standings.
	ErrChampionshipTeamsLocked = errors.New("championship teams are seeded from the standings")

	ErrPersistFailed  = errors.New("failed to persist change")
	ErrNotLoaded      = errors.New("tournament state has not been loaded")
	ErrExportDisabled = errors.New("snapshot export is not configured")
)
