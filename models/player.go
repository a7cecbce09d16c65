// File: models/player.go
package models

const UnknownPlaceOfBirth = "UNKNOWN"

type Player struct {
	ID           int    `json:"id" db:"id"`
	TeamID       int    `json:"team_id" db:"team_id"`
	Number       int    `json:"number" db:"number"`
	Name         string `json:"name" db:"name"`
	Role         string `json:"role" db:"role"`
	PlaceOfBirth string `json:"place_of_birth" db:"place_of_birth"`
}

// PlayerUpdate carries a roster edit. Nil fields are left unchanged.
type PlayerUpdate struct {
	Number       *int    `json:"number,omitempty"`
	Name         *string `json:"name,omitempty"`
	Role         *string `json:"role,omitempty"`
	PlaceOfBirth *string `json:"place_of_birth,omitempty"`
}

func (u PlayerUpdate) Apply(p *Player) {
	if u.Number != nil {
		p.Number = *u.Number
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.PlaceOfBirth != nil {
		p.PlaceOfBirth = *u.PlaceOfBirth
	}
}

func (u PlayerUpdate) IsEmpty() bool {
	return u.Number == nil && u.Name == nil && u.Role == nil && u.PlaceOfBirth == nil
}
