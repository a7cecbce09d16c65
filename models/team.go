package models

type Team struct {
	ID      int      `json:"id" db:"id"`
	Name    string   `json:"name" db:"name"`
	Players []Player `json:"players" db:"-"`
}

// FindPlayer returns the rostered player with the given id.
func (t *Team) FindPlayer(playerID int) (*Player, bool) {
	for i := range t.Players {
		if t.Players[i].ID == playerID {
			return &t.Players[i], true
		}
	}
	return nil, false
}
