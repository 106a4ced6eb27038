package models

import "time"

// User is one row in the rank ledger. Registration is by username only;
// the optional PIN is the closest thing this design has to a credential.
type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	PinHash     *string   `json:"-"`
	Country     *string   `json:"country,omitempty"`
	Rank        int       `json:"rank"`
	Wins        int       `json:"wins"`
	GamesPlayed int       `json:"games_played"`
	CreatedAt   time.Time `json:"created_at"`
}
