package models

import "time"

type MatchStatus string

const (
	MatchStatusWaiting  MatchStatus = "waiting"
	MatchStatusPlaying  MatchStatus = "playing"
	MatchStatusFinished MatchStatus = "finished"
)

// MatchPlayer is embedded in a match document, it has no lifecycle of its own.
type MatchPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CharacterID string `json:"character_id,omitempty"`
	Score       int    `json:"score"`
	HP          int    `json:"hp"`
}

// Match is one duel session from creation to finish.
//
// Players never exceeds two entries. CurrentQuestion is present exactly while
// the match is playing. PublicRank and PublicCountry snapshot the waiting
// player's ledger values and exist only as matchmaking search keys; they go
// stale once the match fills, which is harmless because a full match is no
// longer waiting. Participants collects every display name that ever joined
// and backs the history query.
type Match struct {
	ID              int              `json:"id"`
	Code            string           `json:"code"`
	MapID           *string          `json:"map_id,omitempty"`
	Status          MatchStatus      `json:"status"`
	Players         []MatchPlayer    `json:"players"`
	CurrentQuestion *CurrentQuestion `json:"current_question,omitempty"`
	Winner          *string          `json:"winner,omitempty"`
	PublicRank      *int             `json:"public_rank,omitempty"`
	PublicCountry   *string          `json:"public_country,omitempty"`
	Questions       []Question       `json:"questions,omitempty"`
	Participants    []string         `json:"participants,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// PlayerByID returns the embedded player record with the given id, or nil.
func (m *Match) PlayerByID(id string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].ID == id {
			return &m.Players[i]
		}
	}
	return nil
}

// PlayerByName returns the embedded player record with the given display name, or nil.
func (m *Match) PlayerByName(name string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].Name == name {
			return &m.Players[i]
		}
	}
	return nil
}

// HasRoom reports whether another player may still be admitted.
func (m *Match) HasRoom() bool {
	return m.Status == MatchStatusWaiting && len(m.Players) < 2
}
