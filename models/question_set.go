package models

import "time"

// QuestionSet is a shareable list of questions from the public library.
type QuestionSet struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Language    *string    `json:"language,omitempty"`
	Description *string    `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	IsPublic    bool       `json:"is_public"`
	CreatorID   *string    `json:"creator_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
