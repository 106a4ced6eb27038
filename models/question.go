package models

// Question is one trivia item. Matches either draw from the shared bank
// or from their own embedded list when one was supplied at creation.
type Question struct {
	Text    string   `json:"text"`
	Code    *string  `json:"code,omitempty"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// CurrentQuestion is the question a playing match is waiting on.
// StartTime is recorded for latency analytics only, it is not a deadline.
type CurrentQuestion struct {
	Text         string   `json:"text"`
	Code         *string  `json:"code,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	StartTime    int64    `json:"start_time"`
}
