package models

import "time"

// Ratings are the three mandatory 1-5 self-assessments recorded with every
// daily entry.
type Ratings struct {
	Productivity int `json:"productivity"`
	Mood         int `json:"mood"`
	Energy       int `json:"energy"`
}

// Entry is one reflective journal record per local calendar date. Entries are
// upserted by date (last write wins) and are only ever written by the user,
// never by the rollup pipeline.
type Entry struct {
	Date            string    `json:"date"` // YYYY-MM-DD format, unique key
	DailyText       string    `json:"daily_text"`
	Accomplishments []string  `json:"accomplishments"`
	ThingsLearned   []string  `json:"things_learned"`
	ThingsGrateful  []string  `json:"things_grateful"`
	Ratings         Ratings   `json:"ratings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
