package models

import "time"

type SummaryType string

const (
	SummaryWeekly  SummaryType = "weekly"
	SummaryMonthly SummaryType = "monthly"
	SummaryYearly  SummaryType = "yearly"
)

// Insights is the structured aggregate attached to every summary. It is
// persisted as a JSON column alongside the scalar summary fields, so field
// names are part of the on-disk contract.
type Insights struct {
	KeyThemes          []string `json:"key_themes"`
	ProductivityTrend  float64  `json:"productivity_trend"`
	MoodTrend          float64  `json:"mood_trend"`
	EnergyTrend        float64  `json:"energy_trend"`
	TopAccomplishments []string `json:"top_accomplishments"`
	MainLearnings      []string `json:"main_learnings"`
}

// Summary is one rolled-up narrative per (type, period). Weekly summaries are
// derived from entries, monthly from weekly summaries, yearly from monthly
// summaries. Summaries are created only by the rollup pipeline, never mutated
// after creation, and deleted only explicitly by the user.
type Summary struct {
	ID        string      `json:"id"`
	Type      SummaryType `json:"type"`
	StartDate string      `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string      `json:"end_date"`   // YYYY-MM-DD, inclusive
	Content   string      `json:"content"`    // markdown narrative
	Insights  Insights    `json:"insights"`
	CreatedAt time.Time   `json:"created_at"`
}
