package validation

import (
	"fmt"
	"strings"

	"github.com/ahollis/retro/internal/constants"
	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
)

// ProblemType identifies what an entry check found
type ProblemType string

const (
	ProblemInvalidDate   ProblemType = "invalid_date"
	ProblemRatingRange   ProblemType = "rating_out_of_range"
	ProblemEmptyEntry    ProblemType = "empty_entry"
	ProblemOversizedText ProblemType = "oversized_text"
)

// MaxDailyTextLen caps the free-form reflection so a runaway paste does not
// bloat the store or the rollup content.
const MaxDailyTextLen = 10000

// Problem describes a single validation failure on an entry
type Problem struct {
	Type        ProblemType
	Field       string
	Description string
}

// Result holds everything found wrong with an entry
type Result struct {
	Problems []Problem
}

// OK returns true when no problems were found
func (r *Result) OK() bool {
	return len(r.Problems) == 0
}

// FormatReport returns a human-readable report of all problems
func (r *Result) FormatReport() string {
	if r.OK() {
		return "Entry is valid."
	}
	var b strings.Builder
	b.WriteString("Entry problems:\n")
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Description)
	}
	return b.String()
}

// Err returns a single error summarizing the result, or nil when valid
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	descriptions := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		descriptions[i] = p.Description
	}
	return fmt.Errorf("invalid entry: %s", strings.Join(descriptions, "; "))
}

// ValidateEntry checks an entry before it is persisted. It does not modify
// the entry; call NormalizeEntry first to trim whitespace and drop blank
// list items.
func ValidateEntry(entry models.Entry) Result {
	result := Result{}

	if _, err := dateutil.ParseDate(entry.Date); err != nil {
		result.Problems = append(result.Problems, Problem{
			Type:        ProblemInvalidDate,
			Field:       "date",
			Description: fmt.Sprintf("date %q is not a valid YYYY-MM-DD calendar date", entry.Date),
		})
	}

	checkRating(&result, "productivity", entry.Ratings.Productivity)
	checkRating(&result, "mood", entry.Ratings.Mood)
	checkRating(&result, "energy", entry.Ratings.Energy)

	if len(entry.DailyText) > MaxDailyTextLen {
		result.Problems = append(result.Problems, Problem{
			Type:        ProblemOversizedText,
			Field:       "daily_text",
			Description: fmt.Sprintf("daily text is %d characters, limit is %d", len(entry.DailyText), MaxDailyTextLen),
		})
	}

	if strings.TrimSpace(entry.DailyText) == "" &&
		len(entry.Accomplishments) == 0 &&
		len(entry.ThingsLearned) == 0 &&
		len(entry.ThingsGrateful) == 0 {
		result.Problems = append(result.Problems, Problem{
			Type:        ProblemEmptyEntry,
			Field:       "daily_text",
			Description: "entry has no text and no list items",
		})
	}

	return result
}

func checkRating(result *Result, field string, value int) {
	if value < constants.RatingMin || value > constants.RatingMax {
		result.Problems = append(result.Problems, Problem{
			Type:  ProblemRatingRange,
			Field: field,
			Description: fmt.Sprintf("%s rating %d is outside %d-%d",
				field, value, constants.RatingMin, constants.RatingMax),
		})
	}
}

// NormalizeEntry trims whitespace from the text fields and drops blank list
// items, preserving the order of what remains.
func NormalizeEntry(entry models.Entry) models.Entry {
	entry.DailyText = strings.TrimSpace(entry.DailyText)
	entry.Accomplishments = cleanList(entry.Accomplishments)
	entry.ThingsLearned = cleanList(entry.ThingsLearned)
	entry.ThingsGrateful = cleanList(entry.ThingsGrateful)
	return entry
}

func cleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}
