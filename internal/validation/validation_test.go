package validation

import (
	"strings"
	"testing"

	"github.com/ahollis/retro/internal/models"
)

func validEntry() models.Entry {
	return models.Entry{
		Date:      "2025-01-06",
		DailyText: "a fine day",
		Ratings:   models.Ratings{Productivity: 3, Mood: 3, Energy: 3},
	}
}

func TestValidateEntry_Valid(t *testing.T) {
	result := ValidateEntry(validEntry())
	if !result.OK() {
		t.Errorf("expected valid entry, got: %s", result.FormatReport())
	}
	if result.Err() != nil {
		t.Errorf("expected nil error, got %v", result.Err())
	}
}

func TestValidateEntry_BadDate(t *testing.T) {
	for _, date := range []string{"2025-02-30", "2025-13-01", "Jan 6 2025", "2025-1-6", ""} {
		entry := validEntry()
		entry.Date = date
		result := ValidateEntry(entry)
		if result.OK() {
			t.Errorf("date %q should be rejected", date)
			continue
		}
		if result.Problems[0].Type != ProblemInvalidDate {
			t.Errorf("date %q: expected invalid_date problem, got %s", date, result.Problems[0].Type)
		}
	}
}

func TestValidateEntry_RatingRange(t *testing.T) {
	entry := validEntry()
	entry.Ratings.Mood = 0
	entry.Ratings.Energy = 6

	result := ValidateEntry(entry)
	if len(result.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %s", result.FormatReport())
	}
	for _, p := range result.Problems {
		if p.Type != ProblemRatingRange {
			t.Errorf("expected rating problems, got %s", p.Type)
		}
	}
	if !strings.Contains(result.Err().Error(), "mood rating 0") {
		t.Errorf("error should name the field and value: %v", result.Err())
	}
}

func TestValidateEntry_Empty(t *testing.T) {
	entry := validEntry()
	entry.DailyText = "   "

	result := ValidateEntry(entry)
	if result.OK() {
		t.Fatal("whitespace-only entry with no lists should be rejected")
	}
	if result.Problems[0].Type != ProblemEmptyEntry {
		t.Errorf("expected empty_entry problem, got %s", result.Problems[0].Type)
	}

	// A list item alone is enough substance
	entry.Accomplishments = []string{"did the thing"}
	if result := ValidateEntry(entry); !result.OK() {
		t.Errorf("entry with a list item should pass: %s", result.FormatReport())
	}
}

func TestValidateEntry_OversizedText(t *testing.T) {
	entry := validEntry()
	entry.DailyText = strings.Repeat("x", MaxDailyTextLen+1)

	result := ValidateEntry(entry)
	if result.OK() {
		t.Fatal("oversized text should be rejected")
	}
	if result.Problems[0].Type != ProblemOversizedText {
		t.Errorf("expected oversized_text problem, got %s", result.Problems[0].Type)
	}
}

func TestNormalizeEntry(t *testing.T) {
	entry := validEntry()
	entry.DailyText = "  trimmed  "
	entry.Accomplishments = []string{" a ", "", "b", "   "}
	entry.ThingsGrateful = []string{"  "}

	got := NormalizeEntry(entry)

	if got.DailyText != "trimmed" {
		t.Errorf("expected trimmed text, got %q", got.DailyText)
	}
	if len(got.Accomplishments) != 2 || got.Accomplishments[0] != "a" || got.Accomplishments[1] != "b" {
		t.Errorf("expected [a b], got %#v", got.Accomplishments)
	}
	if len(got.ThingsGrateful) != 0 {
		t.Errorf("expected blank-only list dropped, got %#v", got.ThingsGrateful)
	}
}
