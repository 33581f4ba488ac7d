package rollup

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ahollis/retro/internal/models"
)

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ratedEntry(date string, prod, mood, energy int) models.Entry {
	return models.Entry{
		Date: date,
		Ratings: models.Ratings{
			Productivity: prod,
			Mood:         mood,
			Energy:       energy,
		},
	}
}

func TestAggregateWeekly_Empty(t *testing.T) {
	start := localDate(2025, time.January, 6)
	end := localDate(2025, time.January, 12)

	agg := AggregateWeekly(nil, start, end)

	if agg.Insights.ProductivityTrend != 0 || agg.Insights.MoodTrend != 0 || agg.Insights.EnergyTrend != 0 {
		t.Errorf("expected zero trends, got %+v", agg.Insights)
	}
	if agg.Insights.KeyThemes == nil || len(agg.Insights.KeyThemes) != 0 {
		t.Errorf("expected empty (non-nil) themes, got %#v", agg.Insights.KeyThemes)
	}
	if agg.Insights.TopAccomplishments == nil || len(agg.Insights.TopAccomplishments) != 0 {
		t.Errorf("expected empty (non-nil) accomplishments, got %#v", agg.Insights.TopAccomplishments)
	}
	if agg.Insights.MainLearnings == nil || len(agg.Insights.MainLearnings) != 0 {
		t.Errorf("expected empty (non-nil) learnings, got %#v", agg.Insights.MainLearnings)
	}
	want := "Week of January 6 - January 12, 2025: No data available."
	if agg.Content != want {
		t.Errorf("expected %q, got %q", want, agg.Content)
	}
}

func TestAggregateWeekly_AverageRatings(t *testing.T) {
	start := localDate(2025, time.January, 6)
	end := localDate(2025, time.January, 12)
	entries := []models.Entry{
		ratedEntry("2025-01-06", 5, 3, 2),
		ratedEntry("2025-01-07", 5, 3, 2),
		ratedEntry("2025-01-08", 4, 3, 2),
	}

	agg := AggregateWeekly(entries, start, end)

	// mean of [5,5,4] = 14/3 = 4.666..., displayed as 4.7
	if got := fmtAvg(agg.Insights.ProductivityTrend); got != "4.7" {
		t.Errorf("expected displayed productivity 4.7, got %s", got)
	}
	if agg.Insights.MoodTrend != 3 {
		t.Errorf("expected mood trend 3, got %v", agg.Insights.MoodTrend)
	}
	if !strings.Contains(agg.Content, "Average productivity: 4.7/5") {
		t.Errorf("content missing 1-decimal average:\n%s", agg.Content)
	}
}

func TestAggregateWeekly_ListConcatenationAndTruncation(t *testing.T) {
	start := localDate(2025, time.January, 6)
	end := localDate(2025, time.January, 12)

	e1 := ratedEntry("2025-01-06", 4, 4, 4)
	e1.Accomplishments = []string{"a1", "a2", "a3", "  ", "a4"}
	e1.ThingsLearned = []string{"l1", ""}
	e2 := ratedEntry("2025-01-07", 4, 4, 4)
	e2.Accomplishments = []string{"b1", "b2", "b3"}
	e2.ThingsLearned = []string{"l2"}

	agg := AggregateWeekly([]models.Entry{e1, e2}, start, end)

	// Entry order then within-entry order, blanks dropped, first 5 kept
	want := []string{"a1", "a2", "a3", "a4", "b1"}
	if len(agg.Insights.TopAccomplishments) != len(want) {
		t.Fatalf("expected %d accomplishments, got %#v", len(want), agg.Insights.TopAccomplishments)
	}
	for i, w := range want {
		if agg.Insights.TopAccomplishments[i] != w {
			t.Errorf("accomplishment[%d] = %q, want %q", i, agg.Insights.TopAccomplishments[i], w)
		}
	}
	if len(agg.Insights.MainLearnings) != 2 {
		t.Errorf("expected 2 learnings, got %#v", agg.Insights.MainLearnings)
	}

	// Content shows up to 8 accomplishments, so all 7 appear
	if !strings.Contains(agg.Content, "- b3") {
		t.Errorf("content should list the 7th accomplishment:\n%s", agg.Content)
	}
}

func TestAggregateWeekly_ThemeExtraction(t *testing.T) {
	start := localDate(2025, time.January, 6)
	end := localDate(2025, time.January, 12)

	e1 := ratedEntry("2025-01-06", 4, 4, 4)
	e1.DailyText = "Focused deeply on the garden project. Garden work felt great!"
	e2 := ratedEntry("2025-01-07", 4, 4, 4)
	e2.DailyText = "More garden progress; the project is coming together."

	agg := AggregateWeekly([]models.Entry{e1, e2}, start, end)

	if len(agg.Insights.KeyThemes) == 0 {
		t.Fatal("expected themes")
	}
	// "garden" appears 3 times, beating "project" at 2
	if agg.Insights.KeyThemes[0] != "Garden" {
		t.Errorf("expected Garden as top theme, got %v", agg.Insights.KeyThemes)
	}
	if agg.Insights.KeyThemes[1] != "Project" {
		t.Errorf("expected Project as second theme, got %v", agg.Insights.KeyThemes)
	}
}

func TestAggregateWeekly_ReflectionBands(t *testing.T) {
	start := localDate(2025, time.January, 6)
	end := localDate(2025, time.January, 12)

	high := AggregateWeekly([]models.Entry{
		ratedEntry("2025-01-06", 5, 5, 5),
		ratedEntry("2025-01-07", 4, 4, 4),
	}, start, end)
	if !strings.Contains(high.Content, "highly productive week") {
		t.Errorf("expected high-productivity reflection:\n%s", high.Content)
	}

	low := AggregateWeekly([]models.Entry{
		ratedEntry("2025-01-06", 1, 2, 2),
		ratedEntry("2025-01-07", 2, 1, 2),
	}, start, end)
	if !strings.Contains(low.Content, "lower than usual") {
		t.Errorf("expected low-productivity reflection:\n%s", low.Content)
	}
}

func weeklySummaryWith(start string, themes []string, trends float64) models.Summary {
	return models.Summary{
		Type:      models.SummaryWeekly,
		StartDate: start,
		Insights: models.Insights{
			KeyThemes:          themes,
			ProductivityTrend:  trends,
			MoodTrend:          trends,
			EnergyTrend:        trends,
			TopAccomplishments: []string{},
			MainLearnings:      []string{},
		},
	}
}

func TestAggregateMonthly_Empty(t *testing.T) {
	start := localDate(2025, time.February, 1)
	end := localDate(2025, time.February, 28)

	agg := AggregateMonthly(nil, start, end)
	want := "Month of February 2025: No data available."
	if agg.Content != want {
		t.Errorf("expected %q, got %q", want, agg.Content)
	}
}

func TestAggregateMonthly_ThemeTieBreak(t *testing.T) {
	start := localDate(2025, time.January, 1)
	end := localDate(2025, time.January, 31)

	weeks := []models.Summary{
		weeklySummaryWith("2025-01-06", []string{"Work", "Work", "Family"}, 4),
		weeklySummaryWith("2025-01-13", []string{"Family", "Travel"}, 4),
	}

	agg := AggregateMonthly(weeks, start, end)

	// Work and Family tie at 2; Work was encountered first. Travel trails at 1.
	want := []string{"Work", "Family", "Travel"}
	if len(agg.Insights.KeyThemes) != 3 {
		t.Fatalf("expected 3 themes, got %#v", agg.Insights.KeyThemes)
	}
	for i, w := range want {
		if agg.Insights.KeyThemes[i] != w {
			t.Errorf("theme[%d] = %q, want %q", i, agg.Insights.KeyThemes[i], w)
		}
	}
}

func TestAggregateMonthly_AverageOfAverages(t *testing.T) {
	start := localDate(2025, time.January, 1)
	end := localDate(2025, time.January, 31)

	weeks := []models.Summary{
		weeklySummaryWith("2025-01-06", nil, 4),
		weeklySummaryWith("2025-01-13", nil, 2),
	}

	agg := AggregateMonthly(weeks, start, end)
	if agg.Insights.ProductivityTrend != 3 {
		t.Errorf("expected trend 3 (mean of weekly means), got %v", agg.Insights.ProductivityTrend)
	}
}

func TestAggregateYearly_Empty(t *testing.T) {
	start := localDate(2024, time.January, 1)
	end := localDate(2024, time.December, 31)

	agg := AggregateYearly(nil, start, end)
	want := "Year 2024: No data available."
	if agg.Content != want {
		t.Errorf("expected %q, got %q", want, agg.Content)
	}
}

func TestAggregateYearly_TruncationCounts(t *testing.T) {
	start := localDate(2024, time.January, 1)
	end := localDate(2024, time.December, 31)

	var months []models.Summary
	for i := 1; i <= 12; i++ {
		var accomplishments []string
		for j := 0; j < 3; j++ {
			accomplishments = append(accomplishments, fmt.Sprintf("month %d win %d", i, j))
		}
		months = append(months, models.Summary{
			Type:      models.SummaryMonthly,
			StartDate: fmt.Sprintf("2024-%02d-01", i),
			Insights: models.Insights{
				KeyThemes:          []string{"Steady"},
				ProductivityTrend:  4,
				TopAccomplishments: accomplishments,
				MainLearnings:      accomplishments,
			},
		})
	}

	agg := AggregateYearly(months, start, end)

	// Insight object keeps 20 of the 36 concatenated items
	if len(agg.Insights.TopAccomplishments) != 20 {
		t.Errorf("expected 20 accomplishments kept, got %d", len(agg.Insights.TopAccomplishments))
	}
	if len(agg.Insights.MainLearnings) != 20 {
		t.Errorf("expected 20 learnings kept, got %d", len(agg.Insights.MainLearnings))
	}
	// Display shows at most 15 accomplishments: the 15th item is the last shown
	if !strings.Contains(agg.Content, "month 5 win 2") {
		t.Errorf("expected 15th accomplishment displayed:\n%s", agg.Content)
	}
	// The 16th item is past both display caps (15 accomplishments, 12
	// learnings) so it must not appear anywhere
	if strings.Contains(agg.Content, "month 6 win 0") {
		t.Errorf("display truncation leaked past 15 accomplishments:\n%s", agg.Content)
	}
	if !strings.Contains(agg.Content, "# Year in Review: 2024") {
		t.Errorf("missing year heading:\n%s", agg.Content)
	}
}

func TestMean_EmptyIsZeroNotNaN(t *testing.T) {
	got := mean(nil)
	if got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got != got { // NaN check
		t.Error("mean(nil) returned NaN")
	}
}
