package rollup

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ahollis/retro/internal/models"
)

// scanNow is a fixed Wednesday so candidate periods are deterministic:
// weekly candidates 2025-06-09, 06-02, 05-26, 05-19; monthly candidates
// May, April, March 2025; yearly candidates 2024 and 2023.
var scanNow = time.Date(2025, time.June, 18, 10, 30, 0, 0, time.Local)

func seedEntries(store *fakeStore, dates ...string) {
	for _, date := range dates {
		store.entries[date] = ratedEntry(date, 4, 4, 4)
	}
}

func seedMaySummaries(t *testing.T, store *fakeStore) {
	t.Helper()
	w1 := weeklySummaryWith("2025-05-05", []string{"Garden"}, 4)
	w1.EndDate = "2025-05-11"
	w2 := weeklySummaryWith("2025-05-12", []string{"Garden"}, 3)
	w2.EndDate = "2025-05-18"
	for _, w := range []models.Summary{w1, w2} {
		if _, err := store.SaveSummary(w); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func seed2024Months(t *testing.T, store *fakeStore) {
	t.Helper()
	for m := 1; m <= 6; m++ {
		summary := models.Summary{
			Type:      models.SummaryMonthly,
			StartDate: fmt.Sprintf("2024-%02d-01", m),
			EndDate:   fmt.Sprintf("2024-%02d-28", m),
			Insights:  models.Insights{ProductivityTrend: 4, KeyThemes: []string{"Momentum"}},
		}
		if _, err := store.SaveSummary(summary); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestCheckPendingSummaries_GeneratesMissingPeriods(t *testing.T) {
	store := newFakeStore()
	seedEntries(store, "2025-06-09", "2025-06-10", "2025-06-11")
	seedMaySummaries(t, store)
	seed2024Months(t, store)
	gen := NewGenerator(store)

	res := gen.CheckPendingSummaries(scanNow)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	types := make(map[models.SummaryType][]string)
	for _, s := range res.Generated {
		types[s.Type] = append(types[s.Type], s.StartDate)
	}

	if len(types[models.SummaryWeekly]) != 1 || types[models.SummaryWeekly][0] != "2025-06-09" {
		t.Errorf("expected one weekly summary for 2025-06-09, got %v", types[models.SummaryWeekly])
	}
	if len(types[models.SummaryMonthly]) != 1 || types[models.SummaryMonthly][0] != "2025-05-01" {
		t.Errorf("expected one monthly summary for 2025-05-01, got %v", types[models.SummaryMonthly])
	}
	if len(types[models.SummaryYearly]) != 1 || types[models.SummaryYearly][0] != "2024-01-01" {
		t.Errorf("expected one yearly summary for 2024-01-01, got %v", types[models.SummaryYearly])
	}
}

func TestCheckPendingSummaries_Idempotent(t *testing.T) {
	store := newFakeStore()
	seedEntries(store, "2025-06-09", "2025-06-10", "2025-06-11")
	seedMaySummaries(t, store)
	seed2024Months(t, store)
	gen := NewGenerator(store)

	first := gen.CheckPendingSummaries(scanNow)
	if len(first.Generated) == 0 {
		t.Fatal("first pass should generate summaries")
	}
	writesAfterFirst := store.saveCalls

	second := gen.CheckPendingSummaries(scanNow)
	if len(second.Generated) != 0 {
		t.Errorf("second pass generated %d summaries, expected 0", len(second.Generated))
	}
	if len(second.Errors) != 0 {
		t.Errorf("second pass errors: %v", second.Errors)
	}
	if store.saveCalls != writesAfterFirst {
		t.Errorf("second pass wrote %d additional summaries", store.saveCalls-writesAfterFirst)
	}
}

func TestCheckPendingSummaries_WeeklyQualityGate(t *testing.T) {
	store := newFakeStore()
	// Two entries: below the >= 3 gate
	seedEntries(store, "2025-06-09", "2025-06-10")
	gen := NewGenerator(store)

	res := gen.CheckPendingSummaries(scanNow)
	for _, s := range res.Generated {
		if s.Type == models.SummaryWeekly {
			t.Fatalf("2-entry week should not generate, got %s", s.StartDate)
		}
	}

	// A third entry crosses the gate
	seedEntries(store, "2025-06-11")
	res = gen.CheckPendingSummaries(scanNow)

	var weekly []string
	for _, s := range res.Generated {
		if s.Type == models.SummaryWeekly {
			weekly = append(weekly, s.StartDate)
		}
	}
	if len(weekly) != 1 || weekly[0] != "2025-06-09" {
		t.Errorf("3-entry week should generate, got %v", weekly)
	}
}

func TestCheckPendingSummaries_MonthlyQualityGate(t *testing.T) {
	store := newFakeStore()
	// Only one weekly summary in May: below the >= 2 gate
	w := weeklySummaryWith("2025-05-05", nil, 4)
	w.EndDate = "2025-05-11"
	if _, err := store.SaveSummary(w); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	gen := NewGenerator(store)

	res := gen.CheckPendingSummaries(scanNow)
	for _, s := range res.Generated {
		if s.Type == models.SummaryMonthly {
			t.Errorf("1-week month should not generate, got %s", s.StartDate)
		}
	}
}

func TestCheckPendingSummaries_YearlyQualityGate(t *testing.T) {
	store := newFakeStore()
	// Five monthly summaries: below the >= 6 gate
	for m := 1; m <= 5; m++ {
		summary := models.Summary{
			Type:      models.SummaryMonthly,
			StartDate: fmt.Sprintf("2024-%02d-01", m),
			EndDate:   fmt.Sprintf("2024-%02d-28", m),
		}
		if _, err := store.SaveSummary(summary); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	gen := NewGenerator(store)

	res := gen.CheckPendingSummaries(scanNow)
	for _, s := range res.Generated {
		if s.Type == models.SummaryYearly {
			t.Errorf("5-month year should not generate, got %s", s.StartDate)
		}
	}
}

func TestCheckPendingSummaries_FailureIsolation(t *testing.T) {
	store := newFakeStore()
	seedMaySummaries(t, store)
	seed2024Months(t, store)
	store.failOn["GetEntriesForWeek"] = errors.New("weekly fetch broken")
	gen := NewGenerator(store)

	res := gen.CheckPendingSummaries(scanNow)

	if len(res.Errors) == 0 {
		t.Fatal("expected weekly scan errors")
	}

	// The broken weekly fetch must not stop monthly or yearly backfill
	var monthly, yearly bool
	for _, s := range res.Generated {
		switch s.Type {
		case models.SummaryMonthly:
			monthly = true
		case models.SummaryYearly:
			yearly = true
		}
	}
	if !monthly {
		t.Error("monthly backfill should survive weekly failures")
	}
	if !yearly {
		t.Error("yearly backfill should survive weekly failures")
	}
}

func TestCheckPendingSummaries_SkipsExistingPeriods(t *testing.T) {
	store := newFakeStore()
	seedEntries(store, "2025-06-09", "2025-06-10", "2025-06-11")

	// Pre-existing summary for the candidate week: existence check wins and
	// the week's entries are never re-aggregated
	existing := weeklySummaryWith("2025-06-09", nil, 2)
	existing.EndDate = "2025-06-15"
	if _, err := store.SaveSummary(existing); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	writesBefore := store.saveCalls

	gen := NewGenerator(store)
	res := gen.CheckPendingSummaries(scanNow)

	for _, s := range res.Generated {
		if s.Type == models.SummaryWeekly && s.StartDate == "2025-06-09" {
			t.Error("existing week should have been skipped")
		}
	}
	if store.saveCalls != writesBefore {
		t.Errorf("scan wrote %d summaries over an existing period", store.saveCalls-writesBefore)
	}
}
