package rollup

import (
	"fmt"
	"time"

	"github.com/ahollis/retro/internal/constants"
	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
)

// ScanResult reports what a pending-summary scan did. Errors are collected
// per period rather than aborting the scan; a summary that failed to
// generate this pass will be picked up by the next one.
type ScanResult struct {
	Generated []models.Summary
	Skipped   int // candidate periods left alone (already covered or below the quality gate)
	Errors    []error
}

// CheckPendingSummaries scans recent completed periods at every granularity
// and generates any summary that is missing and meets its quality gate. The
// scan is idempotent: when everything is already backfilled it performs only
// read-only existence checks. It does not assume it is the only writer; the
// storage layer's unique period index catches concurrent duplicates.
func (g *Generator) CheckPendingSummaries(now time.Time) ScanResult {
	var res ScanResult
	g.scanWeekly(now, &res)
	g.scanMonthly(now, &res)
	g.scanYearly(now, &res)
	return res
}

func (g *Generator) scanWeekly(now time.Time, res *ScanResult) {
	existing, err := g.existingStarts(models.SummaryWeekly)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("weekly scan: %w", err))
		return
	}

	// Most recent completed week first, stepping back a week at a time.
	anchor := dateutil.WeekStart(dateutil.AddDays(dateutil.Midnight(now), -7))
	for i := 0; i < constants.WeeklyLookback; i++ {
		monday := dateutil.AddDays(anchor, -7*i)
		key := dateutil.FormatDate(monday)
		if existing[key] {
			res.Skipped++
			continue
		}

		entries, err := g.store.GetEntriesForWeek(key)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("weekly scan %s: %w", key, err))
			continue
		}
		if len(entries) < constants.WeeklyMinEntries {
			g.log.Debug("week below quality gate, skipping",
				"week_start", key, "entries", len(entries))
			res.Skipped++
			continue
		}

		summary, err := g.GenerateWeekly(key)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("weekly scan %s: %w", key, err))
			continue
		}
		if summary != nil {
			res.Generated = append(res.Generated, *summary)
		}
	}
}

func (g *Generator) scanMonthly(now time.Time, res *ScanResult) {
	existing, err := g.existingStarts(models.SummaryMonthly)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("monthly scan: %w", err))
		return
	}

	current := dateutil.MonthStart(now)
	for i := 1; i <= constants.MonthlyLookback; i++ {
		monthStart := current.AddDate(0, -i, 0)
		key := dateutil.FormatDate(monthStart)
		if existing[key] {
			res.Skipped++
			continue
		}

		weeks, err := g.store.GetWeeklySummariesForMonth(key)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("monthly scan %s: %w", key, err))
			continue
		}
		if len(weeks) < constants.MonthlyMinSummaries {
			g.log.Debug("month below quality gate, skipping",
				"month_start", key, "weekly_summaries", len(weeks))
			res.Skipped++
			continue
		}

		summary, err := g.GenerateMonthly(key)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("monthly scan %s: %w", key, err))
			continue
		}
		if summary != nil {
			res.Generated = append(res.Generated, *summary)
		}
	}
}

func (g *Generator) scanYearly(now time.Time, res *ScanResult) {
	existing, err := g.existingStarts(models.SummaryYearly)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("yearly scan: %w", err))
		return
	}

	for i := 1; i <= constants.YearlyLookback; i++ {
		year := now.Year() - i
		start, _ := dateutil.YearBounds(year)
		key := dateutil.FormatDate(start)
		if existing[key] {
			res.Skipped++
			continue
		}

		months, err := g.store.GetMonthlySummariesForYear(year)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("yearly scan %d: %w", year, err))
			continue
		}
		if len(months) < constants.YearlyMinSummaries {
			g.log.Debug("year below quality gate, skipping",
				"year", year, "monthly_summaries", len(months))
			res.Skipped++
			continue
		}

		summary, err := g.generateYearly(year)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("yearly scan %d: %w", year, err))
			continue
		}
		if summary != nil {
			res.Generated = append(res.Generated, *summary)
		}
	}
}

func (g *Generator) existingStarts(typ models.SummaryType) (map[string]bool, error) {
	summaries, err := g.store.GetSummaries(typ)
	if err != nil {
		return nil, err
	}
	starts := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		starts[s.StartDate] = true
	}
	return starts, nil
}
