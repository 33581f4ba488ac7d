// Package rollup turns raw journal entries into weekly summaries, weekly
// summaries into monthly ones, and monthly summaries into yearly ones.
package rollup

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
	"github.com/ahollis/retro/internal/storage"
)

// Generator runs the rollup pipeline against an explicit store; there is no
// package-level state. A nil summary with a nil error means the period had
// no source data, which callers treat as "nothing to show yet", not failure.
type Generator struct {
	store storage.Provider
	log   *slog.Logger
}

func NewGenerator(store storage.Provider) *Generator {
	return &Generator{
		store: store,
		log:   slog.Default(),
	}
}

// rollupJob is the granularity-independent shape every generator reduces to:
// canonical window plus a count of source rows and a deferred aggregation.
type rollupJob struct {
	typ        models.SummaryType
	start, end time.Time
	sources    int
	aggregate  func() Aggregate
}

// GenerateWeekly produces the summary for the week containing the given
// date. The key is Monday-normalized, so any date inside the week is a valid
// key. Malformed dates fail before any store access.
func (g *Generator) GenerateWeekly(date string) (*models.Summary, error) {
	parsed, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("weekly rollup: %w", err)
	}
	start := dateutil.WeekStart(parsed)
	end := dateutil.AddDays(start, 6)

	entries, err := g.store.GetEntriesForWeek(dateutil.FormatDate(start))
	if err != nil {
		return nil, fmt.Errorf("weekly rollup: %w", err)
	}

	return g.run(rollupJob{
		typ:     models.SummaryWeekly,
		start:   start,
		end:     end,
		sources: len(entries),
		aggregate: func() Aggregate {
			return AggregateWeekly(entries, start, end)
		},
	})
}

// GenerateMonthly produces the summary for the month containing the given
// date, derived from that month's weekly summaries.
func (g *Generator) GenerateMonthly(date string) (*models.Summary, error) {
	parsed, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("monthly rollup: %w", err)
	}
	start := dateutil.MonthStart(parsed)
	end := dateutil.MonthEnd(parsed)

	weeks, err := g.store.GetWeeklySummariesForMonth(dateutil.FormatDate(start))
	if err != nil {
		return nil, fmt.Errorf("monthly rollup: %w", err)
	}

	return g.run(rollupJob{
		typ:     models.SummaryMonthly,
		start:   start,
		end:     end,
		sources: len(weeks),
		aggregate: func() Aggregate {
			return AggregateMonthly(weeks, start, end)
		},
	})
}

// GenerateYearly produces the summary for the given four-digit year, derived
// from that year's monthly summaries. A non-numeric year string is a caller
// error and fails fast; nothing touches the store first.
func (g *Generator) GenerateYearly(year string) (*models.Summary, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("yearly rollup: invalid year %q: %w", year, err)
	}
	if y < 1000 || y > 9999 {
		return nil, fmt.Errorf("yearly rollup: year %d out of range", y)
	}
	return g.generateYearly(y)
}

func (g *Generator) generateYearly(year int) (*models.Summary, error) {
	start, end := dateutil.YearBounds(year)

	months, err := g.store.GetMonthlySummariesForYear(year)
	if err != nil {
		return nil, fmt.Errorf("yearly rollup: %w", err)
	}

	return g.run(rollupJob{
		typ:     models.SummaryYearly,
		start:   start,
		end:     end,
		sources: len(months),
		aggregate: func() Aggregate {
			return AggregateYearly(months, start, end)
		},
	})
}

// run is the shared generator state machine: guard-empty, aggregate,
// persist, return the saved summary.
func (g *Generator) run(job rollupJob) (*models.Summary, error) {
	startStr := dateutil.FormatDate(job.start)

	if job.sources == 0 {
		g.log.Info("no source data for period, skipping",
			"type", string(job.typ), "start_date", startStr)
		return nil, nil
	}

	agg := job.aggregate()

	summary := models.Summary{
		Type:      job.typ,
		StartDate: startStr,
		EndDate:   dateutil.FormatDate(job.end),
		Content:   agg.Content,
		Insights:  agg.Insights,
	}

	id, err := g.store.SaveSummary(summary)
	if errors.Is(err, storage.ErrSummaryExists) {
		// Lost the race to another writer; their summary is just as good.
		g.log.Info("summary already exists for period",
			"type", string(job.typ), "start_date", startStr)
		return g.findByStart(job.typ, startStr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save %s summary for %s: %w", job.typ, startStr, err)
	}

	summary.ID = id
	g.log.Info("summary generated",
		"type", string(job.typ), "start_date", startStr,
		"end_date", summary.EndDate, "sources", job.sources)
	return &summary, nil
}

func (g *Generator) findByStart(typ models.SummaryType, startDate string) (*models.Summary, error) {
	summaries, err := g.store.GetSummaries(typ)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].StartDate == startDate {
			return &summaries[i], nil
		}
	}
	return nil, fmt.Errorf("%s summary for %s reported existing but not found", typ, startDate)
}
