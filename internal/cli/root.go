package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahollis/retro/internal/backup"
	"github.com/ahollis/retro/internal/models"
	"github.com/ahollis/retro/internal/rollup"
	"github.com/ahollis/retro/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Generator *rollup.Generator
}

// PerformAutomaticBackup snapshots the store at most once per local day.
// Failures are non-fatal; a journaling session should never be blocked by a
// backup problem.
func (ctx *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err == nil && len(backups) > 0 {
		newest := backups[0].Timestamp
		now := time.Now()
		if newest.Year() == now.Year() && newest.YearDay() == now.YearDay() {
			return
		}
	}
	if _, err := mgr.CreateBackup(); err != nil {
		fmt.Printf("Warning: automatic backup failed: %v\n", err)
	}
}

func formatRatings(r models.Ratings) string {
	return fmt.Sprintf("productivity %d/5, mood %d/5, energy %d/5",
		r.Productivity, r.Mood, r.Energy)
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func summaryLine(s models.Summary) string {
	themes := ""
	if len(s.Insights.KeyThemes) > 0 {
		n := len(s.Insights.KeyThemes)
		if n > 3 {
			n = 3
		}
		themes = "  " + strings.Join(s.Insights.KeyThemes[:n], ", ")
	}
	return fmt.Sprintf("%-8s  %s  %s to %s%s", s.Type, shortID(s.ID), s.StartDate, s.EndDate, themes)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveSummaryID accepts a full id or an unambiguous prefix.
func resolveSummaryID(store storage.Provider, ref string) (models.Summary, error) {
	if s, err := store.GetSummary(ref); err == nil {
		return s, nil
	}

	var match *models.Summary
	for _, typ := range []models.SummaryType{models.SummaryWeekly, models.SummaryMonthly, models.SummaryYearly} {
		summaries, err := store.GetSummaries(typ)
		if err != nil {
			return models.Summary{}, err
		}
		for i := range summaries {
			if strings.HasPrefix(summaries[i].ID, ref) {
				if match != nil {
					return models.Summary{}, fmt.Errorf("summary id %q is ambiguous", ref)
				}
				match = &summaries[i]
			}
		}
	}
	if match == nil {
		return models.Summary{}, fmt.Errorf("no summary with id %q", ref)
	}
	return *match, nil
}
