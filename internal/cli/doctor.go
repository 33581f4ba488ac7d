package cli

import (
	"fmt"
	"time"

	"github.com/ahollis/retro/internal/backup"
	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/migration"
	"github.com/ahollis/retro/internal/models"
	"github.com/ahollis/retro/internal/storage"
	"github.com/ahollis/retro/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if storeReachable {
		if err := checkEntryData(ctx); err != nil {
			fmt.Printf("❌ Entry data: FAIL\n   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Entry data: OK\n")
		}

		if err := checkSummaryPeriods(ctx); err != nil {
			fmt.Printf("❌ Summary periods: FAIL\n   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Summary periods: OK\n")
		}

		reportPending(ctx)
	} else {
		fmt.Printf("⊘ Entry data: SKIPPED (store not reachable)\n")
		fmt.Printf("⊘ Summary periods: SKIPPED (store not reachable)\n")
	}

	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result string
		if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
			return fmt.Errorf("integrity check failed to run: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity check reported: %s", result)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store carries no schema version
		return nil
	}
	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	migrationsPath, found := migration.FindMigrationsDir()
	if !found {
		// Embedded baseline only; nothing to compare against
		return nil
	}
	return migration.NewRunner(db, migrationsPath).ValidateVersion()
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'retro backup create'")
	}
	return nil
}

func checkEntryData(ctx *Context) error {
	entries, err := ctx.Store.GetAllEntries()
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}
	for _, entry := range entries {
		if result := validation.ValidateEntry(entry); !result.OK() {
			return fmt.Errorf("entry %s: %w", entry.Date, result.Err())
		}
	}
	return nil
}

// checkSummaryPeriods verifies stored summaries carry canonical period keys:
// weekly starts on a Monday, monthly on the 1st, yearly on Jan 1.
func checkSummaryPeriods(ctx *Context) error {
	for _, typ := range []models.SummaryType{models.SummaryWeekly, models.SummaryMonthly, models.SummaryYearly} {
		summaries, err := ctx.Store.GetSummaries(typ)
		if err != nil {
			return fmt.Errorf("failed to get %s summaries: %w", typ, err)
		}
		for _, s := range summaries {
			start, err := dateutil.ParseDate(s.StartDate)
			if err != nil {
				return fmt.Errorf("%s summary %s has bad start date: %w", typ, s.ID, err)
			}
			switch typ {
			case models.SummaryWeekly:
				if start.Weekday() != time.Monday {
					return fmt.Errorf("weekly summary %s starts on %s, not Monday", s.ID, start.Weekday())
				}
			case models.SummaryMonthly:
				if start.Day() != 1 {
					return fmt.Errorf("monthly summary %s does not start on the 1st", s.ID)
				}
			case models.SummaryYearly:
				if start.Month() != time.January || start.Day() != 1 {
					return fmt.Errorf("yearly summary %s does not start on Jan 1", s.ID)
				}
			}
		}
	}
	return nil
}

func reportPending(ctx *Context) {
	entries, err := ctx.Store.GetAllEntries()
	if err != nil {
		return
	}
	counts := make(map[models.SummaryType]int)
	for _, typ := range []models.SummaryType{models.SummaryWeekly, models.SummaryMonthly, models.SummaryYearly} {
		count, err := ctx.Store.GetSummaryCount(typ)
		if err != nil {
			return
		}
		counts[typ] = count
	}
	fmt.Printf("   Journal: %d entries, %d weekly / %d monthly / %d yearly summaries\n",
		len(entries), counts[models.SummaryWeekly], counts[models.SummaryMonthly], counts[models.SummaryYearly])
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
