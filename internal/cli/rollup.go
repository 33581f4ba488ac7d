package cli

import (
	"fmt"
	"time"

	"github.com/ahollis/retro/internal/dateutil"
)

// RollupCmd scans recent completed periods and backfills any missing
// summaries. This is the default way summaries get created; the week/month/
// year subcommands exist for generating one specific period.
type RollupCmd struct{}

func (c *RollupCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	res := ctx.Generator.CheckPendingSummaries(time.Now())

	for _, s := range res.Generated {
		fmt.Printf("Generated %s summary for %s to %s\n", s.Type, s.StartDate, s.EndDate)
	}
	if len(res.Generated) == 0 && len(res.Errors) == 0 {
		fmt.Println("All summaries are up to date.")
	}
	for _, err := range res.Errors {
		fmt.Printf("Warning: %v\n", err)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d period(s) failed, they will be retried on the next rollup", len(res.Errors))
	}
	return nil
}

type RollupWeekCmd struct {
	Date string `arg:"" optional:"" help:"Any date inside the week (YYYY-MM-DD). Defaults to last week."`
}

func (c *RollupWeekCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = dateutil.FormatDate(dateutil.AddDays(time.Now(), -7))
	}

	summary, err := ctx.Generator.GenerateWeekly(date)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Println("No entries for that week, nothing to summarize.")
		return nil
	}
	fmt.Printf("Generated weekly summary for %s to %s (id %s)\n",
		summary.StartDate, summary.EndDate, shortID(summary.ID))
	return nil
}

type RollupMonthCmd struct {
	Date string `arg:"" optional:"" help:"Any date inside the month (YYYY-MM-DD). Defaults to last month."`
}

func (c *RollupMonthCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = dateutil.FormatDate(dateutil.MonthStart(time.Now()).AddDate(0, -1, 0))
	}

	summary, err := ctx.Generator.GenerateMonthly(date)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Println("No weekly summaries for that month, nothing to summarize.")
		return nil
	}
	fmt.Printf("Generated monthly summary for %s to %s (id %s)\n",
		summary.StartDate, summary.EndDate, shortID(summary.ID))
	return nil
}

type RollupYearCmd struct {
	Year string `arg:"" optional:"" help:"Four-digit year. Defaults to last year."`
}

func (c *RollupYearCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	year := c.Year
	if year == "" {
		year = fmt.Sprintf("%d", time.Now().Year()-1)
	}

	summary, err := ctx.Generator.GenerateYearly(year)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Println("No monthly summaries for that year, nothing to summarize.")
		return nil
	}
	fmt.Printf("Generated yearly summary for %s (id %s)\n", year, shortID(summary.ID))
	return nil
}
