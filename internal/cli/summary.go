package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ahollis/retro/internal/export"
	"github.com/ahollis/retro/internal/models"
)

type SummaryListCmd struct {
	Type string `short:"t" help:"Filter by type (weekly|monthly|yearly)."`
}

func (c *SummaryListCmd) Validate() error {
	switch c.Type {
	case "", "weekly", "monthly", "yearly":
		return nil
	}
	return fmt.Errorf("invalid summary type: %s", c.Type)
}

func (c *SummaryListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	types := []models.SummaryType{models.SummaryWeekly, models.SummaryMonthly, models.SummaryYearly}
	if c.Type != "" {
		types = []models.SummaryType{models.SummaryType(c.Type)}
	}

	total := 0
	for _, typ := range types {
		summaries, err := ctx.Store.GetSummaries(typ)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Println(summaryLine(s))
		}
		total += len(summaries)
	}
	if total == 0 {
		fmt.Println("No summaries yet. Run 'retro rollup' to generate them.")
	}
	return nil
}

type SummaryShowCmd struct {
	ID string `arg:"" help:"Summary id (or unambiguous prefix)."`
}

func (c *SummaryShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	summary, err := resolveSummaryID(ctx.Store, c.ID)
	if err != nil {
		return err
	}

	fmt.Println(summary.Content)
	fmt.Println()
	fmt.Printf("id: %s  period: %s to %s\n", summary.ID, summary.StartDate, summary.EndDate)
	if len(summary.Insights.KeyThemes) > 0 {
		fmt.Printf("themes: %s\n", strings.Join(summary.Insights.KeyThemes, ", "))
	}
	return nil
}

type SummaryExportCmd struct {
	ID     string `arg:"" help:"Summary id (or unambiguous prefix)."`
	Format string `short:"f" help:"Output format (html|markdown)." enum:"html,markdown" default:"html"`
	Output string `short:"o" help:"Output file. Defaults to stdout." type:"path"`
}

func (c *SummaryExportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	summary, err := resolveSummaryID(ctx.Store, c.ID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	renderer := export.NewRenderer()
	if c.Format == "markdown" {
		err = renderer.RenderMarkdown(summary, out)
	} else {
		err = renderer.RenderHTML(summary, out)
	}
	if err != nil {
		return err
	}

	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "Exported %s summary %s to %s\n", summary.Type, shortID(summary.ID), c.Output)
	}
	return nil
}

type SummaryDeleteCmd struct {
	ID string `arg:"" help:"Summary id (or unambiguous prefix)."`
}

func (c *SummaryDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	summary, err := resolveSummaryID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteSummary(summary.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s summary for %s\n", summary.Type, summary.StartDate)
	return nil
}
