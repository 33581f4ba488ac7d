package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ahollis/retro/internal/cli"
	"github.com/ahollis/retro/internal/logger"
	"github.com/ahollis/retro/internal/rollup"
	"github.com/ahollis/retro/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Journal file path." type:"path" default:"~/.config/retro/retro.db"`
	Verbose bool   `short:"v" help:"Log debug output to stderr."`

	Init  cli.InitCmd `cmd:"" help:"Initialize retro storage."`
	Tui   cli.TuiCmd  `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Entry struct {
		Add    cli.EntryAddCmd    `cmd:"" help:"Add or update a daily entry."`
		Show   cli.EntryShowCmd   `cmd:"" help:"Show one entry."`
		List   cli.EntryListCmd   `cmd:"" help:"List recent entries."`
		Delete cli.EntryDeleteCmd `cmd:"" help:"Delete an entry."`
	} `cmd:"" help:"Manage daily entries."`
	Summary struct {
		List   cli.SummaryListCmd   `cmd:"" help:"List summaries."`
		Show   cli.SummaryShowCmd   `cmd:"" help:"Show a summary."`
		Export cli.SummaryExportCmd `cmd:"" help:"Export a summary as HTML or markdown."`
		Delete cli.SummaryDeleteCmd `cmd:"" help:"Delete a summary."`
	} `cmd:"" help:"Read and export summaries."`
	Rollup struct {
		Scan  cli.RollupCmd      `cmd:"" help:"Backfill missing summaries." default:"1"`
		Week  cli.RollupWeekCmd  `cmd:"" help:"Generate one weekly summary."`
		Month cli.RollupMonthCmd `cmd:"" help:"Generate one monthly summary."`
		Year  cli.RollupYearCmd  `cmd:"" help:"Generate one yearly summary."`
	} `cmd:"" help:"Generate summaries."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks on the journal."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("retro"),
		kong.Description("Personal journaling with weekly, monthly, and yearly retrospectives"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.3.0"},
	)

	logger.Init(logger.Options{
		File:    filepath.Join(filepath.Dir(CLI.Config), "retro.log"),
		Verbose: CLI.Verbose,
	})

	// Storage backend is chosen by file extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store:     store,
		Generator: rollup.NewGenerator(store),
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
