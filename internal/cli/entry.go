package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/ahollis/retro/internal/constants"
	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
	"github.com/ahollis/retro/internal/storage"
	"github.com/ahollis/retro/internal/validation"
)

type EntryAddCmd struct {
	Date         string   `short:"d" help:"Entry date (YYYY-MM-DD). Defaults to today."`
	Text         string   `short:"t" help:"Daily reflection text. Omit to fill in interactively."`
	Accomplished []string `short:"a" help:"Accomplishment (repeatable)."`
	Learned      []string `short:"l" help:"Thing learned (repeatable)."`
	Grateful     []string `short:"g" help:"Thing grateful for (repeatable)."`
	Productivity int      `short:"p" help:"Productivity rating (1-5)." default:"3"`
	Mood         int      `short:"m" help:"Mood rating (1-5)." default:"3"`
	Energy       int      `short:"e" help:"Energy rating (1-5)." default:"3"`
}

func (c *EntryAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = dateutil.FormatDate(time.Now())
	}

	entry := models.Entry{
		Date:            date,
		DailyText:       c.Text,
		Accomplishments: c.Accomplished,
		ThingsLearned:   c.Learned,
		ThingsGrateful:  c.Grateful,
		Ratings: models.Ratings{
			Productivity: c.Productivity,
			Mood:         c.Mood,
			Energy:       c.Energy,
		},
	}

	// No text on the command line means the user wants the form
	if c.Text == "" {
		if err := runEntryForm(&entry); err != nil {
			return err
		}
	}

	entry = validation.NormalizeEntry(entry)
	if result := validation.ValidateEntry(entry); !result.OK() {
		return result.Err()
	}

	if err := ctx.Store.SaveEntry(entry); err != nil {
		return err
	}
	fmt.Printf("Saved entry for %s\n", entry.Date)
	return nil
}

func runEntryForm(entry *models.Entry) error {
	accomplished := strings.Join(entry.Accomplishments, "\n")
	learned := strings.Join(entry.ThingsLearned, "\n")
	grateful := strings.Join(entry.ThingsGrateful, "\n")
	productivity := strconv.Itoa(entry.Ratings.Productivity)
	mood := strconv.Itoa(entry.Ratings.Mood)
	energy := strconv.Itoa(entry.Ratings.Energy)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Value(&entry.Date).
				Validate(func(s string) error {
					_, err := dateutil.ParseDate(s)
					return err
				}),
			huh.NewText().
				Title("How was your day?").
				Value(&entry.DailyText),
			huh.NewText().
				Title("Accomplishments").
				Description("One per line").
				Value(&accomplished),
			huh.NewText().
				Title("Things learned").
				Description("One per line").
				Value(&learned),
			huh.NewText().
				Title("Things grateful for").
				Description("One per line").
				Value(&grateful),
		),
		huh.NewGroup(
			huh.NewInput().Title("Productivity (1-5)").Value(&productivity).Validate(validateRating),
			huh.NewInput().Title("Mood (1-5)").Value(&mood).Validate(validateRating),
			huh.NewInput().Title("Energy (1-5)").Value(&energy).Validate(validateRating),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}

	entry.Accomplishments = splitLines(accomplished)
	entry.ThingsLearned = splitLines(learned)
	entry.ThingsGrateful = splitLines(grateful)
	entry.Ratings.Productivity, _ = strconv.Atoi(productivity)
	entry.Ratings.Mood, _ = strconv.Atoi(mood)
	entry.Ratings.Energy, _ = strconv.Atoi(energy)
	return nil
}

func validateRating(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if i < constants.RatingMin || i > constants.RatingMax {
		return fmt.Errorf("rating must be %d-%d", constants.RatingMin, constants.RatingMax)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

type EntryShowCmd struct {
	Date string `arg:"" optional:"" help:"Entry date (YYYY-MM-DD). Defaults to today."`
}

func (c *EntryShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = dateutil.FormatDate(time.Now())
	}
	if _, err := dateutil.ParseDate(date); err != nil {
		return err
	}

	entry, err := ctx.Store.GetEntry(date)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("No entry for %s.\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Entry for %s\n", entry.Date)
	fmt.Printf("Ratings: %s\n\n", formatRatings(entry.Ratings))
	if entry.DailyText != "" {
		fmt.Println(entry.DailyText)
		fmt.Println()
	}
	printList("Accomplishments", entry.Accomplishments)
	printList("Things learned", entry.ThingsLearned)
	printList("Grateful for", entry.ThingsGrateful)
	return nil
}

type EntryListCmd struct {
	Limit int `short:"n" help:"Show at most this many recent entries." default:"14"`
}

func (c *EntryListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	entries, err := ctx.Store.GetAllEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries yet. Add one with 'retro entry add'.")
		return nil
	}

	// Entries come back oldest first; show the most recent ones
	start := 0
	if c.Limit > 0 && len(entries) > c.Limit {
		start = len(entries) - c.Limit
	}
	for _, entry := range entries[start:] {
		text := entry.DailyText
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Printf("%s  [%d/%d/%d]  %s\n", entry.Date,
			entry.Ratings.Productivity, entry.Ratings.Mood, entry.Ratings.Energy, text)
	}
	return nil
}

type EntryDeleteCmd struct {
	Date string `arg:"" help:"Entry date (YYYY-MM-DD)."`
}

func (c *EntryDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if _, err := dateutil.ParseDate(c.Date); err != nil {
		return err
	}

	if err := ctx.Store.DeleteEntry(c.Date); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no entry for %s", c.Date)
		}
		return err
	}
	fmt.Printf("Deleted entry for %s\n", c.Date)
	return nil
}
