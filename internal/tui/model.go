package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ahollis/retro/internal/constants"
	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
	"github.com/ahollis/retro/internal/rollup"
	"github.com/ahollis/retro/internal/storage"
	"github.com/ahollis/retro/internal/tui/components/entrylist"
	"github.com/ahollis/retro/internal/tui/components/summarylist"
)

type SessionState int

const (
	StateEntries SessionState = iota
	StateSummaries
	StateReadSummary
	StateAddEntry
	StateConfirmDeleteEntry
	StateConfirmDeleteSummary
)

// EntryFormModel holds the string-typed form fields while a huh form is
// active. List fields are one item per line.
type EntryFormModel struct {
	Date         string
	Text         string
	Accomplished string
	Learned      string
	Grateful     string
	Productivity string
	Mood         string
	Energy       string
}

type Model struct {
	store     storage.Provider
	generator *rollup.Generator

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	entryList   entrylist.Model
	summaryList summarylist.Model
	reader      viewport.Model

	form      *huh.Form
	entryForm *EntryFormModel

	entryToDelete   string
	summaryToDelete string
	status          string

	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider, generator *rollup.Generator) Model {
	entries, err := store.GetAllEntries()
	if err != nil {
		entries = []models.Entry{}
	}

	m := Model{
		store:       store,
		generator:   generator,
		state:       StateEntries,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		entryList:   entrylist.New(entries, 0, 0),
		summaryList: summarylist.New(nil, 0, 0),
		reader:      viewport.New(0, 0),
	}
	m.reloadSummaries()
	return m
}

func (m *Model) reloadEntries() {
	entries, err := m.store.GetAllEntries()
	if err != nil {
		m.status = fmt.Sprintf("failed to load entries: %v", err)
		return
	}
	m.entryList.SetEntries(entries)
}

func (m *Model) reloadSummaries() {
	var all []models.Summary
	for _, typ := range []models.SummaryType{models.SummaryWeekly, models.SummaryMonthly, models.SummaryYearly} {
		summaries, err := m.store.GetSummaries(typ)
		if err != nil {
			m.status = fmt.Sprintf("failed to load summaries: %v", err)
			return
		}
		all = append(all, summaries...)
	}
	m.summaryList.SetSummaries(all)
}

func newEntryForm(fm *EntryFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Value(&fm.Date).
				Validate(func(s string) error {
					_, err := dateutil.ParseDate(s)
					return err
				}),
			huh.NewText().
				Title("How was your day?").
				Value(&fm.Text),
			huh.NewText().
				Title("Accomplishments").
				Description("One per line").
				Value(&fm.Accomplished),
			huh.NewText().
				Title("Things learned").
				Description("One per line").
				Value(&fm.Learned),
			huh.NewText().
				Title("Things grateful for").
				Description("One per line").
				Value(&fm.Grateful),
		),
		huh.NewGroup(
			huh.NewInput().Title("Productivity (1-5)").Value(&fm.Productivity).Validate(validateRating),
			huh.NewInput().Title("Mood (1-5)").Value(&fm.Mood).Validate(validateRating),
			huh.NewInput().Title("Energy (1-5)").Value(&fm.Energy).Validate(validateRating),
		),
	).WithTheme(huh.ThemeDracula())
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

func (fm *EntryFormModel) toEntry() models.Entry {
	productivity, _ := strconv.Atoi(strings.TrimSpace(fm.Productivity))
	mood, _ := strconv.Atoi(strings.TrimSpace(fm.Mood))
	energy, _ := strconv.Atoi(strings.TrimSpace(fm.Energy))
	return models.Entry{
		Date:            fm.Date,
		DailyText:       fm.Text,
		Accomplishments: splitLines(fm.Accomplished),
		ThingsLearned:   splitLines(fm.Learned),
		ThingsGrateful:  splitLines(fm.Grateful),
		Ratings: models.Ratings{
			Productivity: productivity,
			Mood:         mood,
			Energy:       energy,
		},
	}
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

func defaultEntryForm() *EntryFormModel {
	return &EntryFormModel{
		Date:         dateutil.FormatDate(time.Now()),
		Productivity: "3",
		Mood:         "3",
		Energy:       "3",
	}
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Tab, m.keys.Back, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab},
		{m.keys.Back, m.keys.Quit, m.keys.Help},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}
