package summarylist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ahollis/retro/internal/models"
)

type OpenSummaryMsg struct {
	Summary models.Summary
}

type DeleteSummaryMsg struct {
	ID string
}

type GenerateMsg struct{}

type Item struct {
	Summary models.Summary
}

func (i Item) Title() string {
	return fmt.Sprintf("%s  %s to %s", i.Summary.Type, i.Summary.StartDate, i.Summary.EndDate)
}

func (i Item) Description() string {
	if len(i.Summary.Insights.KeyThemes) == 0 {
		return "no themes"
	}
	themes := i.Summary.Insights.KeyThemes
	if len(themes) > 4 {
		themes = themes[:4]
	}
	return strings.Join(themes, ", ")
}

func (i Item) FilterValue() string {
	return string(i.Summary.Type) + " " + i.Summary.StartDate
}

type KeyMap struct {
	Open     key.Binding
	Delete   key.Binding
	Generate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete summary"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate pending"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(summaries []models.Summary, width, height int) Model {
	l := list.New(toItems(summaries), list.NewDefaultDelegate(), width, height)
	l.Title = "Summaries"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Generate, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Generate, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func (m *Model) SetSummaries(summaries []models.Summary) {
	m.list.SetItems(toItems(summaries))
}

func toItems(summaries []models.Summary) []list.Item {
	items := make([]list.Item, len(summaries))
	for i, s := range summaries {
		items[i] = Item{Summary: s}
	}
	return items
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenSummaryMsg{Summary: i.Summary} }
			}
		case key.Matches(msg, m.keys.Generate):
			return m, func() tea.Msg { return GenerateMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteSummaryMsg{ID: i.Summary.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No summaries yet.\n  Press 'g' to generate pending ones."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
