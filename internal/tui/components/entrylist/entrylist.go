package entrylist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ahollis/retro/internal/models"
)

type AddEntryMsg struct{}

type DeleteEntryMsg struct {
	Date string
}

type Item struct {
	Entry models.Entry
}

func (i Item) Title() string {
	return fmt.Sprintf("%s  [%d/%d/%d]", i.Entry.Date,
		i.Entry.Ratings.Productivity, i.Entry.Ratings.Mood, i.Entry.Ratings.Energy)
}

func (i Item) Description() string {
	text := strings.ReplaceAll(i.Entry.DailyText, "\n", " ")
	if len(text) > 70 {
		text = text[:67] + "..."
	}
	if text == "" {
		text = fmt.Sprintf("%d list items", len(i.Entry.Accomplishments)+len(i.Entry.ThingsLearned)+len(i.Entry.ThingsGrateful))
	}
	return text
}

func (i Item) FilterValue() string { return i.Entry.Date + " " + i.Entry.DailyText }

type KeyMap struct {
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add entry"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete entry"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []models.Entry, width, height int) Model {
	l := list.New(toItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Entries"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is handled globally

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// SetEntries replaces the list contents. Entries arrive oldest first from the
// store; the list shows newest first.
func (m *Model) SetEntries(entries []models.Entry) {
	m.list.SetItems(toItems(entries))
}

func toItems(entries []models.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i := range entries {
		items[len(entries)-1-i] = Item{Entry: entries[i]}
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
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddEntryMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteEntryMsg{Date: i.Entry.Date} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No entries yet.\n  Press 'a' to write today's."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
