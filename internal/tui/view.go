package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateEntries:
		content = docStyle.Render(m.entryList.View())
	case StateSummaries:
		content = docStyle.Render(m.summaryList.View())
	case StateReadSummary:
		content = docStyle.Render(m.reader.View())
	case StateAddEntry:
		content = m.form.View()
	case StateConfirmDeleteEntry:
		content = m.viewConfirm("Delete the entry for " + m.entryToDelete + "?")
	case StateConfirmDeleteSummary:
		content = m.viewConfirm("Delete this summary?")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Entries", "Summaries"} {
		active := m.state == SessionState(i)
		// Modal states keep the underlying tab highlighted
		if m.state >= StateReadSummary {
			active = m.previousState == SessionState(i)
		}
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirm(question string) string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
