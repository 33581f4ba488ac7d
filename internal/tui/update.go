package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ahollis/retro/internal/storage"
	"github.com/ahollis/retro/internal/tui/components/entrylist"
	"github.com/ahollis/retro/internal/tui/components/summarylist"
	"github.com/ahollis/retro/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		contentHeight := msg.Height - v - 3 // tabs and status line
		m.entryList.SetSize(msg.Width-h, contentHeight)
		m.summaryList.SetSize(msg.Width-h, contentHeight)
		m.reader.Width = msg.Width - h
		m.reader.Height = contentHeight

	case entrylist.AddEntryMsg:
		m.entryForm = defaultEntryForm()
		m.form = newEntryForm(m.entryForm)
		m.previousState = m.state
		m.state = StateAddEntry
		return m, m.form.Init()

	case entrylist.DeleteEntryMsg:
		m.entryToDelete = msg.Date
		m.previousState = m.state
		m.state = StateConfirmDeleteEntry
		return m, nil

	case summarylist.OpenSummaryMsg:
		m.reader.SetContent(msg.Summary.Content)
		m.reader.GotoTop()
		m.previousState = m.state
		m.state = StateReadSummary
		return m, nil

	case summarylist.DeleteSummaryMsg:
		m.summaryToDelete = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDeleteSummary
		return m, nil

	case summarylist.GenerateMsg:
		res := m.generator.CheckPendingSummaries(time.Now())
		m.reloadSummaries()
		if len(res.Errors) > 0 {
			m.status = fmt.Sprintf("generated %d, %d period(s) failed", len(res.Generated), len(res.Errors))
		} else if len(res.Generated) == 0 {
			m.status = "all summaries up to date"
		} else {
			m.status = fmt.Sprintf("generated %d summaries", len(res.Generated))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateAddEntry:
			return m.updateForm(msg)
		case StateConfirmDeleteEntry:
			return m.updateConfirmDeleteEntry(msg)
		case StateConfirmDeleteSummary:
			return m.updateConfirmDeleteSummary(msg)
		case StateReadSummary:
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
				m.state = m.previousState
				return m, nil
			}
			var cmd tea.Cmd
			m.reader, cmd = m.reader.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == StateEntries {
				m.state = StateSummaries
			} else {
				m.state = StateEntries
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	return m.routeByState(msg)
}

// routeByState forwards non-global messages to whichever component owns the
// current state. The huh form in particular needs every message, not just
// keys, or its cursor and spinner commands stall.
func (m Model) routeByState(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case StateEntries:
		m.entryList, cmd = m.entryList.Update(msg)
	case StateSummaries:
		m.summaryList, cmd = m.summaryList.Update(msg)
	case StateAddEntry:
		return m.updateForm(msg)
	case StateReadSummary:
		m.reader, cmd = m.reader.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		entry := validation.NormalizeEntry(m.entryForm.toEntry())
		if result := validation.ValidateEntry(entry); !result.OK() {
			m.status = result.Err().Error()
		} else if err := m.store.SaveEntry(entry); err != nil {
			m.status = fmt.Sprintf("failed to save entry: %v", err)
		} else {
			m.status = fmt.Sprintf("saved entry for %s", entry.Date)
			m.reloadEntries()
		}
		m.form = nil
		m.entryForm = nil
		m.state = m.previousState
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.entryForm = nil
		m.state = m.previousState
		return m, nil
	}

	return m, cmd
}

func (m Model) updateConfirmDeleteEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.DeleteEntry(m.entryToDelete); err != nil && !errors.Is(err, storage.ErrNotFound) {
			m.status = fmt.Sprintf("failed to delete entry: %v", err)
		} else {
			m.status = fmt.Sprintf("deleted entry for %s", m.entryToDelete)
			m.reloadEntries()
		}
		m.entryToDelete = ""
		m.state = m.previousState
	case "n", "N", "esc", "q":
		m.entryToDelete = ""
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) updateConfirmDeleteSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.DeleteSummary(m.summaryToDelete); err != nil && !errors.Is(err, storage.ErrNotFound) {
			m.status = fmt.Sprintf("failed to delete summary: %v", err)
		} else {
			m.status = "deleted summary"
			m.reloadSummaries()
		}
		m.summaryToDelete = ""
		m.state = m.previousState
	case "n", "N", "esc", "q":
		m.summaryToDelete = ""
		m.state = m.previousState
	}
	return m, nil
}
