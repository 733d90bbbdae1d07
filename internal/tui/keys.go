package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"inboxdesk/internal/format"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "tab":
		return m.dispatch(SwitchTab{Tab: (m.tab + 1) % Tab(len(tabTitles))})
	case "shift+tab":
		return m.dispatch(SwitchTab{Tab: (m.tab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))})
	case "1":
		return m.dispatch(SwitchTab{Tab: TabSend})
	case "2":
		return m.dispatch(SwitchTab{Tab: TabInbox})
	case "3":
		return m.dispatch(SwitchTab{Tab: TabTrash})
	}

	switch m.tab {
	case TabSend:
		return m.handleSendKey(msg)
	case TabInbox:
		return m.handleInboxKey(msg)
	case TabTrash:
		return m.handleTrashKey(msg)
	}
	return nil
}

func (m *Model) handleSendKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		m.send.eventIdx = (m.send.eventIdx + 1) % len(format.EventTypes)
	case "k", "up":
		m.send.eventIdx = (m.send.eventIdx + len(format.EventTypes) - 1) % len(format.EventTypes)
	case "f":
		m.send.forceFail = !m.send.forceFail
	case "m":
		return m.dispatch(ToggleMetadata{})
	case "enter", "s":
		return m.dispatch(SendNotification{EventType: m.selectedEventType(), ForcePrimaryFail: m.send.forceFail})
	}
	return nil
}

func (m *Model) handleInboxKey(msg tea.KeyMsg) tea.Cmd {
	cards := m.inbox.view.Cards()
	switch msg.String() {
	case "r":
		return m.dispatch(ReloadInbox{})
	case "/":
		m.searching = true
		return m.search.Focus()
	case "c":
		return m.dispatch(ClearInbox{})
	case "d", "delete":
		if m.inbox.status == panelLoaded && len(cards) > 0 {
			return m.dispatch(DeleteMessage{ID: cards[m.inbox.selected].NotificationID})
		}
	case "j", "down":
		m.inbox.selected = clamp(m.inbox.selected+1, len(cards))
	case "k", "up":
		m.inbox.selected = clamp(m.inbox.selected-1, len(cards))
	}
	return nil
}

// handleSearchKey feeds the search field; every change of its value reloads
// the inbox.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		return tea.Batch(cmd, m.dispatch(SearchInbox{Query: after}))
	}
	return cmd
}

func (m *Model) handleTrashKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r":
		return m.dispatch(LoadTrash{})
	case "e":
		return m.dispatch(EmptyTrash{})
	case "enter", "u":
		if m.trash.status == panelLoaded && !m.trash.view.Empty() {
			return m.dispatch(RestoreMessage{ID: m.trash.view.Cards[m.trash.selected].NotificationID})
		}
	case "j", "down":
		m.trash.selected = clamp(m.trash.selected+1, len(m.trash.view.Cards))
	case "k", "up":
		m.trash.selected = clamp(m.trash.selected-1, len(m.trash.view.Cards))
	}
	return nil
}
