package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"inboxdesk/internal/format"
	"inboxdesk/internal/view"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	toastStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("33")).Padding(0, 1)
	errorToastStyle  = toastStyle.Background(lipgloss.Color("160"))
	sectionStyle     = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

var tabHelp = map[Tab]string{
	TabSend:  "j/k event  f demo failure  enter send  m metadata",
	TabInbox: "r reload  / search  j/k select  d delete  c clear",
	TabTrash: "r load  j/k select  enter restore  e empty",
}

func (m *Model) View() string {
	sections := []string{m.renderTabs()}
	switch m.tab {
	case TabSend:
		sections = append(sections, m.renderSend())
	case TabInbox:
		sections = append(sections, m.renderInbox())
	case TabTrash:
		sections = append(sections, m.renderTrash())
	}
	if m.toast != nil {
		style := toastStyle
		if m.toast.Error {
			style = errorToastStyle
		}
		sections = append(sections, style.Render(m.toast.Text))
	}
	sections = append(sections, m.styles.Muted.Render(tabHelp[m.tab]+"  tab switch  q quit"))
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		style := inactiveTabStyle
		if Tab(i) == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderSend() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Event type") + "\n")
	for i, eventType := range format.EventTypes {
		prefix := "  "
		if i == m.send.eventIdx {
			prefix = m.styles.Selected.Render("› ")
		}
		b.WriteString(prefix + format.Event(eventType).Icon + " " + eventType + "\n")
	}
	box := "[ ]"
	if m.send.forceFail {
		box = "[x]"
	}
	b.WriteString("\n" + box + " Force primary channel failure (demo)\n")

	if m.send.response != "" {
		b.WriteString(sectionStyle.Render("Response") + "\n" + m.send.response + "\n")
	}
	b.WriteString("\n" + view.RenderMetadata(m.send.summary, m.send.panel, m.styles) + "\n")
	if len(m.send.timeline) > 0 {
		b.WriteString(sectionStyle.Render("Delivery timeline") + "\n")
		b.WriteString(view.RenderTimeline(m.send.timeline, m.styles))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderInbox() string {
	return m.search.View() + "\n\n" + m.inboxBody()
}

func (m *Model) inboxBody() string {
	switch m.inbox.status {
	case panelLoading:
		return view.LoadingInbox
	case panelFailed:
		return "Failed to load inbox: " + m.inbox.err.Error()
	case panelCleared:
		return view.InboxCleared
	case panelLoaded:
		return view.RenderInbox(m.inbox.view, m.inbox.selected, m.styles)
	default:
		return "Press r to load your secure inbox."
	}
}

func (m *Model) renderTrash() string {
	switch m.trash.status {
	case panelLoading:
		return view.LoadingTrash
	case panelFailed:
		return "Failed to load trash: " + m.trash.err.Error()
	case panelLoaded:
		return view.RenderTrash(m.trash.view, m.trash.selected, m.styles)
	default:
		return "Press r to load the trash."
	}
}
