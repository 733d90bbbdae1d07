// Package view derives display state from fetched delivery data and renders it
// as terminal text. Build functions are pure; Render functions only format.
package view

import "github.com/charmbracelet/lipgloss"

const (
	LoadingInbox  = "Loading your secure messages..."
	LoadingTrash  = "Loading trash..."
	NoMessages    = "No messages found."
	TrashEmpty    = "(Trash Empty)"
	InboxCleared  = "Inbox cleared."
	SecureBadge   = "Secure Inbox"
	pointerMarker = "› "
)

type Styles struct {
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Header   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Badge    lipgloss.Style
	Selected lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2")).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("2")).
			PaddingLeft(1),
		Failure: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("1")).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("1")).
			PaddingLeft(1),
		Header:   lipgloss.NewStyle().Bold(true).Underline(true),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Badge:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// PlainStyles renders without any escape sequences or borders.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Success:  plain,
		Failure:  plain,
		Header:   plain,
		Title:    plain,
		Muted:    plain,
		Badge:    plain,
		Selected: plain,
	}
}
