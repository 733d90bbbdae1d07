package view

import (
	"strconv"
	"strings"

	"inboxdesk/internal/format"
	"inboxdesk/internal/models"
)

type PanelState int

const (
	PanelCollapsed PanelState = iota
	PanelExpanded
)

func (p PanelState) Toggle() PanelState {
	if p == PanelExpanded {
		return PanelCollapsed
	}
	return PanelExpanded
}

// Reveal expands a collapsed panel; it never collapses.
func (PanelState) Reveal() PanelState {
	return PanelExpanded
}

// ToggleLabel is the caption of the toggle action in this state.
func (p PanelState) ToggleLabel() string {
	if p == PanelExpanded {
		return "Hide"
	}
	return "Show"
}

type Summary struct {
	PrimaryChannel  string
	RetryScore      string
	RetryPercentage string
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func SummaryOf(n models.Notification) Summary {
	return Summary{
		PrimaryChannel:  format.ChannelIcon(n.PrimaryChannel) + " " + n.PrimaryChannel,
		RetryScore:      formatNumber(n.RetryScore),
		RetryPercentage: formatNumber(n.RetryPercentage) + "%",
	}
}

func RenderMetadata(s Summary, p PanelState, st Styles) string {
	head := st.Title.Render("Delivery metadata") + " " + st.Muted.Render("["+p.ToggleLabel()+"]")
	if p == PanelCollapsed {
		return head
	}
	lines := []string{
		head,
		"  Primary channel: " + orDash(s.PrimaryChannel),
		"  Retry score:     " + orDash(s.RetryScore),
		"  Retry chance:    " + orDash(s.RetryPercentage),
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
