package view

import (
	"fmt"
	"strings"

	"inboxdesk/internal/format"
	"inboxdesk/internal/models"
)

type Emphasis int

const (
	EmphasisFailure Emphasis = iota
	EmphasisSuccess
)

func (e Emphasis) String() string {
	if e == EmphasisSuccess {
		return "success"
	}
	return "failure"
}

type TimelineEntry struct {
	Label    string
	Icon     string
	Channel  string
	Status   string
	Emphasis Emphasis
	Reason   string
}

func (e TimelineEntry) Headline() string {
	return fmt.Sprintf("%s %s - %s: %s", e.Icon, e.Label, e.Channel, e.Status)
}

// BuildTimeline keeps the attempts in the order the service logged them.
func BuildTimeline(attempts []models.Attempt) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(attempts))
	for i, a := range attempts {
		emphasis := EmphasisFailure
		if a.Succeeded() {
			emphasis = EmphasisSuccess
		}
		entries = append(entries, TimelineEntry{
			Label:    fmt.Sprintf("Attempt %d", i+1),
			Icon:     format.ChannelIcon(a.Channel),
			Channel:  a.Channel,
			Status:   a.Status,
			Emphasis: emphasis,
			Reason:   format.ReadableReason(a.Reason),
		})
	}
	return entries
}

func RenderTimeline(entries []TimelineEntry, st Styles) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		style := st.Failure
		if e.Emphasis == EmphasisSuccess {
			style = st.Success
		}
		body := e.Headline()
		if e.Reason != "" {
			body += "\n" + st.Muted.Render(e.Reason)
		}
		blocks = append(blocks, style.Render(body))
	}
	return strings.Join(blocks, "\n")
}
