package view

import (
	"strings"

	"inboxdesk/internal/models"
)

type TrashCard struct {
	NotificationID string
	Title          string
	DeliveredVia   string
}

type TrashView struct {
	Cards []TrashCard
}

func (v TrashView) Empty() bool {
	return len(v.Cards) == 0
}

// BuildTrash keeps the service's order.
func BuildTrash(items []models.TrashMessage) TrashView {
	v := TrashView{Cards: make([]TrashCard, 0, len(items))}
	for _, m := range items {
		v.Cards = append(v.Cards, TrashCard{
			NotificationID: m.NotificationID,
			Title:          "🗑️ Deleted: " + m.EventType,
			DeliveredVia:   m.DeliveredVia,
		})
	}
	return v
}

func RenderTrash(v TrashView, selected int, st Styles) string {
	if v.Empty() {
		return TrashEmpty
	}
	var b strings.Builder
	for i, c := range v.Cards {
		prefix := "  "
		if i == selected {
			prefix = st.Selected.Render(pointerMarker)
		}
		b.WriteString(prefix + st.Title.Render(c.Title) + "\n")
		b.WriteString("    Originally delivered via: " + c.DeliveredVia + "\n")
		b.WriteString("    " + st.Badge.Render("♻️ Restore "+c.NotificationID) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
