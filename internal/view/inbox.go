package view

import (
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"inboxdesk/internal/format"
	"inboxdesk/internal/models"
)

const (
	BucketToday     = "Today"
	BucketYesterday = "Yesterday"
	BucketEarlier   = "Earlier"
)

var bucketOrder = []string{BucketToday, BucketYesterday, BucketEarlier}

const cardDateLayout = "Jan 2, 2006 3:04 PM"

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and zone-less ISO-8601 forms. Zone-less
// values are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type timedMessage struct {
	msg   models.InboxMessage
	at    time.Time
	valid bool
}

func parseAll(msgs []models.InboxMessage, loc *time.Location) []timedMessage {
	out := make([]timedMessage, 0, len(msgs))
	for _, m := range msgs {
		at, ok := ParseTimestamp(m.Timestamp, loc)
		out = append(out, timedMessage{msg: m, at: at, valid: ok})
	}
	return out
}

// sortNewestFirst is stable; unparseable timestamps sort after every valid one.
func sortNewestFirst(items []timedMessage) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.valid != b.valid {
			return a.valid
		}
		return a.at.After(b.at)
	})
}

// SortMessages returns a copy ordered newest first.
func SortMessages(msgs []models.InboxMessage, loc *time.Location) []models.InboxMessage {
	items := parseAll(msgs, loc)
	sortNewestFirst(items)
	out := make([]models.InboxMessage, 0, len(items))
	for _, it := range items {
		out = append(out, it.msg)
	}
	return out
}

func matchesQuery(eventType, query string) bool {
	return strings.Contains(strings.ToLower(eventType), strings.ToLower(query))
}

// FilterMessages keeps messages whose event type contains query, ignoring case.
func FilterMessages(msgs []models.InboxMessage, query string) []models.InboxMessage {
	if query == "" {
		return msgs
	}
	out := make([]models.InboxMessage, 0, len(msgs))
	for _, m := range msgs {
		if matchesQuery(m.EventType, query) {
			out = append(out, m)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateBucket compares calendar days in now's location, not elapsed hours.
func DateBucket(at time.Time, now time.Time) string {
	today := startOfDay(now)
	day := startOfDay(at.In(now.Location()))
	switch {
	case day.Equal(today):
		return BucketToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return BucketYesterday
	default:
		return BucketEarlier
	}
}

type Card struct {
	NotificationID string
	EventType      string
	Icon           string
	Title          string
	Description    string
	Date           string
	Relative       string
	Badge          string
}

type Group struct {
	Title string
	Cards []Card
}

type InboxView struct {
	Groups []Group
}

func (v InboxView) Empty() bool {
	return len(v.Groups) == 0
}

// Cards flattens the groups in display order.
func (v InboxView) Cards() []Card {
	var out []Card
	for _, g := range v.Groups {
		out = append(out, g.Cards...)
	}
	return out
}

func newCard(it timedMessage, now time.Time) Card {
	info := format.Event(it.msg.EventType)
	card := Card{
		NotificationID: it.msg.NotificationID,
		EventType:      it.msg.EventType,
		Icon:           info.Icon,
		Title:          info.Title,
		Description:    info.Description,
		Date:           it.msg.Timestamp,
		Badge:          SecureBadge,
	}
	if it.valid {
		card.Date = it.at.In(now.Location()).Format(cardDateLayout)
		card.Relative = humanize.RelTime(it.at, now, "ago", "from now")
	}
	return card
}

// BuildInbox sorts, filters and groups raw inbox messages relative to now.
func BuildInbox(raw []models.InboxMessage, query string, now time.Time) InboxView {
	items := parseAll(raw, now.Location())
	sortNewestFirst(items)

	buckets := make(map[string][]Card, len(bucketOrder))
	for _, it := range items {
		if query != "" && !matchesQuery(it.msg.EventType, query) {
			continue
		}
		bucket := BucketEarlier
		if it.valid {
			bucket = DateBucket(it.at, now)
		}
		buckets[bucket] = append(buckets[bucket], newCard(it, now))
	}

	var v InboxView
	for _, name := range bucketOrder {
		if len(buckets[name]) == 0 {
			continue
		}
		v.Groups = append(v.Groups, Group{Title: name, Cards: buckets[name]})
	}
	return v
}

// RenderInbox marks the card at index selected (flattened order); pass -1 for none.
func RenderInbox(v InboxView, selected int, st Styles) string {
	if v.Empty() {
		return NoMessages
	}
	var b strings.Builder
	idx := 0
	for gi, g := range v.Groups {
		if gi > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.Header.Render(g.Title))
		b.WriteString("\n")
		for _, c := range g.Cards {
			b.WriteString(renderCard(c, idx == selected, st))
			idx++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCard(c Card, selected bool, st Styles) string {
	prefix := "  "
	if selected {
		prefix = st.Selected.Render(pointerMarker)
	}
	date := c.Date
	if c.Relative != "" {
		date += " (" + c.Relative + ")"
	}
	var b strings.Builder
	b.WriteString(prefix + c.Icon + " " + st.Title.Render(c.Title) + "\n")
	b.WriteString("    " + c.Description + "\n")
	b.WriteString("    " + st.Muted.Render(date) + "  " + st.Badge.Render("["+c.Badge+"]") + "\n")
	return b.String()
}
