// Package tui is the interactive delivery desk. All state lives in Model and
// changes only inside Update; service calls run as tea.Cmds and report back
// as messages.
package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"inboxdesk/internal/cli/client"
	"inboxdesk/internal/format"
	"inboxdesk/internal/models"
	"inboxdesk/internal/view"
)

const defaultToastDuration = 2500 * time.Millisecond

type DeliveryService interface {
	Send(ctx context.Context, eventType string, forcePrimaryFail bool) (*client.SendResult, error)
	Inbox(ctx context.Context) ([]models.InboxMessage, error)
	Trash(ctx context.Context) ([]models.TrashMessage, error)
	ClearInbox(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	EmptyTrash(ctx context.Context) error
}

type panelStatus int

const (
	panelIdle panelStatus = iota
	panelLoading
	panelLoaded
	panelFailed
	panelCleared
)

type Toast struct {
	Text  string
	Error bool
	id    int
}

type sendState struct {
	eventIdx  int
	forceFail bool
	response  string
	panel     view.PanelState
	summary   view.Summary
	timeline  []view.TimelineEntry
}

type inboxState struct {
	seq      uint64
	status   panelStatus
	view     view.InboxView
	err      error
	selected int
}

type trashState struct {
	seq      uint64
	status   panelStatus
	view     view.TrashView
	err      error
	selected int
}

type Model struct {
	svc     DeliveryService
	log     logrus.FieldLogger
	now     func() time.Time
	timeout time.Duration
	styles  view.Styles

	tab       Tab
	send      sendState
	inbox     inboxState
	trash     trashState
	search    textinput.Model
	searching bool

	toast    *Toast
	toastSeq int
	toastTTL time.Duration
}

type Option func(*Model)

func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) { m.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithTimeout bounds each service call; zero leaves it to the client.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

func WithToastDuration(d time.Duration) Option {
	return func(m *Model) { m.toastTTL = d }
}

func WithStyles(st view.Styles) Option {
	return func(m *Model) { m.styles = st }
}

func New(svc DeliveryService, opts ...Option) *Model {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	search := textinput.New()
	search.Placeholder = "filter by event type"
	search.Prompt = "Search: "

	m := &Model{
		svc:      svc,
		log:      discard,
		now:      time.Now,
		styles:   view.DefaultStyles(),
		search:   search,
		toastTTL: defaultToastDuration,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, m.dispatch(msg)
}

func (m *Model) dispatch(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case SwitchTab:
		m.tab = typed.Tab
		if m.tab != TabInbox && m.searching {
			m.searching = false
			m.search.Blur()
		}
		return nil
	case ToggleMetadata:
		m.send.panel = m.send.panel.Toggle()
		return nil
	case SendNotification:
		return m.sendCmd(typed)
	case ReloadInbox:
		return m.reloadInboxCmd()
	case SearchInbox:
		if m.search.Value() != typed.Query {
			m.search.SetValue(typed.Query)
		}
		return m.reloadInboxCmd()
	case ClearInbox:
		return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
			return inboxClearedMsg{err: svc.ClearInbox(ctx)}
		})
	case DeleteMessage:
		id := typed.ID
		return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
			return deletedMsg{id: id, err: svc.Delete(ctx, id)}
		})
	case LoadTrash:
		return m.loadTrashCmd()
	case RestoreMessage:
		id := typed.ID
		return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
			return restoredMsg{id: id, err: svc.Restore(ctx, id)}
		})
	case EmptyTrash:
		return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
			return trashEmptiedMsg{err: svc.EmptyTrash(ctx)}
		})

	case sentMsg:
		return m.applySent(typed)
	case inboxLoadedMsg:
		return m.applyInbox(typed)
	case trashLoadedMsg:
		return m.applyTrash(typed)
	case inboxClearedMsg:
		if typed.err != nil {
			return m.showToast("Failed to clear inbox: "+typed.err.Error(), true)
		}
		// Drop any load still in flight; the cleared state is final.
		m.inbox.seq++
		m.inbox.status = panelCleared
		m.inbox.view = view.InboxView{}
		m.inbox.selected = 0
		return m.showToast("Inbox cleared!", false)
	case deletedMsg:
		text, isErr := "Message moved to trash!", false
		if typed.err != nil {
			text, isErr = "Failed to delete message: "+typed.err.Error(), true
		}
		return tea.Batch(m.showToast(text, isErr), m.reloadInboxCmd())
	case restoredMsg:
		// Restores are acknowledged whether or not the id still existed;
		// the reload shows what the service actually did.
		text, isErr := "Message restored!", false
		if typed.err != nil {
			text, isErr = "Failed to restore message: "+typed.err.Error(), true
		}
		return tea.Batch(m.showToast(text, isErr), m.loadTrashCmd())
	case trashEmptiedMsg:
		if typed.err != nil {
			return m.showToast("Failed to empty trash: "+typed.err.Error(), true)
		}
		m.trash.seq++
		m.trash.status = panelLoaded
		m.trash.view = view.TrashView{}
		m.trash.selected = 0
		return m.showToast("Trash emptied!", false)
	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == typed.id {
			m.toast = nil
		}
		return nil
	}
	return nil
}

func (m *Model) call(fn func(ctx context.Context, svc DeliveryService) tea.Msg) tea.Cmd {
	svc := m.svc
	timeout := m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return fn(ctx, svc)
	}
}

func (m *Model) sendCmd(c SendNotification) tea.Cmd {
	m.send.response = "Sending..."
	return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
		res, err := svc.Send(ctx, c.EventType, c.ForcePrimaryFail)
		return sentMsg{result: res, err: err}
	})
}

// applySent leaves metadata and timeline untouched on failure.
func (m *Model) applySent(msg sentMsg) tea.Cmd {
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("send failed")
		m.send.response = "Error: " + msg.err.Error()
		return m.showToast("Failed to send notification", true)
	}
	m.send.response = msg.result.Raw
	if n := msg.result.Notification; n != nil {
		m.send.summary = view.SummaryOf(*n)
		m.send.panel = m.send.panel.Reveal()
		if n.Attempts != nil {
			m.send.timeline = view.BuildTimeline(n.Attempts)
		}
	}
	return m.showToast("Notification sent successfully!", false)
}

// reloadInboxCmd issues a fetch tagged with a fresh sequence number. Only the
// result carrying the latest number is applied, whatever order results
// arrive in.
func (m *Model) reloadInboxCmd() tea.Cmd {
	m.inbox.seq++
	seq := m.inbox.seq
	query := m.search.Value()
	m.inbox.status = panelLoading
	return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
		msgs, err := svc.Inbox(ctx)
		return inboxLoadedMsg{seq: seq, query: query, messages: msgs, err: err}
	})
}

func (m *Model) applyInbox(msg inboxLoadedMsg) tea.Cmd {
	if msg.seq != m.inbox.seq {
		m.log.WithFields(logrus.Fields{"seq": msg.seq, "latest": m.inbox.seq}).Debug("dropping stale inbox response")
		return nil
	}
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("inbox load failed")
		m.inbox.status = panelFailed
		m.inbox.err = msg.err
		return m.showToast("Failed to load inbox", true)
	}
	m.inbox.status = panelLoaded
	m.inbox.err = nil
	m.inbox.view = view.BuildInbox(msg.messages, msg.query, m.now())
	m.inbox.selected = clamp(m.inbox.selected, len(m.inbox.view.Cards()))
	return nil
}

func (m *Model) loadTrashCmd() tea.Cmd {
	m.trash.seq++
	seq := m.trash.seq
	m.trash.status = panelLoading
	return m.call(func(ctx context.Context, svc DeliveryService) tea.Msg {
		items, err := svc.Trash(ctx)
		return trashLoadedMsg{seq: seq, items: items, err: err}
	})
}

func (m *Model) applyTrash(msg trashLoadedMsg) tea.Cmd {
	if msg.seq != m.trash.seq {
		m.log.WithFields(logrus.Fields{"seq": msg.seq, "latest": m.trash.seq}).Debug("dropping stale trash response")
		return nil
	}
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("trash load failed")
		m.trash.status = panelFailed
		m.trash.err = msg.err
		return m.showToast("Failed to load trash", true)
	}
	m.trash.status = panelLoaded
	m.trash.err = nil
	m.trash.view = view.BuildTrash(msg.items)
	m.trash.selected = clamp(m.trash.selected, len(m.trash.view.Cards))
	return nil
}

func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &Toast{Text: text, Error: isErr, id: id}
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m *Model) selectedEventType() string {
	return format.EventTypes[m.send.eventIdx]
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
