package tui

import (
	"inboxdesk/internal/cli/client"
	"inboxdesk/internal/models"
)

// Command is a user gesture. Key handling translates keystrokes into
// commands; Update is the only consumer.
type Command interface {
	isCommand()
}

type Tab int

const (
	TabSend Tab = iota
	TabInbox
	TabTrash
)

var tabTitles = []string{"Send", "Secure Inbox", "Trash"}

func (t Tab) String() string {
	if int(t) < len(tabTitles) {
		return tabTitles[t]
	}
	return "?"
}

type SwitchTab struct{ Tab Tab }

type ToggleMetadata struct{}

type SendNotification struct {
	EventType        string
	ForcePrimaryFail bool
}

type ReloadInbox struct{}

// SearchInbox is emitted for every change of the search field.
type SearchInbox struct{ Query string }

type ClearInbox struct{}

type DeleteMessage struct{ ID string }

type LoadTrash struct{}

type RestoreMessage struct{ ID string }

type EmptyTrash struct{}

func (SwitchTab) isCommand()        {}
func (ToggleMetadata) isCommand()   {}
func (SendNotification) isCommand() {}
func (ReloadInbox) isCommand()      {}
func (SearchInbox) isCommand()      {}
func (ClearInbox) isCommand()       {}
func (DeleteMessage) isCommand()    {}
func (LoadTrash) isCommand()        {}
func (RestoreMessage) isCommand()   {}
func (EmptyTrash) isCommand()       {}

// Results of service calls, delivered back into Update.

type sentMsg struct {
	result *client.SendResult
	err    error
}

type inboxLoadedMsg struct {
	seq      uint64
	query    string
	messages []models.InboxMessage
	err      error
}

type trashLoadedMsg struct {
	seq   uint64
	items []models.TrashMessage
	err   error
}

type inboxClearedMsg struct{ err error }

type deletedMsg struct {
	id  string
	err error
}

type restoredMsg struct {
	id  string
	err error
}

type trashEmptiedMsg struct{ err error }

type toastExpiredMsg struct{ id int }
