package models

type InboxMessage struct {
	NotificationID string `json:"notification_id"`
	EventType      string `json:"event_type"`
	Timestamp      string `json:"timestamp"`
}

type TrashMessage struct {
	NotificationID string `json:"notification_id"`
	EventType      string `json:"event_type"`
	DeliveredVia   string `json:"delivered_via"`
	Timestamp      string `json:"timestamp,omitempty"`
}

type InboxResponse struct {
	Inbox *[]InboxMessage `json:"inbox"`
}

type TrashResponse struct {
	Trash *[]TrashMessage `json:"trash"`
}

type MessageRef struct {
	NotificationID string `json:"notification_id"`
}

// Ack is the acknowledgment body of the mutating endpoints. Every field is
// optional; an empty body acknowledges success.
type Ack struct {
	Success *bool  `json:"success,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a Ack) Failed() bool {
	return (a.Success != nil && !*a.Success) || a.Error != ""
}

type ServiceStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
