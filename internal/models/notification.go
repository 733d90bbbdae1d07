package models

const (
	ChannelSMS      = "sms"
	ChannelEmail    = "email"
	ChannelPush     = "push"
	ChannelWhatsApp = "whatsapp"
	ChannelInbox    = "inbox"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// DemoForcePrimaryFail asks the delivery service to fail the primary channel.
const DemoForcePrimaryFail = "force_primary_fail"

type Attempt struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

func (a Attempt) Succeeded() bool {
	return a.Status == StatusSuccess
}

type Notification struct {
	PrimaryChannel  string    `json:"primary_channel"`
	RetryScore      float64   `json:"retry_score"`
	RetryPercentage float64   `json:"retry_percentage"`
	Attempts        []Attempt `json:"attempts,omitempty"`
}

type SendRequest struct {
	EventType string  `json:"event_type"`
	DemoMode  *string `json:"demo_mode"`
}

type SendResponse struct {
	Notification *Notification `json:"notification,omitempty"`
}
