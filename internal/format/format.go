// Package format maps raw delivery enums and reason strings to display text.
// Every function is total: unknown input yields a generic value.
package format

import "strings"

const genericIcon = "🔔"

var channelIcons = map[string]string{
	"sms":      "📩",
	"email":    "📧",
	"push":     "📱",
	"whatsapp": "💬",
	"inbox":    "📥",
}

func ChannelIcon(channel string) string {
	if icon, ok := channelIcons[strings.ToLower(strings.TrimSpace(channel))]; ok {
		return icon
	}
	return genericIcon
}

type EventInfo struct {
	Title       string
	Description string
	Icon        string
}

var events = map[string]EventInfo{
	"OTP": {
		Title:       "One-Time Passcode",
		Description: "Your OTP could not be delivered via SMS/Email and has been securely placed here.",
		Icon:        "🔐",
	},
	"Transaction OTP": {
		Title:       "Transaction Verification",
		Description: "We could not deliver your verification code. Please retrieve it from your Secure Inbox.",
		Icon:        "🔐",
	},
	"Fraud Alert": {
		Title:       "Security Alert",
		Description: "We attempted to notify you about a suspicious transaction. View this alert securely.",
		Icon:        "⚠️",
	},
	"Monthly Statement": {
		Title:       "Your Monthly Statement",
		Description: "Your latest account statement is now available.",
		Icon:        "📄",
	},
	"Payment Confirmation": {
		Title:       "Payment Confirmation",
		Description: "Your payment confirmation has been delivered securely.",
		Icon:        "💳",
	},
}

// EventTypes lists the event types the delivery service knows, in menu order.
var EventTypes = []string{"OTP", "Transaction OTP", "Fraud Alert", "Monthly Statement", "Payment Confirmation"}

// Event is exact-match on the event type, unlike ChannelIcon.
func Event(eventType string) EventInfo {
	if info, ok := events[eventType]; ok {
		return info
	}
	return EventInfo{
		Title:       eventType,
		Description: "A new message has been delivered to your Secure Inbox.",
		Icon:        "📩",
	}
}

type reasonMarker struct {
	marker string
	text   string
}

var reasonMarkers = []reasonMarker{
	{marker: "forced_final_fallback", text: "Delivered via final fallback (Inbox) because all channels failed."},
	{marker: "retry_score", text: "Delivery failed due to high retry score."},
}

// ReadableReason turns a raw failure reason into a sentence. When several
// markers occur in the reason the longest one wins.
func ReadableReason(reason string) string {
	if reason == "" {
		return ""
	}
	best := -1
	for i, m := range reasonMarkers {
		if !strings.Contains(reason, m.marker) {
			continue
		}
		if best < 0 || len(m.marker) > len(reasonMarkers[best].marker) {
			best = i
		}
	}
	if best >= 0 {
		return reasonMarkers[best].text
	}
	return strings.ReplaceAll(reason, "_", " ")
}
