package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"inboxdesk/internal/models"
)

func TestPanelStateMachine(t *testing.T) {
	p := PanelCollapsed
	require.Equal(t, "Show", p.ToggleLabel())

	p = p.Toggle()
	require.Equal(t, PanelExpanded, p)
	require.Equal(t, "Hide", p.ToggleLabel())

	require.Equal(t, PanelExpanded, p.Reveal())
	require.Equal(t, PanelExpanded, PanelCollapsed.Reveal())
	require.Equal(t, PanelCollapsed, p.Toggle())
}

func TestSummaryOf(t *testing.T) {
	s := SummaryOf(models.Notification{PrimaryChannel: "sms", RetryScore: 0.92, RetryPercentage: 92})
	require.Equal(t, "📩 sms", s.PrimaryChannel)
	require.Equal(t, "0.92", s.RetryScore)
	require.Equal(t, "92%", s.RetryPercentage)
}

func TestRenderMetadata(t *testing.T) {
	s := Summary{PrimaryChannel: "📧 email", RetryScore: "3", RetryPercentage: "30%"}
	require.Equal(t, "Delivery metadata [Show]", RenderMetadata(s, PanelCollapsed, PlainStyles()))

	out := RenderMetadata(s, PanelExpanded, PlainStyles())
	require.Contains(t, out, "[Hide]")
	require.Contains(t, out, "Primary channel: 📧 email")
	require.Contains(t, out, "Retry chance:    30%")
}

func TestBuildTrash(t *testing.T) {
	v := BuildTrash([]models.TrashMessage{{NotificationID: "n-1", EventType: "OTP", DeliveredVia: "inbox"}})
	require.Equal(t, "🗑️ Deleted: OTP", v.Cards[0].Title)

	out := RenderTrash(v, -1, PlainStyles())
	require.Contains(t, out, "Originally delivered via: inbox")
	require.Contains(t, out, "♻️ Restore n-1")

	require.Equal(t, TrashEmpty, RenderTrash(BuildTrash(nil), -1, PlainStyles()))
}
