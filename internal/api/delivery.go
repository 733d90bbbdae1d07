package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"inboxdesk/internal/db"
	"inboxdesk/internal/models"
)

const (
	directRetryScore   = 0.12
	fallbackRetryScore = 0.92

	reasonRetryScoreHigh = "retry_score_high"
	reasonForcedFallback = "forced_final_fallback"
)

var primaryChannels = map[string]string{
	"OTP":                  models.ChannelSMS,
	"Transaction OTP":      models.ChannelSMS,
	"Fraud Alert":          models.ChannelPush,
	"Monthly Statement":    models.ChannelEmail,
	"Payment Confirmation": models.ChannelWhatsApp,
}

func primaryChannel(eventType string) string {
	if ch, ok := primaryChannels[eventType]; ok {
		return ch
	}
	return models.ChannelEmail
}

// plan decides the attempts for one send. It is deterministic: the primary
// channel succeeds unless the caller forces it to fail, in which case the
// message falls back to the secure inbox.
func plan(eventType string, demoMode *string) (string, float64, []models.Attempt) {
	primary := primaryChannel(eventType)
	if demoMode != nil && *demoMode == models.DemoForcePrimaryFail {
		return primary, fallbackRetryScore, []models.Attempt{
			{Channel: primary, Status: models.StatusFailure, Reason: reasonRetryScoreHigh},
			{Channel: models.ChannelInbox, Status: models.StatusSuccess, Reason: reasonForcedFallback},
		}
	}
	return primary, directRetryScore, []models.Attempt{
		{Channel: primary, Status: models.StatusSuccess, Reason: ""},
	}
}

type sentNotification struct {
	ID              string           `json:"id"`
	EventType       string           `json:"event_type"`
	PrimaryChannel  string           `json:"primary_channel"`
	RetryScore      float64          `json:"retry_score"`
	RetryPercentage float64          `json:"retry_percentage"`
	Attempts        []models.Attempt `json:"attempts"`
	Timestamp       string           `json:"timestamp"`
}

func (s *server) send(w http.ResponseWriter, r *http.Request) {
	var req models.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.EventType = strings.TrimSpace(req.EventType)
	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "event_type is required")
		return
	}
	if req.DemoMode != nil && *req.DemoMode != models.DemoForcePrimaryFail {
		writeError(w, http.StatusBadRequest, "unknown demo_mode")
		return
	}

	primary, score, attempts := plan(req.EventType, req.DemoMode)
	d := db.Delivery{
		ID:             s.newID(),
		EventType:      req.EventType,
		PrimaryChannel: primary,
		RetryScore:     score,
		Created:        s.now(),
		Attempts:       attempts,
	}
	if req.DemoMode != nil {
		d.DemoMode = *req.DemoMode
	}
	if err := db.RecordDelivery(r.Context(), s.db, d); err != nil {
		s.log.WithError(err).WithField("event_type", req.EventType).Error("record delivery")
		writeError(w, http.StatusInternalServerError, "failed to record delivery")
		return
	}

	final := attempts[len(attempts)-1].Channel
	s.metrics.Deliveries.WithLabelValues(primary, final).Inc()
	s.log.WithFields(logrus.Fields{
		"id":            d.ID,
		"event_type":    d.EventType,
		"primary":       primary,
		"delivered_via": final,
	}).Info("notification sent")

	writeJSON(w, http.StatusOK, map[string]any{"notification": notificationOf(d)})
}

func (s *server) delivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := db.GetDelivery(r.Context(), s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("load delivery")
		writeError(w, http.StatusInternalServerError, "failed to load delivery")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notification": notificationOf(*d)})
}

func notificationOf(d db.Delivery) sentNotification {
	return sentNotification{
		ID:              d.ID,
		EventType:       d.EventType,
		PrimaryChannel:  d.PrimaryChannel,
		RetryScore:      d.RetryScore,
		RetryPercentage: math.Round(d.RetryScore * 100),
		Attempts:        d.Attempts,
		Timestamp:       d.Created.UTC().Format(db.TimeLayout),
	}
}
