package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"inboxdesk/internal/db"
	"inboxdesk/internal/models"
)

const (
	ackOK       = "ok"
	ackNotFound = "not_found"
)

func ack(status string) models.Ack {
	ok := true
	return models.Ack{Success: &ok, Status: status}
}

func (s *server) inbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := db.ListInbox(r.Context(), s.db)
	if err != nil {
		s.log.WithError(err).Error("list inbox")
		writeError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inbox": msgs})
}

func (s *server) trash(w http.ResponseWriter, r *http.Request) {
	items, err := db.ListTrash(r.Context(), s.db)
	if err != nil {
		s.log.WithError(err).Error("list trash")
		writeError(w, http.StatusInternalServerError, "failed to list trash")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trash": items})
}

func (s *server) clearInbox(w http.ResponseWriter, r *http.Request) {
	s.purge(w, r, "clear_inbox", db.ClearInbox)
}

func (s *server) emptyTrash(w http.ResponseWriter, r *http.Request) {
	s.purge(w, r, "empty_trash", db.EmptyTrash)
}

func (s *server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, "delete", db.MoveToTrash)
}

func (s *server) restoreMessage(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, "restore", db.RestoreFromTrash)
}

func (s *server) purge(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, *sql.DB) (int64, error)) {
	n, err := fn(r.Context(), s.db)
	if err != nil {
		s.metrics.MailboxOps.WithLabelValues(action, "error").Inc()
		s.log.WithError(err).Error(action)
		writeError(w, http.StatusInternalServerError, "failed to "+strings.ReplaceAll(action, "_", " "))
		return
	}
	s.metrics.MailboxOps.WithLabelValues(action, ackOK).Inc()
	s.log.WithFields(logrus.Fields{"action": action, "removed": n}).Info("mailbox purged")
	writeJSON(w, http.StatusOK, ack(ackOK))
}

// move acknowledges unknown ids with success and status not_found; clients
// reload to see the outcome.
func (s *server) move(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, *sql.DB, string) error) {
	var ref models.MessageRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id := strings.TrimSpace(ref.NotificationID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "notification_id is required")
		return
	}

	err := fn(r.Context(), s.db, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.metrics.MailboxOps.WithLabelValues(action, ackNotFound).Inc()
		writeJSON(w, http.StatusOK, ack(ackNotFound))
	case err != nil:
		s.metrics.MailboxOps.WithLabelValues(action, "error").Inc()
		s.log.WithError(err).WithField("notification_id", id).Error(action)
		writeError(w, http.StatusInternalServerError, "failed to "+action+" message")
	default:
		s.metrics.MailboxOps.WithLabelValues(action, ackOK).Inc()
		s.log.WithFields(logrus.Fields{"action": action, "notification_id": id}).Info("message moved")
		writeJSON(w, http.StatusOK, ack(ackOK))
	}
}
