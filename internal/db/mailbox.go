package db

import (
	"context"
	"database/sql"

	"inboxdesk/internal/models"
)

const (
	folderInbox = "inbox"
	folderTrash = "trash"
)

func ListInbox(ctx context.Context, database *sql.DB) ([]models.InboxMessage, error) {
	rows, err := database.QueryContext(ctx, `
SELECT notification_id, event_type, delivered_at
FROM mailbox
WHERE folder = ?
ORDER BY delivered_at DESC`, folderInbox)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.InboxMessage, 0)
	for rows.Next() {
		var m models.InboxMessage
		if err := rows.Scan(&m.NotificationID, &m.EventType, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListTrash returns trashed messages, most recently deleted first.
func ListTrash(ctx context.Context, database *sql.DB) ([]models.TrashMessage, error) {
	rows, err := database.QueryContext(ctx, `
SELECT notification_id, event_type, delivered_via, delivered_at
FROM mailbox
WHERE folder = ?
ORDER BY moved_at DESC, delivered_at DESC`, folderTrash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.TrashMessage, 0)
	for rows.Next() {
		var m models.TrashMessage
		if err := rows.Scan(&m.NotificationID, &m.EventType, &m.DeliveredVia, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MoveToTrash returns sql.ErrNoRows when id is not in the inbox.
func MoveToTrash(ctx context.Context, database *sql.DB, id string) error {
	return move(ctx, database, id, folderInbox, folderTrash)
}

// RestoreFromTrash returns sql.ErrNoRows when id is not in the trash.
func RestoreFromTrash(ctx context.Context, database *sql.DB, id string) error {
	return move(ctx, database, id, folderTrash, folderInbox)
}

func move(ctx context.Context, database *sql.DB, id, from, to string) error {
	res, err := database.ExecContext(ctx, `
UPDATE mailbox
SET folder = ?, moved_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
WHERE notification_id = ? AND folder = ?`, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func ClearInbox(ctx context.Context, database *sql.DB) (int64, error) {
	return purge(ctx, database, folderInbox)
}

func EmptyTrash(ctx context.Context, database *sql.DB) (int64, error) {
	return purge(ctx, database, folderTrash)
}

func purge(ctx context.Context, database *sql.DB, folder string) (int64, error) {
	res, err := database.ExecContext(ctx, `DELETE FROM mailbox WHERE folder = ?`, folder)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
