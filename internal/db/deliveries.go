package db

import (
	"context"
	"database/sql"
	"time"

	"inboxdesk/internal/models"
)

// TimeLayout is fixed-width so stored timestamps sort as text.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

type Delivery struct {
	ID             string
	EventType      string
	PrimaryChannel string
	RetryScore     float64
	DemoMode       string
	Created        time.Time
	Attempts       []models.Attempt
}

// RecordDelivery stores the delivery with its attempts. When the last
// attempt succeeded on the inbox channel the message also lands in the inbox.
func RecordDelivery(ctx context.Context, database *sql.DB, d Delivery) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	created := d.Created.UTC().Format(TimeLayout)
	var demoMode any
	if d.DemoMode != "" {
		demoMode = d.DemoMode
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO deliveries (id, event_type, primary_channel, retry_score, demo_mode, created)
VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.EventType, d.PrimaryChannel, d.RetryScore, demoMode, created,
	); err != nil {
		return err
	}
	for i, a := range d.Attempts {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO attempts (delivery_id, seq, channel, status, reason)
VALUES (?, ?, ?, ?, ?)`,
			d.ID, i+1, a.Channel, a.Status, a.Reason,
		); err != nil {
			return err
		}
	}

	if n := len(d.Attempts); n > 0 && d.Attempts[n-1].Succeeded() && d.Attempts[n-1].Channel == models.ChannelInbox {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO mailbox (notification_id, event_type, delivered_via, delivered_at, folder)
VALUES (?, ?, ?, ?, 'inbox')`,
			d.ID, d.EventType, models.ChannelInbox, created,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func GetDelivery(ctx context.Context, database *sql.DB, id string) (*Delivery, error) {
	var (
		d        Delivery
		demoMode sql.NullString
		created  string
	)
	if err := database.QueryRowContext(ctx, `
SELECT id, event_type, primary_channel, retry_score, demo_mode, created
FROM deliveries
WHERE id = ?`, id).Scan(&d.ID, &d.EventType, &d.PrimaryChannel, &d.RetryScore, &demoMode, &created); err != nil {
		return nil, err
	}
	d.DemoMode = demoMode.String
	d.Created, _ = time.Parse(time.RFC3339Nano, created)

	rows, err := database.QueryContext(ctx, `
SELECT channel, status, reason
FROM attempts
WHERE delivery_id = ?
ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.Channel, &a.Status, &a.Reason); err != nil {
			return nil, err
		}
		d.Attempts = append(d.Attempts, a)
	}
	return &d, rows.Err()
}

func CountDeliveries(ctx context.Context, database *sql.DB) (int, error) {
	var n int
	err := database.QueryRowContext(ctx, `SELECT COUNT(1) FROM deliveries`).Scan(&n)
	return n, err
}
