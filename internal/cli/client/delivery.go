package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"inboxdesk/internal/models"
)

// SendResult carries both the pretty-printed body, for display, and the
// decoded notification, if the service returned one.
type SendResult struct {
	Raw          string
	Notification *models.Notification
}

func (c *Client) Send(ctx context.Context, eventType string, forcePrimaryFail bool) (*SendResult, error) {
	req := models.SendRequest{EventType: eventType}
	if forcePrimaryFail {
		mode := models.DemoForcePrimaryFail
		req.DemoMode = &mode
	}
	var resp models.SendResponse
	raw, err := c.PostRaw(ctx, "/send", req, &resp)
	if err != nil {
		return nil, err
	}
	return sendResult("/send", raw, resp.Notification)
}

// Delivery fetches a past send by notification id, in the same shape Send
// returns.
func (c *Client) Delivery(ctx context.Context, id string) (*SendResult, error) {
	var resp models.SendResponse
	path := "/deliveries/" + url.PathEscape(id)
	raw, err := c.GetRaw(ctx, path, &resp)
	if err != nil {
		return nil, err
	}
	return sendResult(path, raw, resp.Notification)
}

// sendResult indents the body as received, so key order and number
// literals survive.
func sendResult(path string, raw []byte, n *models.Notification) (*SendResult, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &SendResult{Raw: buf.String(), Notification: n}, nil
}

func (c *Client) Inbox(ctx context.Context) ([]models.InboxMessage, error) {
	var resp models.InboxResponse
	if err := c.Get(ctx, "/inbox", &resp); err != nil {
		return nil, err
	}
	if resp.Inbox == nil {
		return nil, fmt.Errorf("%w: /inbox: missing \"inbox\" field", ErrMalformed)
	}
	return *resp.Inbox, nil
}

func (c *Client) Trash(ctx context.Context) ([]models.TrashMessage, error) {
	var resp models.TrashResponse
	if err := c.Get(ctx, "/trash", &resp); err != nil {
		return nil, err
	}
	if resp.Trash == nil {
		return nil, fmt.Errorf("%w: /trash: missing \"trash\" field", ErrMalformed)
	}
	return *resp.Trash, nil
}

func (c *Client) ClearInbox(ctx context.Context) error {
	return c.ack(ctx, "/clear_inbox", nil)
}

func (c *Client) Restore(ctx context.Context, id string) error {
	return c.ack(ctx, "/restore_message", models.MessageRef{NotificationID: id})
}

func (c *Client) EmptyTrash(ctx context.Context) error {
	return c.ack(ctx, "/empty_trash", nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.ack(ctx, "/delete_message", models.MessageRef{NotificationID: id})
}

func (c *Client) Status(ctx context.Context) (*models.ServiceStatus, error) {
	var st models.ServiceStatus
	if err := c.Get(ctx, "/status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) ack(ctx context.Context, path string, body any) error {
	var ack models.Ack
	if err := c.Post(ctx, path, body, &ack); err != nil {
		return err
	}
	if ack.Failed() {
		msg := ack.Error
		if msg == "" {
			msg = ack.Status
		}
		return fmt.Errorf("%w: %s: %s", ErrRejected, path, msg)
	}
	return nil
}
