package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inboxdesk/internal/models"
)

func TestSendEncodesDemoModeAndDecodesNotification(t *testing.T) {
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		got = append(got, body)
		_, _ = w.Write([]byte(`{"notification":{"primary_channel":"sms","retry_score":0.5,"retry_percentage":50,"attempts":[{"channel":"sms","status":"SUCCESS"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Send(context.Background(), "OTP", true)
	require.NoError(t, err)
	require.NotNil(t, res.Notification)
	require.Equal(t, "sms", res.Notification.PrimaryChannel)
	require.Len(t, res.Notification.Attempts, 1)
	require.Contains(t, res.Raw, "\n  \"notification\": {")

	_, err = c.Send(context.Background(), "OTP", false)
	require.NoError(t, err)

	require.Equal(t, "force_primary_fail", got[0]["demo_mode"])
	v, present := got[1]["demo_mode"]
	require.True(t, present, "demo_mode must be sent as null")
	require.Nil(t, v)
}

func TestSendWithoutNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).Send(context.Background(), "OTP", false)
	require.NoError(t, err)
	require.Nil(t, res.Notification)
	require.Contains(t, res.Raw, "queued")
}

func TestSendRawKeepsKeyOrderAndNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"sent","id":12345678901234567891,"notification":null}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).Send(context.Background(), "OTP", false)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"status\": \"sent\",\n  \"id\": 12345678901234567891,\n  \"notification\": null\n}", res.Raw)
}

func TestSendRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Send(context.Background(), "OTP", false)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDeliveryFetchesByID(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"notification":{"id":"a b","event_type":"OTP","primary_channel":"push","retry_score":0.12,"retry_percentage":12,"attempts":[{"channel":"push","status":"SUCCESS"}],"timestamp":"2026-03-10T09:00:00Z"}}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).Delivery(context.Background(), "a b")
	require.NoError(t, err)
	require.Equal(t, "/deliveries/a%20b", path)
	require.NotNil(t, res.Notification)
	require.Equal(t, "push", res.Notification.PrimaryChannel)
}

func TestErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inbox":
			_, _ = w.Write([]byte(`{"inbox": [`))
		case "/trash":
			_, _ = w.Write([]byte(`{"items": []}`))
		case "/send":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"engine down"}`))
		case "/restore_message":
			_, _ = w.Write([]byte(`{"success": false, "error": "unknown id"}`))
		case "/empty_trash":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Inbox(ctx)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = c.Trash(ctx)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = c.Send(ctx, "OTP", false)
	require.ErrorIs(t, err, ErrStatus)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadGateway, httpErr.Code)
	require.Equal(t, "http 502: engine down", err.Error())

	err = c.Restore(ctx, "n-1")
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "unknown id")

	require.NoError(t, c.EmptyTrash(ctx))
}

func TestTransportFailureAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Inbox(context.Background())
	require.ErrorIs(t, err, ErrTransport)

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	_, err = New(slow.URL, 50*time.Millisecond).Trash(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestAPIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		_, _ = w.Write([]byte(`{"inbox":[]}`))
	}))
	defer srv.Close()

	msgs, err := New(srv.URL+"/", time.Second, WithAPIKey(" secret ")).Inbox(context.Background())
	require.NoError(t, err)
	require.Empty(t, msgs)
}

// fakeService keeps inbox and trash in memory and honors the lifecycle
// requests, standing in for the delivery service at the HTTP seam.
type fakeService struct {
	mu    sync.Mutex
	inbox []models.InboxMessage
	trash []models.TrashMessage
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ref models.MessageRef
	if r.Method == http.MethodPost && r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&ref)
	}
	switch r.URL.Path {
	case "/inbox":
		_ = json.NewEncoder(w).Encode(map[string]any{"inbox": f.inbox})
	case "/trash":
		_ = json.NewEncoder(w).Encode(map[string]any{"trash": f.trash})
	case "/restore_message":
		for i, m := range f.trash {
			if m.NotificationID == ref.NotificationID {
				f.trash = append(f.trash[:i], f.trash[i+1:]...)
				f.inbox = append(f.inbox, models.InboxMessage{NotificationID: m.NotificationID, EventType: m.EventType, Timestamp: m.Timestamp})
				break
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	case "/empty_trash":
		f.trash = nil
		_, _ = w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	fake := &fakeService{
		trash: []models.TrashMessage{
			{NotificationID: "n-1", EventType: "OTP", DeliveredVia: "inbox", Timestamp: "2026-03-10T10:00:00"},
			{NotificationID: "n-2", EventType: "Fraud Alert", DeliveredVia: "inbox"},
		},
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c := New(srv.URL, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Restore(ctx, "n-1"))

	trash, err := c.Trash(ctx)
	require.NoError(t, err)
	for _, m := range trash {
		require.NotEqual(t, "n-1", m.NotificationID)
	}
	inbox, err := c.Inbox(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "n-1", inbox[0].NotificationID)

	// Restoring an id that no longer exists still acknowledges.
	require.NoError(t, c.Restore(ctx, "n-1"))
}
