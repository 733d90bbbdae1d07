package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inboxdesk/internal/cli/client"
	"inboxdesk/internal/cli/config"
)

func TestCmdSendPrintsAttemptTable(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"notification":{"primary_channel":"sms","retry_score":0.92,"retry_percentage":92,
			"attempts":[{"channel":"sms","status":"FAILURE","reason":"retry_score_high"},
			{"channel":"inbox","status":"SUCCESS","reason":"forced_final_fallback"}]}}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error {
		return cmdSend([]string{"Fraud Alert", "--force-fail", "--format", "table"})
	})
	if err != nil {
		t.Fatalf("cmdSend returned error: %v", err)
	}
	if gotBody["event_type"] != "Fraud Alert" || gotBody["demo_mode"] != "force_primary_fail" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	for _, want := range []string{
		"RETRY_CHANCE\t92%",
		"1\tsms\tFAILURE\tfailure\tDelivery failed due to high retry score.",
		"2\tinbox\tSUCCESS\tsuccess\tDelivered via final fallback (Inbox) because all channels failed.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "retry_score_high") {
		t.Fatalf("raw reason code leaked into output:\n%s", out)
	}
}

func TestCmdSendPlainRendersTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"notification":{"primary_channel":"sms","retry_score":0.92,"retry_percentage":92,
			"attempts":[{"channel":"sms","status":"FAILURE","reason":"retry_score_high"},
			{"channel":"inbox","status":"SUCCESS","reason":"forced_final_fallback"}]}}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdSend([]string{"--force-fail", "--format", "plain"}) })
	if err != nil {
		t.Fatalf("cmdSend returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if len(lines) != 4 {
		t.Fatalf("expected headline and reason per attempt, got:\n%s", out)
	}
	if !strings.Contains(lines[0], "Attempt 1") || !strings.Contains(lines[0], "sms: FAILURE") {
		t.Fatalf("unexpected first headline: %q", lines[0])
	}
	if lines[1] != "Delivery failed due to high retry score." {
		t.Fatalf("unexpected first reason: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Attempt 2") || !strings.Contains(lines[2], "inbox: SUCCESS") {
		t.Fatalf("unexpected second headline: %q", lines[2])
	}
	if lines[3] != "Delivered via final fallback (Inbox) because all channels failed." {
		t.Fatalf("unexpected second reason: %q", lines[3])
	}
}

func TestCmdDeliveryFetchesStoredSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/deliveries/n-7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"notification":{"id":"n-7","primary_channel":"email","retry_score":0.12,"retry_percentage":12,
			"attempts":[{"channel":"email","status":"SUCCESS","reason":""}]}}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdDelivery([]string{"n-7", "--quiet"}) })
	if err != nil {
		t.Fatalf("cmdDelivery returned error: %v", err)
	}
	if out != "email\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCmdSendQuietPrintsDeliveringChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"notification":{"primary_channel":"push","retry_score":0.1,"retry_percentage":10,
			"attempts":[{"channel":"push","status":"SUCCESS","reason":""}]}}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdSend([]string{"--quiet"}) })
	if err != nil {
		t.Fatalf("cmdSend returned error: %v", err)
	}
	if out != "push\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCmdInboxFiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inbox" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"inbox":[
			{"notification_id":"a","event_type":"Fraud Alert","timestamp":"2026-01-01T10:00:00Z"},
			{"notification_id":"b","event_type":"OTP","timestamp":"2026-01-03T10:00:00Z"},
			{"notification_id":"c","event_type":"fraud alert","timestamp":"2026-01-02T10:00:00Z"}]}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdInbox([]string{"--query", "FRAUD", "--quiet"}) })
	if err != nil {
		t.Fatalf("cmdInbox returned error: %v", err)
	}
	if out != "c\na\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCmdInboxEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"inbox":[]}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdInbox([]string{"--format", "table"}) })
	if err != nil {
		t.Fatalf("cmdInbox returned error: %v", err)
	}
	if out != "No messages found.\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCmdTrashRestoreSendsID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/restore_message" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			NotificationID string `json:"notification_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotID = body.NotificationID
		_, _ = io.WriteString(w, `{"success":true,"status":"ok"}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	out, err := captureStdout(t, func() error { return cmdTrash([]string{"restore", "n-7"}) })
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}
	if gotID != "n-7" || out != "Message restored!\n" {
		t.Fatalf("unexpected restore: id=%q out=%q", gotID, out)
	}
}

func TestCmdTrashEmptyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"locked"}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	_, err := captureStdout(t, func() error { return cmdTrash([]string{"empty"}) })
	if !errors.Is(err, client.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestCmdStatusSurfacesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"maintenance"}`)
	}))
	defer srv.Close()
	writeCLIConfig(t, srv.URL)

	err := cmdStatus()
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusServiceUnavailable || httpErr.Message != "maintenance" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCmdConnectValidatesAndSaves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"ok","version":"test"}`)
	}))
	defer srv.Close()
	home := setCLIEnv(t)

	if _, err := captureStdout(t, func() error { return cmdConnect([]string{srv.URL + "/"}) }); err != nil {
		t.Fatalf("cmdConnect returned error: %v", err)
	}
	cfg, err := config.LoadFromPath(filepath.Join(home, ".inboxdesk", "config.json"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server != srv.URL || cfg.ConnectedAt == "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func setCLIEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"INBOXDESK_SERVER", "INBOXDESK_API_KEY", "INBOXDESK_TIMEOUT", "INBOXDESK_LOG_LEVEL", "INBOXDESK_DEFAULT_FORMAT"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	cwd := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(cwd); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
	return home
}

func writeCLIConfig(t *testing.T, serverURL string) {
	t.Helper()
	home := setCLIEnv(t)
	cfgPath := filepath.Join(home, ".inboxdesk", "config.json")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}

	payload := map[string]any{
		"version":      1,
		"server":       serverURL,
		"timeout":      "5s",
		"log_level":    "error",
		"connected_at": "2026-02-16T00:00:00Z",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(cfgPath, b, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create stdout pipe: %v", err)
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	out, readErr := io.ReadAll(r)
	_ = r.Close()
	if readErr != nil {
		t.Fatalf("read stdout: %v", readErr)
	}
	return string(out), runErr
}
