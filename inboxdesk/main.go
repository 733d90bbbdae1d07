package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"inboxdesk/internal/cli/client"
	"inboxdesk/internal/cli/config"
	"inboxdesk/internal/cli/output"
	"inboxdesk/internal/logging"
	"inboxdesk/internal/models"
	"inboxdesk/internal/tui"
	"inboxdesk/internal/view"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return cmdTUI(nil)
	}
	switch args[0] {
	case "connect":
		return cmdConnect(args[1:])
	case "disconnect":
		return cmdDisconnect()
	case "status":
		return cmdStatus()
	case "send":
		return cmdSend(args[1:])
	case "delivery":
		return cmdDelivery(args[1:])
	case "inbox":
		return cmdInbox(args[1:])
	case "trash":
		return cmdTrash(args[1:])
	case "tui":
		return cmdTUI(args[1:])
	default:
		return usage()
	}
}

func cmdConnect(args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	apiKey := fs.String("api-key", "", "Bearer token, if the service requires one")
	inDir := fs.Bool("in-dir", false, "Write config to ./.inboxdesk/config.json in current directory")
	positionals, err := parseInterspersedFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positionals) != 1 {
		return errors.New("usage: inboxdesk connect <url> [--api-key <key>] [--in-dir]")
	}
	rawURL := strings.TrimSpace(positionals[0])
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	if *inDir {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfgPath = filepath.Join(cwd, ".inboxdesk", "config.json")
	}
	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		return err
	}

	cl := client.New(rawURL, cfg.RequestTimeout(), client.WithAPIKey(*apiKey), client.WithLogger(newLogger(cfg)))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	if _, err := cl.Status(ctx); err != nil {
		return fmt.Errorf("validate server: %w", err)
	}

	cfg.SetServer(rawURL, *apiKey)
	if err := config.SaveToPath(cfg, cfgPath); err != nil {
		return err
	}
	fmt.Printf("connected to %s\n", cfg.Server)
	return nil
}

func cmdDisconnect() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.ConnectedAt == "" {
		fmt.Println("no active connection")
		return nil
	}
	cfg.Disconnect()
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println("disconnected")
	return nil
}

func cmdStatus() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cl := newClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	st, err := cl.Status(ctx)
	if err != nil {
		return err
	}
	return output.Print(os.Stdout, map[string]any{
		"server":       cfg.Server,
		"connected_at": cfg.ConnectedAt,
		"status":       st.Status,
		"version":      st.Version,
	}, "json", false)
}

func cmdSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	forceFail := fs.Bool("force-fail", false, "Ask the service to fail the primary channel (demo mode)")
	format := fs.String("format", "", "Output format: json|table|plain")
	quiet := fs.Bool("quiet", false, "Print only the channel that delivered")
	positionals, err := parseInterspersedFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positionals) > 1 {
		return errors.New("usage: inboxdesk send [event-type] [--force-fail] [--format f] [--quiet]")
	}
	eventType := "OTP"
	if len(positionals) == 1 {
		eventType = positionals[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	res, err := newClient(cfg).Send(ctx, eventType, *forceFail)
	if err != nil {
		return err
	}

	return printSendResult(res, resolveFormat(*format, cfg), *quiet)
}

func cmdDelivery(args []string) error {
	fs := flag.NewFlagSet("delivery", flag.ContinueOnError)
	format := fs.String("format", "", "Output format: json|table|plain")
	quiet := fs.Bool("quiet", false, "Print only the channel that delivered")
	positionals, err := parseInterspersedFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positionals) != 1 {
		return errors.New("usage: inboxdesk delivery <notification-id> [--format f] [--quiet]")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	res, err := newClient(cfg).Delivery(ctx, positionals[0])
	if err != nil {
		return err
	}
	return printSendResult(res, resolveFormat(*format, cfg), *quiet)
}

func printSendResult(res *client.SendResult, f string, quiet bool) error {
	if res.Notification == nil || (f == "json" && !quiet) {
		fmt.Println(res.Raw)
		return nil
	}
	if f == "plain" && !quiet {
		fmt.Println(view.RenderTimeline(view.BuildTimeline(res.Notification.Attempts), view.PlainStyles()))
		return nil
	}
	return output.Print(os.Stdout, notificationPayload(res.Notification), f, quiet)
}

func cmdInbox(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "clear":
			return cmdInboxClear(args[1:])
		case "delete":
			return cmdInboxDelete(args[1:])
		}
	}

	fs := flag.NewFlagSet("inbox", flag.ContinueOnError)
	query := fs.String("query", "", "Case-insensitive filter on event type")
	format := fs.String("format", "", "Output format: json|table|plain")
	quiet := fs.Bool("quiet", false, "Print only notification ids")
	positionals, err := parseInterspersedFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positionals) != 0 {
		return errors.New("usage: inboxdesk inbox [--query q] [--format f] [--quiet]")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	msgs, err := newClient(cfg).Inbox(ctx)
	if err != nil {
		return err
	}

	v := view.BuildInbox(msgs, *query, time.Now())
	f := resolveFormat(*format, cfg)
	if v.Empty() && !*quiet && f != "json" {
		fmt.Println(view.NoMessages)
		return nil
	}
	return output.Print(os.Stdout, inboxPayload(v), f, *quiet)
}

func cmdInboxClear(args []string) error {
	if len(args) != 0 {
		return errors.New("usage: inboxdesk inbox clear")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	if err := newClient(cfg).ClearInbox(ctx); err != nil {
		return err
	}
	fmt.Println(view.InboxCleared)
	return nil
}

func cmdInboxDelete(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: inboxdesk inbox delete <notification-id>")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	if err := newClient(cfg).Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("moved %s to trash\n", args[0])
	return nil
}

func cmdTrash(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "restore":
			return cmdTrashRestore(args[1:])
		case "empty":
			return cmdTrashEmpty(args[1:])
		}
	}

	fs := flag.NewFlagSet("trash", flag.ContinueOnError)
	format := fs.String("format", "", "Output format: json|table|plain")
	quiet := fs.Bool("quiet", false, "Print only notification ids")
	positionals, err := parseInterspersedFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positionals) != 0 {
		return errors.New("usage: inboxdesk trash [--format f] [--quiet]")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	items, err := newClient(cfg).Trash(ctx)
	if err != nil {
		return err
	}

	f := resolveFormat(*format, cfg)
	if len(items) == 0 && !*quiet && f != "json" {
		fmt.Println(view.TrashEmpty)
		return nil
	}
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, map[string]any{
			"notification_id": it.NotificationID,
			"event_type":      it.EventType,
			"delivered_via":   it.DeliveredVia,
		})
	}
	return output.Print(os.Stdout, map[string]any{"trash": rows}, f, *quiet)
}

func cmdTrashRestore(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: inboxdesk trash restore <notification-id>")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	if err := newClient(cfg).Restore(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Message restored!")
	return nil
}

func cmdTrashEmpty(args []string) error {
	if len(args) != 0 {
		return errors.New("usage: inboxdesk trash empty")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	if err := newClient(cfg).EmptyTrash(ctx); err != nil {
		return err
	}
	fmt.Println("Trash emptied!")
	return nil
}

func cmdTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	logFile := fs.String("log-file", "", "Write debug logs to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	var logger *logrus.Logger
	if *logFile != "" {
		l, closer, err := logging.NewFile(cfg.LogLevel, *logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer closer.Close()
		logger = l
	} else {
		logger = logging.New(cfg.LogLevel, io.Discard)
	}

	cl := client.New(cfg.Server, cfg.RequestTimeout(), client.WithAPIKey(cfg.APIKey), client.WithLogger(logger))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.WithField("server", cfg.Server).Info("starting desk")
	return tui.Run(ctx, tui.New(cl, tui.WithLogger(logger), tui.WithTimeout(cfg.RequestTimeout())))
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.New(cfg.LogLevel, os.Stderr)
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.Server, cfg.RequestTimeout(),
		client.WithAPIKey(cfg.APIKey),
		client.WithLogger(newLogger(cfg)),
	)
}

func resolveFormat(flagValue string, cfg *config.Config) string {
	if strings.TrimSpace(flagValue) != "" {
		return strings.ToLower(strings.TrimSpace(flagValue))
	}
	if cfg.DefaultFormat != "" {
		return cfg.DefaultFormat
	}
	return output.DefaultFormat()
}

func notificationPayload(n *models.Notification) map[string]any {
	summary := view.SummaryOf(*n)
	attempts := make([]map[string]any, 0, len(n.Attempts))
	for _, e := range view.BuildTimeline(n.Attempts) {
		attempts = append(attempts, map[string]any{
			"label":    e.Label,
			"headline": e.Headline(),
			"channel":  e.Channel,
			"status":   e.Status,
			"result":   e.Emphasis.String(),
			"reason":   e.Reason,
		})
	}
	return map[string]any{
		"primary_channel":  summary.PrimaryChannel,
		"retry_score":      summary.RetryScore,
		"retry_percentage": summary.RetryPercentage,
		"attempts":         attempts,
	}
}

func inboxPayload(v view.InboxView) map[string]any {
	rows := make([]map[string]any, 0)
	for _, g := range v.Groups {
		for _, c := range g.Cards {
			rows = append(rows, map[string]any{
				"group":           g.Title,
				"notification_id": c.NotificationID,
				"event_type":      c.EventType,
				"title":           c.Title,
				"date":            c.Date,
			})
		}
	}
	return map[string]any{"inbox": rows}
}

func parseInterspersedFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	positionals := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if idx := strings.Index(name, "="); idx >= 0 {
			name, value, hasValue = name[:idx], name[idx+1:], true
		}

		f := fs.Lookup(name)
		if f == nil {
			return nil, fmt.Errorf("flag provided but not defined: -%s", name)
		}
		if !hasValue {
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				value = "true"
			} else {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("flag needs an argument: -%s", name)
				}
				i++
				value = args[i]
			}
		}
		if err := fs.Set(name, value); err != nil {
			return nil, err
		}
	}
	return positionals, nil
}

func usage() error {
	return errors.New(`usage:
  inboxdesk [tui] [--log-file path]
  inboxdesk connect <url> [--api-key <key>] [--in-dir]
  inboxdesk disconnect
  inboxdesk status
  inboxdesk send [event-type] [--force-fail] [--format f] [--quiet]
  inboxdesk delivery <notification-id> [--format f] [--quiet]
  inboxdesk inbox [--query q] [--format f] [--quiet]
  inboxdesk inbox clear
  inboxdesk inbox delete <notification-id>
  inboxdesk trash [--format f] [--quiet]
  inboxdesk trash restore <notification-id>
  inboxdesk trash empty`)
}
