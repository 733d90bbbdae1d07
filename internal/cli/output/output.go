package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

// Print renders payload in the given format. Payloads are keyed the way the
// delivery service keys them: "inbox", "trash", "attempts" or a bare
// object with "status".
func Print(w io.Writer, payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(w, payload)
	case "table":
		return printTable(w, payload)
	case "plain":
		return printPlain(w, payload)
	case "quiet":
		return printQuiet(w, payload)
	default:
		return errors.New("invalid --format value")
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, payload map[string]any) error {
	switch {
	case hasKey(payload, "inbox"):
		fmt.Fprintln(w, "GROUP\tID\tEVENT\tDELIVERED")
		for _, row := range toObjectSlice(payload["inbox"]) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				str(row["group"]), str(row["notification_id"]), str(row["event_type"]), str(row["date"]))
		}
	case hasKey(payload, "trash"):
		fmt.Fprintln(w, "ID\tEVENT\tDELIVERED_VIA")
		for _, row := range toObjectSlice(payload["trash"]) {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				str(row["notification_id"]), str(row["event_type"]), str(row["delivered_via"]))
		}
	case hasKey(payload, "attempts"):
		fmt.Fprintf(w, "PRIMARY\t%s\nRETRY_SCORE\t%s\nRETRY_CHANCE\t%s\n\n",
			str(payload["primary_channel"]), str(payload["retry_score"]), str(payload["retry_percentage"]))
		fmt.Fprintln(w, "#\tCHANNEL\tSTATUS\tRESULT\tREASON")
		for i, row := range toObjectSlice(payload["attempts"]) {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				i+1, str(row["channel"]), str(row["status"]), str(row["result"]), str(row["reason"]))
		}
	default:
		return printJSON(w, payload)
	}
	return nil
}

func printPlain(w io.Writer, payload map[string]any) error {
	switch {
	case hasKey(payload, "inbox"):
		for _, row := range toObjectSlice(payload["inbox"]) {
			fmt.Fprintf(w, "%s %s %s\n", str(row["notification_id"]), str(row["event_type"]), str(row["date"]))
		}
	case hasKey(payload, "trash"):
		for _, row := range toObjectSlice(payload["trash"]) {
			fmt.Fprintf(w, "%s %s via=%s\n", str(row["notification_id"]), str(row["event_type"]), str(row["delivered_via"]))
		}
	case hasKey(payload, "attempts"):
		for _, row := range toObjectSlice(payload["attempts"]) {
			fmt.Fprintln(w, str(row["headline"]))
			if reason := str(row["reason"]); reason != "" {
				fmt.Fprintln(w, reason)
			}
		}
	case hasKey(payload, "status"):
		fmt.Fprintln(w, str(payload["status"]))
	default:
		return printJSON(w, payload)
	}
	return nil
}

func printQuiet(w io.Writer, payload map[string]any) error {
	switch {
	case hasKey(payload, "inbox"):
		for _, row := range toObjectSlice(payload["inbox"]) {
			fmt.Fprintln(w, str(row["notification_id"]))
		}
	case hasKey(payload, "trash"):
		for _, row := range toObjectSlice(payload["trash"]) {
			fmt.Fprintln(w, str(row["notification_id"]))
		}
	case hasKey(payload, "attempts"):
		// The channel that finally took the message.
		attempts := toObjectSlice(payload["attempts"])
		for i := len(attempts) - 1; i >= 0; i-- {
			if strings.EqualFold(str(attempts[i]["status"]), "SUCCESS") {
				fmt.Fprintln(w, str(attempts[i]["channel"]))
				return nil
			}
		}
	case hasKey(payload, "status"):
		fmt.Fprintln(w, str(payload["status"]))
	default:
		return printJSON(w, payload)
	}
	return nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObjectSlice(v any) []map[string]any {
	switch in := v.(type) {
	case []map[string]any:
		return in
	case []any:
		out := make([]map[string]any, 0, len(in))
		for _, item := range in {
			if row, ok := item.(map[string]any); ok {
				out = append(out, row)
			}
		}
		return out
	}
	return nil
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
