package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForUser renders an error for the terminal, with its hint and code.
// Plain errors get only the "Error: " prefix.
func FormatForUser(err error) string {
	if err == nil {
		return ""
	}

	le, ok := As(err)
	if !ok {
		return "Error: " + err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", le.Message)
	if le.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", le.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s", le.Code)
	return sb.String()
}

type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns the JSON form of an error. Plain errors are reported
// as internal errors.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	le, ok := As(err)
	if !ok {
		le = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       le.Code,
		Message:    le.Message,
		Category:   string(le.Category),
		Severity:   string(le.Severity),
		Details:    le.Details,
		Suggestion: le.Suggestion,
	}
	if le.Cause != nil {
		je.Cause = le.Cause.Error()
	}
	return json.Marshal(je)
}

// LogAttrs returns slog attributes describing err, details sorted by key.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	le, ok := As(err)
	if !ok {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", le.Code),
		slog.String("message", le.Message),
		slog.String("category", string(le.Category)),
	}
	if le.Cause != nil {
		attrs = append(attrs, slog.String("cause", le.Cause.Error()))
	}

	keys := make([]string, 0, len(le.Details))
	for k := range le.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, le.Details[k]))
	}
	return attrs
}
