package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// ErrorOutput is the JSON shape of a failed command.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError writes err for the user.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := describe(err)
	if format == FormatJSON {
		return writeJSON(w, ErrorOutput{Error: detail})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", detail.Message)
	if detail.Cause != "" {
		fmt.Fprintf(&sb, "  cause: %s\n", detail.Cause)
	}
	if len(detail.Details) > 0 {
		keys := make([]string, 0, len(detail.Details))
		for k := range detail.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, detail.Details[k])
		}
	}
	if detail.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", detail.Suggestion)
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

func describe(err error) ErrorDetail {
	var de *dropperr.DropError
	if !errors.As(err, &de) {
		return ErrorDetail{Code: "GENERAL_ERROR", Message: err.Error(), ExitCode: dropperr.ExitGeneral}
	}

	detail := ErrorDetail{
		Code:       de.Code,
		Message:    de.Message,
		Details:    de.Details,
		Suggestion: de.Suggestion,
		ExitCode:   de.ExitCode,
	}
	if de.Cause != nil {
		detail.Cause = de.Cause.Error()
	}
	return detail
}
