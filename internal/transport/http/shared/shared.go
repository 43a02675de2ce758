// Package shared holds the JSON envelope helpers every handler uses.
// Keeping error translation here ensures consistent envelopes across
// bounded contexts.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "canvass/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope. Fields carries per-question
// validation messages when present.
type ErrorBody struct {
	Error       string              `json:"error"`
	Reason      string              `json:"reason,omitempty"`
	Description string              `json:"error_description,omitempty"`
	Fields      map[string][]string `json:"fields,omitempty"`
}

// FieldReporter is implemented by errors carrying per-field messages.
type FieldReporter interface {
	error
	FieldFailures() map[string][]string
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP envelope. Non-coded
// errors become opaque 500s; internal messages never leak.
func WriteError(w http.ResponseWriter, err error) {
	body := ErrorBody{Error: string(dErrors.CodeInternal), Description: "internal error"}
	status := http.StatusInternalServerError

	var de *dErrors.Error
	if errors.As(err, &de) {
		status = dErrors.ToHTTPStatus(de.Code)
		body.Error = string(de.Code)
		body.Reason = de.Reason
		body.Description = de.Message
		if de.Code == dErrors.CodeInternal {
			body.Description = "internal error"
		}
	}

	var fields FieldReporter
	if errors.As(err, &fields) {
		body.Fields = fields.FieldFailures()
	}

	WriteJSON(w, status, body)
}
