// Package shared holds the response envelope helpers used by every handler.
//
// The wire contract is fixed by the kiosk and mobile clients: every JSON
// endpoint answers HTTP 200 with {"Status":1,...} for success, {"Status":0,
// "Message":...} for handled failures and {"Status":-1,...} for unexpected
// errors. HTTP status codes are not part of the contract.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "visitgate/pkg/domain-errors"
)

const (
	StatusOK         = 1
	StatusFailed     = 0
	StatusUnexpected = -1
)

// Fields are the extra top-level keys of an envelope.
type Fields map[string]any

// Write sends one envelope. Extra fields are merged beside Status and
// Message; a "Status" or "Message" key in extra is ignored.
func Write(w http.ResponseWriter, status int, message string, extra Fields) {
	payload := make(map[string]any, len(extra)+2)
	for key, value := range extra {
		payload[key] = value
	}
	payload["Status"] = status
	payload["Message"] = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteOK sends a Status 1 envelope.
func WriteOK(w http.ResponseWriter, message string, extra Fields) {
	Write(w, StatusOK, message, extra)
}

// WriteError maps a service error onto the envelope. Coded errors are
// handled failures (Status 0) carrying their message; anything else is
// reported as unexpected (Status -1) without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	if code == "" || code == dErrors.CodeInternal {
		Write(w, StatusUnexpected, "Internal Server Error", nil)
		return
	}
	Write(w, StatusFailed, dErrors.MessageOf(err), nil)
}
