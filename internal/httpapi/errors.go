package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeUpstream     = "upstream"
	CodeContract     = "contract"
	CodeInternal     = "internal"
)

type Error struct {
	Code    string
	Message string
	Details string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return 400
	case CodeUnauthorized:
		return 401
	case CodeNotFound:
		return 404
	case CodeUpstream:
		return 502
	case CodeContract:
		return 502
	default:
		return 500
	}
}

func newError(code, message, details string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		Status:  statusForCode(code),
	}
}

func NewValidationError(message string) *Error {
	return newError(CodeValidation, message, "")
}

func NewUpstreamError(message string, err error) *Error {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(CodeUpstream, message, details)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the `{ error, details }` failure envelope. Anything
// that is not an *Error renders as an internal error.
func writeError(w http.ResponseWriter, err error) {
	he, ok := err.(*Error)
	if !ok {
		he = newError(CodeInternal, err.Error(), "")
	}
	payload := map[string]any{"error": he.Message}
	if he.Details != "" {
		payload["details"] = he.Details
	}
	writeJSON(w, he.Status, payload)
}
