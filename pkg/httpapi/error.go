package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// ErrorEnvelope is the body of every JSON error response.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteRequestError answers with the request id echoed in the meta block.
func WriteRequestError(w http.ResponseWriter, r *http.Request, status int, code, message string) error {
	meta := map[string]string{"path": r.URL.Path}
	if id := w.Header().Get(RequestIDHeader); id != "" {
		meta["request_id"] = id
	}
	return WriteError(w, status, code, message, meta)
}

const RequestIDHeader = "X-Request-Id"
