package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/mobcsv/internal/core"
	"github.com/JonMunkholm/mobcsv/internal/logging"
	"github.com/JonMunkholm/mobcsv/internal/web/templates"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// statusFor picks an HTTP status from the mapped error code.
func statusFor(msg core.UserMessage) int {
	switch {
	case msg.Code == "FILE004":
		return http.StatusRequestEntityTooLarge
	case msg.Code == "RUN002":
		return http.StatusGatewayTimeout
	case msg.Code == "RUN004":
		return http.StatusServiceUnavailable
	case msg.Code == "RUN003", msg.Code == "FILE005", msg.Code == "FILE006":
		return http.StatusBadRequest
	case strings.HasPrefix(msg.Code, "ROW"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the request ID and writes the mapped user
// message as JSON, an HTML page for browsers, or plain text.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(msg)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	switch {
	case wantsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   err.Error(),
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
			Line:    core.LineOf(err),
		})
	case wantsHTML(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(msg.Message+": "+err.Error(), msg.Action, msg.Code).Render(r.Context(), w)
	default:
		http.Error(w, core.FormatUserError(err)+"\n"+err.Error(), status)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// wantsHTML checks if the request came from a browser form.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// writeJSON encodes v as JSON and writes it to w with status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
