package server

import (
	"encoding/json"
	"net/http"
)

// envelope is the response shape shared by admin and error responses.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Status:     statusLabel(status),
		Message:    message,
		Data:       data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Status:     "error",
		Message:    message,
	})
}

func statusLabel(status int) string {
	if status >= 200 && status < 300 {
		return "success"
	}
	return "error"
}
