package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope result codes.
const (
	CodeOK    = 0
	CodeError = 1
)

// Envelope is the JSON body every CRM endpoint answers with.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a 200 success envelope carrying data.
func WriteOK(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{
		Code:      CodeOK,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// WriteFail writes an error envelope with the given HTTP status.
func WriteFail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{
		Code:      CodeError,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
