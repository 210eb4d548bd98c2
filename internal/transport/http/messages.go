package http

import (
	"encoding/json"
	"log"
	"net/http"

	"quiz-report-service/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Choice *int `json:"choice"`
}

type sendPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createSessionPayload struct {
	BankID string `json:"bankId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type statusPayload struct {
	Message string `json:"message"`
}

type scorePayload struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func newErrorPayload(err error) errorPayload {
	kind := domain.ErrorKind(err)
	if kind == "internal" {
		log.Printf("request failed: %v", err)
		return errorPayload{Message: "request failed", Kind: kind}
	}
	return errorPayload{Message: err.Error(), Kind: kind}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch domain.ErrorKind(err) {
	case "not_found":
		return http.StatusNotFound
	case "precondition":
		return http.StatusConflict
	case "validation":
		return http.StatusBadRequest
	case "dispatch":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), newErrorPayload(err))
}
