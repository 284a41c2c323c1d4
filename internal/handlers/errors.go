package handlers

import (
	"net/http"
	"time"

	"github.com/JNickson/cluster-health-api/internal/utils"
)

const (
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound         = "NOT_FOUND"
)

type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	utils.WriteJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
		Timestamp: utils.Now(),
	})
}
