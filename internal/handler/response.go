package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type apiError struct {
	Code   int               `json:"code"`
	Status string            `json:"status"`
	Fields map[string]string `json:"fields,omitempty"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, apiResponse{
			Status:  "error",
			Message: "",
			Data:    payload,
			Error: &apiError{
				Code:   status,
				Status: http.StatusText(status),
			},
		})
		return
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "ok",
		Message: "",
		Data:    payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeServiceError converts a service failure kind into a response. Field
// detail maps ride along on validation failures.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusOfKind(service.KindOf(err))
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: service.MessageOf(err),
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
			Fields: service.FieldsOf(err),
		},
	})
}

func int64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func statusOfKind(kind service.FailureKind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case service.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case service.KindAlreadyClaimed:
		return http.StatusConflict
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
