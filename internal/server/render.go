package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodshare/pkg/types"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON renders body with "success": true merged in.
func (s *Service) writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	if body == nil {
		body = map[string]any{}
	}
	body["success"] = true
	s.encode(w, status, body)
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.encode(w, status, errorResponse{Error: msg})
}

func (s *Service) writeFieldErrors(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	s.encode(w, status, errorResponse{Error: msg, Fields: fields})
}

func (s *Service) encode(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// writeStoreError maps repository sentinel errors onto responses. Anything
// unrecognised is logged and reported as a 500.
func (s *Service) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, types.ErrDonationNotFound):
		s.writeError(w, http.StatusNotFound, "Donation not found")
	case errors.Is(err, types.ErrFoodItemNotFound):
		s.writeError(w, http.StatusNotFound, "Food item not found")
	case errors.Is(err, types.ErrAccountNotFound):
		s.writeError(w, http.StatusNotFound, "Donor not found")
	case errors.Is(err, types.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, "Invalid status transition")
	case errors.Is(err, types.ErrDuplicateUsername):
		s.writeFieldErrors(w, http.StatusConflict, "Username already exists", map[string]string{"username": "Username already exists"})
	case errors.Is(err, types.ErrDuplicateEmail):
		s.writeFieldErrors(w, http.StatusConflict, "Email already exists", map[string]string{"email": "Email already exists"})
	default:
		s.logger.WithError(err).Error(msg)
		s.internalServerError(w)
	}
}
