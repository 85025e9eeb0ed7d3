package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mzhyrko/accounts-be/internal/services"
	"github.com/rs/zerolog/log"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeMessage sends a plain {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError is the single place service errors are translated into HTTP
// responses. Every sentinel from the services package has a mapping here;
// anything unexpected becomes a 500 with a generic body and a logged cause.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmailInUse):
		writeMessage(w, http.StatusConflict, "Email in use")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Email or password invalid")
	case errors.Is(err, services.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, services.ErrInvalidSubscription):
		writeMessage(w, http.StatusBadRequest, "Invalid subscription value")
	case errors.Is(err, services.ErrBadImage):
		writeMessage(w, http.StatusBadRequest, "Uploaded file is not a valid image")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
