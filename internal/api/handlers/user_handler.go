package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mzhyrko/accounts-be/internal/auth"
	"github.com/mzhyrko/accounts-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	users   services.UserServiceProvider
	avatars services.AvatarServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, avatars services.AvatarServiceProvider) *UserHandler {
	return &UserHandler{users: users, avatars: avatars}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Subscription string `json:"subscription"`
}

// userProfile is the sanitized projection returned to clients.
type userProfile struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	AvatarURL    string `json:"avatarURL,omitempty"`
}

// Register handles new account registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" || payload.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(payload.Email, payload.Password, payload.Subscription)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user": userProfile{
			Email:        user.Email,
			Subscription: user.Subscription,
			AvatarURL:    user.AvatarURL,
		},
	})
}

// Login handles credential verification and session token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.users.Login(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": userProfile{
			Email:        user.Email,
			Subscription: user.Subscription,
		},
	})
}

// Current returns the account resolved by the authorization gate.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	writeJSON(w, http.StatusOK, userProfile{
		Email:        user.Email,
		Subscription: user.Subscription,
	})
}

// Logout clears the authenticated account's active session token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.users.Logout(user.ID); err != nil {
		// The account vanished between the gate and here; treat it the
		// same as any other failed authorization.
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to log out user")
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateSubscription handles the administrative plan change for an account.
func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload struct {
		Subscription string `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdateSubscription(id, payload.Subscription)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to update subscription")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateAvatar ingests an uploaded image as the account's new avatar.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad Request - File not provided")
		return
	}
	defer file.Close()

	avatarURL, err := h.avatars.Ingest(user.ID, header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to ingest avatar")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarURL": avatarURL})
}
