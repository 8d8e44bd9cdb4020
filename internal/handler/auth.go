package handler

import (
	"log/slog"
	"net/http"

	"github.com/hayato-dev/discussboard/internal/service"
)

// AuthHandler serves the /api/auth endpoints.
//
// There is no session or token model: login returns the account summary and
// the client sends account ids on later requests. Mutating endpoints trust
// the supplied id.
type AuthHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAuthHandler(accounts *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// HandleCheckUsername reports whether a username is still free.
//
// HTTP: GET /api/auth/check-username?username=alice
// Response: {"available": true}
func (h *AuthHandler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	available, err := h.accounts.CheckUsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// Body: {"username": "...", "password": "...", "displayName"?, "avatarUrl"?}
// Response: {"id": 1, "username": "...", "displayName": "...", "avatarUrl": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.accounts.Register(r.Context(), req.Username, req.Password, req.DisplayName, req.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns the account summary.
// Bad credentials get a 401 with no detail about which part was wrong.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type updateProfileRequest struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// HandleUpdateProfile overwrites the display name and avatar URL.
//
// HTTP: POST /api/auth/update
// Response: {"id": 1, "displayName": "...", "avatarUrl": "..."}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.accounts.UpdateProfile(r.Context(), req.ID, req.DisplayName, req.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          summary.ID,
		"displayName": summary.DisplayName,
		"avatarUrl":   summary.AvatarURL,
	})
}

type changePasswordRequest struct {
	ID              int64  `json:"id"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword verifies the current password and stores a new hash.
//
// HTTP: POST /api/auth/change-password
// Response: {"message": "password updated"}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), req.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
