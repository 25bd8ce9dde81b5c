package server

import (
	"log"
	"net/http"

	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
	}
}

// Signup starts account creation and sends a verification code.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if !decodeAndValidate(w, r, &req, req.Validate) {
		return
	}

	resp, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		serviceErrorResponse(w, "auth", err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// Verify confirms a pending signup and signs the new account in.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if !decodeAndValidate(w, r, &req, req.Validate) {
		return
	}

	user, err := h.userService.Verify(r.Context(), &req)
	if err != nil {
		serviceErrorResponse(w, "auth", err)
		return
	}
	h.issueToken(w, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decodeAndValidate(w, r, &req, req.Validate) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		serviceErrorResponse(w, "auth", err)
		return
	}
	h.issueToken(w, http.StatusOK, user)
}

// UpdatePassword changes the authenticated user's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if !decodeAndValidate(w, r, &req, req.Validate) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		serviceErrorResponse(w, "auth", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, status int, user *types.User) {
	token, _, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("[auth] failed to generate token for %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, status, types.LoginResponse{User: user, Token: token})
}
