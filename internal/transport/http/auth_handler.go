package http

import (
	"net/http"
	"strings"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/service"
)

type AuthHandler struct {
	Auth  service.AuthService
	Users service.UserService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.Login(r.Context(), strings.TrimSpace(req.Identifier), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	var req dto.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.Logout(r.Context(), req.AccessToken, req.RefreshToken, caller.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	view, err := h.Users.GetUser(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	var req dto.VerifyAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Auth.VerifyAccount(r.Context(), caller.UserID, req.Code, req.Channel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserView(user))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), caller.UserID, req.Code, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), caller.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckPrivilege answers whether the caller's active role holds every
// requested action.
func (h *AuthHandler) CheckPrivilege(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	if caller.RoleID == nil {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	var req dto.CheckPrivilegeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	check, err := h.Auth.CheckPrivilege(r.Context(), *caller.RoleID, req.Actions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}
