package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	AvatarURL string      `json:"avatarUrl,omitempty"`
}

type loginResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Token string      `json:"token"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, AvatarURL: u.AvatarURL}
}

const (
	msgResetSent     = "password reset link sent to your email"
	msgResetDone     = "password has been reset"
	msgPasswordSaved = "password updated"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	err := s.reset.SendResetLink(r.Context(), req.Email)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound) && s.uniformReset:
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	default:
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, msgResetSent)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.reset.ConsumeReset(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, msgResetDone)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request, p models.Principal) {
	var req updatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	err := s.auth.ChangePassword(r.Context(), p.UserID, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, msgBadOldPassword)
		return
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	default:
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, msgPasswordSaved)
}
