package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxAvatarBytes = 5 << 20
	msgUserDeleted = "user deleted"
)

type updateProfileRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
	Password  *string `json:"password"`
}

type setRoleRequest struct {
	Role models.Role `json:"role"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// userError reports a missing user as "user not found" and falls back to the
// common mapping otherwise.
func (s *Server) userError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	writeError(r.Context(), w, s.logger, err)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, p models.Principal) {
	user, err := s.users.Profile(r.Context(), p.UserID)
	if err != nil {
		s.userError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, p models.Principal) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), p.UserID, services.ProfileUpdate{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Password:  req.Password,
	})
	if err != nil {
		s.userError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request, p models.Principal) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "avatar upload must be multipart form data under 5MB")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := s.users.SetAvatar(r.Context(), p, chi.URLParam(r, "id"), header.Filename, contentType, file)
	if err != nil {
		s.userError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{AvatarURL: url})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ models.Principal) {
	list, err := s.users.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	result := make([]userResponse, 0, len(list))
	for _, u := range list {
		result = append(result, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, p models.Principal) {
	if err := s.users.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		s.userError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msgUserDeleted)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request, _ models.Principal) {
	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		s.userError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
