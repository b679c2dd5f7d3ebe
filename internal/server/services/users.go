package services

import (
	"context"
	"io"
	"strings"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/blobs"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/users"
)

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Name      *string
	Email     *string
	AvatarURL *string
	Password  *string
}

// UserService manages profiles and, for admins, other accounts.
type UserService struct {
	users  users.Repository
	hasher *auth.Hasher
	blobs  blobs.Store
	logger logging.Logger
}

func NewUserService(repo users.Repository, hasher *auth.Hasher, store blobs.Store, logger logging.Logger) *UserService {
	return &UserService{users: repo, hasher: hasher, blobs: store, logger: logger.With("module", "users")}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies upd to userID. A new password goes through the
// hasher like any other password write, and every changed field is stored
// in one repository write.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	var patch users.ProfilePatch

	if upd.Name != nil {
		if err := validateName(*upd.Name); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(*upd.Name)
		patch.Name = &name
	}
	if upd.Email != nil {
		email := common.NormalizeEmail(*upd.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if upd.AvatarURL != nil {
		avatar := strings.TrimSpace(*upd.AvatarURL)
		patch.AvatarURL = &avatar
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(ctx, *upd.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if patch.PasswordHash != nil {
		s.logger.Info(ctx, "password changed", "user_id", userID)
	}
	return updated, nil
}

// SetAvatar stores an uploaded image for targetID and records its URL. Users
// may change their own avatar; admins anyone's. Only the avatar URL is
// written back.
func (s *UserService) SetAvatar(ctx context.Context, actor models.Principal, targetID, filename, contentType string, body io.Reader) (string, error) {
	if actor.UserID != targetID {
		if err := Authorize(actor, models.RoleAdmin); err != nil {
			return "", err
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", validationError("avatar must be an image")
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return "", err
	}

	url, err := s.blobs.Put(ctx, blobs.AvatarKey(targetID, filename), contentType, body)
	if err != nil {
		return "", err
	}

	if _, err := s.users.UpdateProfile(ctx, targetID, users.ProfilePatch{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// Delete removes account id. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if actor.UserID == id {
		return validationError("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id, "by", actor.UserID)
	return nil
}

// SetRole changes the role of id.
func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, validationError("unknown role %q", role)
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "role changed", "user_id", id, "role", string(role))
	return user, nil
}
