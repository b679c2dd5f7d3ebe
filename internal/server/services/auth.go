// Package services contains the server-side business logic: the auth gateway
// (registration, login, password changes and request guards), the password
// reset flow and user management.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/users"
	"github.com/google/uuid"
)

// AuthService orchestrates the credential store, the password hasher and the
// token issuer.
type AuthService struct {
	users  users.Repository
	hasher *auth.Hasher
	tokens *auth.TokenIssuer
	logger logging.Logger
	newID  func() string
}

func NewAuthService(repo users.Repository, hasher *auth.Hasher, tokens *auth.TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		users:  repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("module", "auth"),
		newID:  uuid.NewString,
	}
}

// Register creates an account with role "user".
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.CreateUser(ctx, name, email, password, models.RoleUser)
}

// CreateUser creates an account with the given role. Duplicate emails are
// reported by the store as common.ErrorAlreadyExists.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	email = common.NormalizeEmail(email)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validationError("unknown role %q", role)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Login checks credentials and returns the user and a fresh bearer token.
// Unknown email and wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if err := s.hasher.VerifyDummy(ctx, password); err != nil {
				return nil, "", err
			}
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error reading user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}
	return user, token, nil
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(ctx, oldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// Authenticate verifies a bearer token and re-reads its user, so deleted
// accounts and role changes take effect immediately.
//
// Errors: common.ErrMissingToken, the token verifier errors, or
// common.ErrorNotFound when the user no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, common.ErrMissingToken
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.Principal{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Principal{}, err
	}
	return user.Principal(), nil
}

// Authorize allows p when its role is among roles. It never touches storage.
func Authorize(p models.Principal, roles ...models.Role) error {
	if slices.Contains(roles, p.Role) {
		return nil
	}
	return common.ErrForbidden
}
