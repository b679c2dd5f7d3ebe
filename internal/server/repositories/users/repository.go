// Package users contains the credential store: the Repository contract and
// its PostgreSQL, MongoDB and in-memory implementations.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/server/models"
)

// ProfilePatch lists the account fields a profile edit changes. Nil fields
// are left as stored.
type ProfilePatch struct {
	Name         *string
	Email        *string
	AvatarURL    *string
	PasswordHash *string
}

// Repository persists user accounts.
//
// Implementations enforce email uniqueness themselves and report a clash as
// common.ErrorAlreadyExists; lookups that match nothing return
// common.ErrorNotFound. Emails are stored as given, callers normalize them.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	// UpdateProfile applies the non-nil fields of patch to user id in a single
	// write and returns the stored result.
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error

	// SetResetToken stores a reset digest and expiry, replacing any earlier pair.
	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	// ClearResetToken removes the reset pair of a user.
	ClearResetToken(ctx context.Context, id string) error
	// GetByResetToken returns the user holding tokenHash with an expiry after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	// ConsumeResetToken sets passwordHash and clears the reset pair in one
	// write, but only while tokenHash is still stored and unexpired at now.
	// Of several concurrent calls with the same token at most one succeeds;
	// the rest get common.ErrorNotFound.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error)
}
