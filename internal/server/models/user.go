package models

import "time"

// Role is the authorization class of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a stored account. PasswordHash is only ever produced by the
// password hasher; ResetTokenHash and ResetTokenExpiry are set and cleared
// together.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	AvatarURL        string
	ResetTokenHash   *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
}

// Principal is the authenticated caller attached to a request after the
// bearer token has been verified and the user re-read from the store.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// Principal returns the caller view of u.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
