package auth

import "github.com/dmitrijs2005/culturehub/internal/common"

// resetTokenBytes is the entropy of a password reset token (hex-encoded
// to twice as many characters).
const resetTokenBytes = 20

// NewResetToken returns a fresh reset token and the digest to store for it.
// The plaintext is only ever mailed to the user.
func NewResetToken() (plaintext, digest string, err error) {
	plaintext, err = common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return "", "", err
	}
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken is the one-way digest under which reset tokens are stored.
func HashResetToken(plaintext string) string {
	return common.SHA256Hex(plaintext)
}
