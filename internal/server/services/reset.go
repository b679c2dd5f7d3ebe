package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/mailer"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/users"
)

// ResetService runs the forgot-password flow. Only the digest of a reset
// token is stored; the plaintext leaves the process once, in the email.
type ResetService struct {
	users       users.Repository
	hasher      *auth.Hasher
	sender      mailer.Sender
	logger      logging.Logger
	ttl         time.Duration
	frontendURL string
	now         func() time.Time
}

func NewResetService(repo users.Repository, hasher *auth.Hasher, sender mailer.Sender, logger logging.Logger, ttl time.Duration, frontendURL string) *ResetService {
	return &ResetService{
		users:       repo,
		hasher:      hasher,
		sender:      sender,
		logger:      logger.With("module", "reset"),
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// RequestReset issues a reset token for email, replacing any outstanding one.
// It returns the plaintext token and the user it belongs to.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return "", nil, err
	}

	plaintext, digest, err := auth.NewResetToken()
	if err != nil {
		return "", nil, fmt.Errorf("error generating reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(s.ttl)); err != nil {
		return "", nil, err
	}
	return plaintext, user, nil
}

// ResetURL is the frontend page a reset token is redeemed on.
func (s *ResetService) ResetURL(token string) string {
	return s.frontendURL + "/reset-password/" + token
}

// SendResetLink issues a token for email and mails the reset link. If the
// mail cannot be delivered the token is withdrawn and common.ErrorInternal
// is returned.
func (s *ResetService) SendResetLink(ctx context.Context, email string) error {
	token, user, err := s.RequestReset(ctx, email)
	if err != nil {
		return err
	}

	msg, err := mailer.ResetEmail(user.Email, user.Name, s.ResetURL(token), s.ttl.String())
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Error(ctx, "reset email not delivered", "user_id", user.ID, "error", err)
		if cerr := s.CancelReset(ctx, user.ID); cerr != nil {
			s.logger.Error(ctx, "reset token not withdrawn", "user_id", user.ID, "error", cerr)
		}
		return fmt.Errorf("%w: reset email not delivered", common.ErrorInternal)
	}

	s.logger.Info(ctx, "reset email sent", "user_id", user.ID)
	return nil
}

// CancelReset clears the outstanding reset token of userID.
func (s *ResetService) CancelReset(ctx context.Context, userID string) error {
	return s.users.ClearResetToken(ctx, userID)
}

// ConsumeReset sets newPassword for the holder of token. A token works once
// and only before its expiry; otherwise common.ErrInvalidOrExpiredResetToken.
func (s *ResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	digest := auth.HashResetToken(token)

	// Cheap lookup first so unknown tokens do not cost a bcrypt round.
	if _, err := s.users.GetByResetToken(ctx, digest, s.now()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	user, err := s.users.ConsumeResetToken(ctx, digest, s.now(), hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredResetToken
		}
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
