package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/logging"
)

const (
	msgInternal          = "internal server error"
	msgNotAuthorized     = "not authorized"
	msgAccessDenied      = "access denied"
	msgEmailTaken        = "user with this email already exists"
	msgBadCredentials    = "invalid email or password"
	msgBadOldPassword    = "invalid old password"
	msgInvalidResetToken = "invalid or expired password reset token"
	msgNotFound          = "not found"
	msgUserNotFound      = "user not found"
	msgInvalidBody       = "invalid request body"
)

type errorResponse struct {
	Message string `json:"message"`
}

// httpError is a status and client-facing message for err. Internal detail
// never reaches the message.
func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadCredentials
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, msgAccessDenied
	case common.IsAuthError(err):
		return http.StatusUnauthorized, msgNotAuthorized
	case errors.Is(err, common.ErrInvalidOrExpiredResetToken):
		return http.StatusBadRequest, msgInvalidResetToken
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// validationMessage strips the sentinel prefix from "validation error: <detail>".
func validationMessage(err error) string {
	msg := err.Error()
	prefix := common.ErrorValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return common.ErrorValidation.Error()
}

func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	status, msg := httpError(err)
	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "error", err)
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}
