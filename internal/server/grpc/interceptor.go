package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicMethods skip authentication.
var publicMethods = map[string]bool{
	methodPing: true,
}

func principalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			token = common.BearerToken(values[0])
		}
	}

	p, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		if common.IsAuthError(err) || errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "not authorized")
		}
		s.logger.Error(ctx, "authentication failed", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(context.WithValue(ctx, principalKey, p), req)
}
