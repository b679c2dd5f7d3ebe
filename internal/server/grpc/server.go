// Package grpc exposes token introspection to collaborator services. Messages
// travel as JSON via a registered codec, so callers set the "json"
// content-subtype (see Client).
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Authenticator turns a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

type GRPCServer struct {
	address string
	auth    Authenticator
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "ok"}, nil
}

func (s *GRPCServer) Introspect(ctx context.Context, _ *IntrospectRequest) (*PrincipalResponse, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authorized")
	}
	return &PrincipalResponse{UserID: p.UserID, Name: p.Name, Email: p.Email, Role: string(p.Role)}, nil
}

func (s *GRPCServer) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authorized")
	}

	roles := make([]models.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		roles = append(roles, models.Role(r))
	}
	if err := services.Authorize(p, roles...); err != nil {
		return nil, status.Error(codes.PermissionDenied, "access denied")
	}
	return &AuthorizeResponse{Allowed: true}, nil
}

// NewServer builds the grpc.Server with the auth interceptor and the service
// registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterAuthenticatorServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
