package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName = "culturehub.auth.v1.Authenticator"

	methodPing       = "/" + serviceName + "/Ping"
	methodIntrospect = "/" + serviceName + "/Introspect"
	methodAuthorize  = "/" + serviceName + "/Authorize"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type IntrospectRequest struct{}

// PrincipalResponse describes the caller behind a bearer token.
type PrincipalResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type AuthorizeRequest struct {
	Roles []string `json:"roles"`
}

type AuthorizeResponse struct {
	Allowed bool `json:"allowed"`
}

// AuthenticatorServer lets collaborator services check bearer tokens without
// holding the signing secret.
type AuthenticatorServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Introspect(context.Context, *IntrospectRequest) (*PrincipalResponse, error)
	Authorize(context.Context, *AuthorizeRequest) (*AuthorizeResponse, error)
}

func unaryHandler[Req any](call func(srv AuthenticatorServer, ctx context.Context, req *Req) (any, error), fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthenticatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthenticatorServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var authenticatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AuthenticatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unaryHandler(func(s AuthenticatorServer, ctx context.Context, r *PingRequest) (any, error) {
				return s.Ping(ctx, r)
			}, methodPing),
		},
		{
			MethodName: "Introspect",
			Handler: unaryHandler(func(s AuthenticatorServer, ctx context.Context, r *IntrospectRequest) (any, error) {
				return s.Introspect(ctx, r)
			}, methodIntrospect),
		},
		{
			MethodName: "Authorize",
			Handler: unaryHandler(func(s AuthenticatorServer, ctx context.Context, r *AuthorizeRequest) (any, error) {
				return s.Authorize(ctx, r)
			}, methodAuthorize),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "culturehub/auth/v1/authenticator",
}

// RegisterAuthenticatorServer attaches srv to s.
func RegisterAuthenticatorServer(s grpc.ServiceRegistrar, srv AuthenticatorServer) {
	s.RegisterService(&authenticatorServiceDesc, srv)
}
