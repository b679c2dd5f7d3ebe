package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Client calls the Authenticator service on behalf of another service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to the Authenticator at target. Extra dial options are
// appended to the defaults (plaintext transport, JSON codec).
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial error: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerPrefix+token)
}

// mapStatus converts service status codes back into common errors.
func mapStatus(err error) error {
	switch status.Code(err) {
	case codes.OK:
		return nil
	case codes.Unauthenticated:
		return common.ErrUnauthenticated
	case codes.PermissionDenied:
		return common.ErrForbidden
	default:
		return fmt.Errorf("grpc error: %w", err)
	}
}

func (c *Client) Ping(ctx context.Context) error {
	var out PingResponse
	return mapStatus(c.conn.Invoke(ctx, methodPing, &PingRequest{}, &out))
}

// Introspect returns the principal behind token.
func (c *Client) Introspect(ctx context.Context, token string) (models.Principal, error) {
	var out PrincipalResponse
	if err := c.conn.Invoke(withToken(ctx, token), methodIntrospect, &IntrospectRequest{}, &out); err != nil {
		return models.Principal{}, mapStatus(err)
	}
	return models.Principal{UserID: out.UserID, Name: out.Name, Email: out.Email, Role: models.Role(out.Role)}, nil
}

// Authorize succeeds when the holder of token has one of roles.
func (c *Client) Authorize(ctx context.Context, token string, roles ...models.Role) error {
	req := &AuthorizeRequest{Roles: make([]string, 0, len(roles))}
	for _, r := range roles {
		req.Roles = append(req.Roles, string(r))
	}
	var out AuthorizeResponse
	return mapStatus(c.conn.Invoke(withToken(ctx, token), methodAuthorize, req, &out))
}
