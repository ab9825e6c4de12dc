package authapi

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the authority over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithAccessToken attaches token as access_token metadata for guarded calls.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func invoke[Resp any, PResp interface {
	*Resp
	wireMessage
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in wireMessage, opts []grpc.CallOption) (*Resp, error) {
	out := PResp(new(Resp))
	reply := newMessage(out.messageName())
	if err := cc.Invoke(ctx, method, marshalWire(in), reply, opts...); err != nil {
		return nil, err
	}
	out.fromProto(reply)
	return (*Resp)(out), nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, Authority_Register_FullMethodName, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, Authority_Login_FullMethodName, in, opts)
}

func (c *Client) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	return invoke[VerifyResponse](ctx, c.cc, Authority_Verify_FullMethodName, in, opts)
}

// Logout expects the token in ctx, see WithAccessToken.
func (c *Client) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, Authority_Logout_FullMethodName, in, opts)
}

func (c *Client) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, Authority_ListUsers_FullMethodName, in, opts)
}

func (c *Client) UsernameExists(ctx context.Context, in *UsernameExistsRequest, opts ...grpc.CallOption) (*UsernameExistsResponse, error) {
	return invoke[UsernameExistsResponse](ctx, c.cc, Authority_UsernameExists_FullMethodName, in, opts)
}
