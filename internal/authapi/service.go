// Package authapi is the wire contract of the credential authority: the
// protobuf messages and gRPC service, its server registration and a typed
// client.
package authapi

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophchat.authority.Authority"

const (
	Authority_Register_FullMethodName  = "/" + ServiceName + "/Register"
	Authority_Login_FullMethodName     = "/" + ServiceName + "/Login"
	Authority_Verify_FullMethodName    = "/" + ServiceName + "/Verify"
	Authority_Logout_FullMethodName    = "/" + ServiceName + "/Logout"
	Authority_ListUsers_FullMethodName = "/" + ServiceName + "/ListUsers"

	Authority_UsernameExists_FullMethodName = "/" + ServiceName + "/UsernameExists"
)

// AuthorityServer is implemented by the authority's gRPC handlers.
type AuthorityServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Verify(context.Context, *VerifyRequest) (*VerifyResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	UsernameExists(context.Context, *UsernameExistsRequest) (*UsernameExistsResponse, error)
}

func RegisterAuthorityServer(s grpc.ServiceRegistrar, srv AuthorityServer) {
	s.RegisterService(&Authority_ServiceDesc, srv)
}

// unaryHandler adapts one typed AuthorityServer method to grpc.MethodHandler.
// The request is decoded from its protobuf form before interceptors run and
// the response is encoded after them.
func unaryHandler[Req any, PReq interface {
	*Req
	wireMessage
}, Resp any, PResp interface {
	*Resp
	wireMessage
}](fullMethod string, call func(AuthorityServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		wire := newMessage(in.messageName())
		if err := dec(wire); err != nil {
			return nil, err
		}
		in.fromProto(wire)

		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(srv.(AuthorityServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			if resp == nil {
				resp = new(Resp)
			}
			return marshalWire(PResp(resp)), nil
		}
		if interceptor == nil {
			return handler(ctx, (*Req)(in))
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		return interceptor(ctx, (*Req)(in), info, handler)
	}
}

var Authority_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthorityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(Authority_Register_FullMethodName, AuthorityServer.Register),
		},
		{
			MethodName: "Login",
			Handler:    unaryHandler(Authority_Login_FullMethodName, AuthorityServer.Login),
		},
		{
			MethodName: "Verify",
			Handler:    unaryHandler(Authority_Verify_FullMethodName, AuthorityServer.Verify),
		},
		{
			MethodName: "Logout",
			Handler:    unaryHandler(Authority_Logout_FullMethodName, AuthorityServer.Logout),
		},
		{
			MethodName: "ListUsers",
			Handler:    unaryHandler(Authority_ListUsers_FullMethodName, AuthorityServer.ListUsers),
		},
		{
			MethodName: "UsernameExists",
			Handler:    unaryHandler(Authority_UsernameExists_FullMethodName, AuthorityServer.UsernameExists),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}
