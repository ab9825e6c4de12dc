package authapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestLoginResponse_ProtobufEncoding(t *testing.T) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(
		marshalWire(&LoginResponse{AccessToken: "tok", Username: "al"}))
	require.NoError(t, err)

	// field 1 (access_token), field 2 (username), both length-delimited
	assert.Equal(t, []byte{0x0a, 3, 't', 'o', 'k', 0x12, 2, 'a', 'l'}, b)

	m := newMessage("LoginResponse")
	require.NoError(t, proto.Unmarshal(b, m))
	var got LoginResponse
	got.fromProto(m)
	assert.Equal(t, LoginResponse{AccessToken: "tok", Username: "al"}, got)
}

func TestDefaultsStayOffTheWire(t *testing.T) {
	for _, msg := range []wireMessage{
		&RegisterRequest{},
		&LoginResponse{},
		&LogoutRequest{},
		&ListUsersResponse{},
		&UsernameExistsResponse{},
	} {
		b, err := proto.Marshal(marshalWire(msg))
		require.NoError(t, err)
		assert.Empty(t, b, "%s", msg.messageName())
	}
}

func TestListUsersResponse_KeepsOrder(t *testing.T) {
	b, err := proto.Marshal(marshalWire(&ListUsersResponse{Usernames: []string{"carol", "alice", "bob"}}))
	require.NoError(t, err)

	m := newMessage("ListUsersResponse")
	require.NoError(t, proto.Unmarshal(b, m))
	var got ListUsersResponse
	got.fromProto(m)
	assert.Equal(t, []string{"carol", "alice", "bob"}, got.Usernames)
}

func TestServiceDescMatchesDescriptor(t *testing.T) {
	svc := authorityFile.Services().ByName("Authority")
	require.NotNil(t, svc)
	assert.Equal(t, protoreflect.FullName(ServiceName), svc.FullName())
	require.Equal(t, svc.Methods().Len(), len(Authority_ServiceDesc.Methods))

	for _, m := range Authority_ServiceDesc.Methods {
		md := svc.Methods().ByName(protoreflect.Name(m.MethodName))
		require.NotNil(t, md, m.MethodName)
		assert.Equal(t, protoreflect.Name(m.MethodName+"Request"), md.Input().Name())
		assert.Equal(t, protoreflect.Name(m.MethodName+"Response"), md.Output().Name())
	}
}
