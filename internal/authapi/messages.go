package authapi

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// wireMessage is implemented by every request and response type. It moves
// the Go fields in and out of the protobuf message of the same name.
type wireMessage interface {
	messageName() protoreflect.Name
	toProto(m protoreflect.Message)
	fromProto(m protoreflect.Message)
}

func marshalWire(v wireMessage) *dynamicpb.Message {
	m := newMessage(v.messageName())
	v.toProto(m)
	return m
}

func fieldOf(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

// setString leaves proto3 defaults unset.
func setString(m protoreflect.Message, name protoreflect.Name, v string) {
	if v != "" {
		m.Set(fieldOf(m, name), protoreflect.ValueOfString(v))
	}
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(fieldOf(m, name)).String()
}

type RegisterRequest struct {
	Username string
	Password string
}

func (*RegisterRequest) messageName() protoreflect.Name { return "RegisterRequest" }

func (r *RegisterRequest) toProto(m protoreflect.Message) {
	setString(m, "username", r.Username)
	setString(m, "password", r.Password)
}

func (r *RegisterRequest) fromProto(m protoreflect.Message) {
	r.Username = getString(m, "username")
	r.Password = getString(m, "password")
}

type RegisterResponse struct {
	Username string
}

func (*RegisterResponse) messageName() protoreflect.Name { return "RegisterResponse" }

func (r *RegisterResponse) toProto(m protoreflect.Message) { setString(m, "username", r.Username) }

func (r *RegisterResponse) fromProto(m protoreflect.Message) { r.Username = getString(m, "username") }

type LoginRequest struct {
	Username string
	Password string
}

func (*LoginRequest) messageName() protoreflect.Name { return "LoginRequest" }

func (r *LoginRequest) toProto(m protoreflect.Message) {
	setString(m, "username", r.Username)
	setString(m, "password", r.Password)
}

func (r *LoginRequest) fromProto(m protoreflect.Message) {
	r.Username = getString(m, "username")
	r.Password = getString(m, "password")
}

type LoginResponse struct {
	AccessToken string
	Username    string
}

func (*LoginResponse) messageName() protoreflect.Name { return "LoginResponse" }

func (r *LoginResponse) toProto(m protoreflect.Message) {
	setString(m, "access_token", r.AccessToken)
	setString(m, "username", r.Username)
}

func (r *LoginResponse) fromProto(m protoreflect.Message) {
	r.AccessToken = getString(m, "access_token")
	r.Username = getString(m, "username")
}

type VerifyRequest struct {
	Token string
}

func (*VerifyRequest) messageName() protoreflect.Name { return "VerifyRequest" }

func (r *VerifyRequest) toProto(m protoreflect.Message) { setString(m, "token", r.Token) }

func (r *VerifyRequest) fromProto(m protoreflect.Message) { r.Token = getString(m, "token") }

type VerifyResponse struct {
	Username string
}

func (*VerifyResponse) messageName() protoreflect.Name { return "VerifyResponse" }

func (r *VerifyResponse) toProto(m protoreflect.Message) { setString(m, "username", r.Username) }

func (r *VerifyResponse) fromProto(m protoreflect.Message) { r.Username = getString(m, "username") }

// LogoutRequest is empty: the token travels in the access_token metadata.
type LogoutRequest struct{}

func (*LogoutRequest) messageName() protoreflect.Name { return "LogoutRequest" }
func (*LogoutRequest) toProto(protoreflect.Message)   {}
func (*LogoutRequest) fromProto(protoreflect.Message) {}

type LogoutResponse struct{}

func (*LogoutResponse) messageName() protoreflect.Name { return "LogoutResponse" }
func (*LogoutResponse) toProto(protoreflect.Message)   {}
func (*LogoutResponse) fromProto(protoreflect.Message) {}

type ListUsersRequest struct{}

func (*ListUsersRequest) messageName() protoreflect.Name { return "ListUsersRequest" }
func (*ListUsersRequest) toProto(protoreflect.Message)   {}
func (*ListUsersRequest) fromProto(protoreflect.Message) {}

type ListUsersResponse struct {
	Usernames []string
}

func (*ListUsersResponse) messageName() protoreflect.Name { return "ListUsersResponse" }

func (r *ListUsersResponse) toProto(m protoreflect.Message) {
	if len(r.Usernames) == 0 {
		return
	}
	list := m.Mutable(fieldOf(m, "usernames")).List()
	for _, name := range r.Usernames {
		list.Append(protoreflect.ValueOfString(name))
	}
}

func (r *ListUsersResponse) fromProto(m protoreflect.Message) {
	list := m.Get(fieldOf(m, "usernames")).List()
	r.Usernames = make([]string, 0, list.Len())
	for i := range list.Len() {
		r.Usernames = append(r.Usernames, list.Get(i).String())
	}
}

type UsernameExistsRequest struct {
	Username string
}

func (*UsernameExistsRequest) messageName() protoreflect.Name { return "UsernameExistsRequest" }

func (r *UsernameExistsRequest) toProto(m protoreflect.Message) { setString(m, "username", r.Username) }

func (r *UsernameExistsRequest) fromProto(m protoreflect.Message) {
	r.Username = getString(m, "username")
}

type UsernameExistsResponse struct {
	Exists bool
}

func (*UsernameExistsResponse) messageName() protoreflect.Name { return "UsernameExistsResponse" }

func (r *UsernameExistsResponse) toProto(m protoreflect.Message) {
	if r.Exists {
		m.Set(fieldOf(m, "exists"), protoreflect.ValueOfBool(true))
	}
}

func (r *UsernameExistsResponse) fromProto(m protoreflect.Message) {
	r.Exists = m.Get(fieldOf(m, "exists")).Bool()
}
