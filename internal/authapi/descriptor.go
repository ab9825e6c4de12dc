package authapi

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const protoFile = "gophchat/authority.proto"

// authorityProto describes the wire contract:
//
//	syntax = "proto3";
//	package gophchat.authority;
//
//	message RegisterRequest        { string username = 1; string password = 2; }
//	message RegisterResponse       { string username = 1; }
//	message LoginRequest           { string username = 1; string password = 2; }
//	message LoginResponse          { string access_token = 1; string username = 2; }
//	message VerifyRequest          { string token = 1; }
//	message VerifyResponse         { string username = 1; }
//	message LogoutRequest          {}
//	message LogoutResponse         {}
//	message ListUsersRequest       {}
//	message ListUsersResponse      { repeated string usernames = 1; }
//	message UsernameExistsRequest  { string username = 1; }
//	message UsernameExistsResponse { bool exists = 1; }
//
//	service Authority {
//	  rpc Register(RegisterRequest) returns (RegisterResponse);
//	  rpc Login(LoginRequest) returns (LoginResponse);
//	  rpc Verify(VerifyRequest) returns (VerifyResponse);
//	  rpc Logout(LogoutRequest) returns (LogoutResponse);
//	  rpc ListUsers(ListUsersRequest) returns (ListUsersResponse);
//	  rpc UsernameExists(UsernameExistsRequest) returns (UsernameExistsResponse);
//	}
var authorityProto = &descriptorpb.FileDescriptorProto{
	Name:    proto.String(protoFile),
	Package: proto.String("gophchat.authority"),
	Syntax:  proto.String("proto3"),
	MessageType: []*descriptorpb.DescriptorProto{
		message("RegisterRequest", stringField("username", 1), stringField("password", 2)),
		message("RegisterResponse", stringField("username", 1)),
		message("LoginRequest", stringField("username", 1), stringField("password", 2)),
		message("LoginResponse", stringField("access_token", 1), stringField("username", 2)),
		message("VerifyRequest", stringField("token", 1)),
		message("VerifyResponse", stringField("username", 1)),
		message("LogoutRequest"),
		message("LogoutResponse"),
		message("ListUsersRequest"),
		message("ListUsersResponse", repeatedStringField("usernames", 1)),
		message("UsernameExistsRequest", stringField("username", 1)),
		message("UsernameExistsResponse", boolField("exists", 1)),
	},
	Service: []*descriptorpb.ServiceDescriptorProto{{
		Name: proto.String("Authority"),
		Method: []*descriptorpb.MethodDescriptorProto{
			rpc("Register"),
			rpc("Login"),
			rpc("Verify"),
			rpc("Logout"),
			rpc("ListUsers"),
			rpc("UsernameExists"),
		},
	}},
}

var authorityFile = mustFile(authorityProto)

func mustFile(fd *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	f, err := protodesc.NewFile(fd, nil)
	if err != nil {
		panic(fmt.Sprintf("authapi: invalid %s: %v", fd.GetName(), err))
	}
	return f
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

func stringField(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return field(name, number, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_STRING)
}

func repeatedStringField(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return field(name, number, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, descriptorpb.FieldDescriptorProto_TYPE_STRING)
}

func boolField(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return field(name, number, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_BOOL)
}

func rpc(name string) *descriptorpb.MethodDescriptorProto {
	const pkg = ".gophchat.authority."
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(pkg + name + "Request"),
		OutputType: proto.String(pkg + name + "Response"),
	}
}

// newMessage returns an empty protobuf message of the named authority type.
func newMessage(name protoreflect.Name) *dynamicpb.Message {
	md := authorityFile.Messages().ByName(name)
	if md == nil {
		panic(fmt.Sprintf("authapi: unknown message %s", name))
	}
	return dynamicpb.NewMessage(md)
}
