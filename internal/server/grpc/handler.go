package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophchat/internal/authapi"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC statuses. Credential failures carry
// the sentinel text so callers can tell an expired token from a bad one.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrNoCredential):
		return status.Error(codes.Unauthenticated, common.ErrNoCredential.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrAuthorityUnavailable):
		return status.Error(codes.Unavailable, common.ErrAuthorityUnavailable.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *authapi.RegisterRequest) (*authapi.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "Registration failed", "username", req.Username, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "id", user.ID)
	return &authapi.RegisterResponse{Username: user.UserName}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authapi.LoginRequest) (*authapi.LoginResponse, error) {

	token, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Error(ctx, "Login failed", "username", req.Username, "error", err)
		}
		return nil, toStatus(err)
	}

	return &authapi.LoginResponse{AccessToken: token, Username: req.Username}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *authapi.VerifyRequest) (*authapi.VerifyResponse, error) {

	username, err := s.users.Verify(ctx, req.Token)
	if err != nil {
		if errors.Is(err, common.ErrAuthorityUnavailable) {
			s.logger.Error(ctx, "Verify failed", "error", err)
		}
		return nil, toStatus(err)
	}

	return &authapi.VerifyResponse{Username: username}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *authapi.LogoutRequest) (*authapi.LogoutResponse, error) {

	if err := s.users.Logout(ctx, accessTokenFromContext(ctx)); err != nil {
		return nil, toStatus(err)
	}

	return &authapi.LogoutResponse{}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *authapi.ListUsersRequest) (*authapi.ListUsersResponse, error) {

	names, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error(ctx, "ListUsers failed", "error", err)
		return nil, toStatus(err)
	}

	return &authapi.ListUsersResponse{Usernames: names}, nil
}

func (s *GRPCServer) UsernameExists(ctx context.Context, req *authapi.UsernameExistsRequest) (*authapi.UsernameExistsResponse, error) {

	exists, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrAuthorityUnavailable) {
			s.logger.Error(ctx, "UsernameExists failed", "error", err)
		}
		return nil, toStatus(err)
	}

	return &authapi.UsernameExistsResponse{Exists: exists}, nil
}
