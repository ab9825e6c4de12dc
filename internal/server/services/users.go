// Package services contains the credential authority's business logic.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/revocations"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

// nowFn is a seam for tests.
var nowFn = time.Now

// UserService registers accounts, issues access tokens and answers whether
// a presented token still identifies a user.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	revocations                 revocations.Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, r revocations.Repository, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		revocations:                 r,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func validateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username must be 3 to 50 letters, digits, '_', '.' or '-'", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	return nil
}

// Register creates a new account. A taken username yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login checks the password and returns a fresh access token. Unknown users
// and wrong passwords are both common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Verify resolves token to the username it was issued to.
//
// It returns common.ErrNoCredential for an empty token, common.ErrTokenExpired
// past expiry and common.ErrInvalidToken for anything else that is wrong with
// the token, including logout and deleted accounts. Store failures come back
// as common.ErrAuthorityUnavailable.
func (s *UserService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrNoCredential
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAuthorityUnavailable, err)
	}
	if revoked {
		return "", common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetUserByLogin(ctx, claims.Username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("%w: %v", common.ErrAuthorityUnavailable, err)
	}

	return claims.Username, nil
}

// Logout revokes token for the rest of its lifetime. An expired token is
// already unusable, so logging it out succeeds without touching the store.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrNoCredential
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil
		}
		return err
	}

	ttl := claims.ExpiresAt.Sub(nowFn())
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuthorityUnavailable, err)
	}
	return nil
}

// ListUsers returns every registered username in ascending order.
func (s *UserService) ListUsers(ctx context.Context) ([]string, error) {
	names, err := s.repomanager.Users(s.db).ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthorityUnavailable, err)
	}
	return names, nil
}

// UsernameExists reports whether username is registered. Names that could
// never be registered are a common.ErrorValidation.
func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	if !usernamePattern.MatchString(username) {
		return false, fmt.Errorf("%w: username must be 3 to 50 letters, digits, '_', '.' or '-'", common.ErrorValidation)
	}

	_, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrAuthorityUnavailable, err)
	}
}
