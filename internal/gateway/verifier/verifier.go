// Package verifier resolves a bearer credential to an identity by asking the
// credential authority.
package verifier

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/authapi"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Reason explains why a credential did not verify.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoCredential
	ReasonInvalid
	ReasonExpired
	ReasonAuthorityUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoCredential:
		return "no_credential"
	case ReasonInvalid:
		return "invalid"
	case ReasonExpired:
		return "expired"
	case ReasonAuthorityUnavailable:
		return "authority_unavailable"
	default:
		return "unknown"
	}
}

// Result is the outcome of one verification. Identity is set only when
// Valid is true.
type Result struct {
	Valid    bool
	Identity string
	Reason   Reason
}

// Verifier checks one credential per call and holds no state between calls.
type Verifier interface {
	Verify(ctx context.Context, credential string) Result
}

const DefaultTimeout = 3 * time.Second

type authorityClient interface {
	Verify(ctx context.Context, in *authapi.VerifyRequest, opts ...grpc.CallOption) (*authapi.VerifyResponse, error)
}

// AuthorityVerifier is a Verifier backed by the authority's Verify RPC.
type AuthorityVerifier struct {
	client  authorityClient
	timeout time.Duration
	logger  logging.Logger
}

func NewAuthorityVerifier(client authorityClient, timeout time.Duration, l logging.Logger) *AuthorityVerifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AuthorityVerifier{
		client:  client,
		timeout: timeout,
		logger:  l.With("module", "verifier"),
	}
}

// Verify never returns an error: every failure is folded into Result.Reason.
// Anything other than an explicit rejection by the authority, including a
// timeout, is ReasonAuthorityUnavailable.
func (v *AuthorityVerifier) Verify(ctx context.Context, credential string) Result {
	if credential == "" {
		return Result{Reason: ReasonNoCredential}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.Verify(ctx, &authapi.VerifyRequest{Token: credential})
	if err != nil {
		res := Result{Reason: classify(err)}
		if res.Reason == ReasonAuthorityUnavailable {
			v.logger.Warn(ctx, "authority unavailable", "error", err)
		}
		return res
	}

	if resp.Username == "" {
		return Result{Reason: ReasonInvalid}
	}
	return Result{Valid: true, Identity: resp.Username}
}

func classify(err error) Reason {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		return ReasonAuthorityUnavailable
	}
	switch st.Message() {
	case common.ErrTokenExpired.Error():
		return ReasonExpired
	case common.ErrNoCredential.Error():
		return ReasonNoCredential
	default:
		return ReasonInvalid
	}
}
