// Package access decides, per request, whether a caller may see a path or
// must be redirected, and applies that decision to gin routes.
package access

import (
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
)

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectLanding
	RedirectOutage
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	case RedirectOutage:
		return "redirect_outage"
	default:
		return "unknown"
	}
}

const (
	LoginPath  = "/login"
	OutagePath = "/server-down"
	chatPrefix = "/chat/"
)

// preAuthPaths only make sense for callers without a session. "/" is
// matched exactly.
var preAuthPaths = []string{"/sign-up", "/login", "/verify"}

var protectedPaths = []string{"/chat", "/profile"}

// underPath reports whether p is base or lies below it. "/chatter" is not
// under "/chat".
func underPath(p, base string) bool {
	return p == base || strings.HasPrefix(p, base+"/")
}

func matchesAny(p string, bases []string) bool {
	for _, b := range bases {
		if underPath(p, b) {
			return true
		}
	}
	return false
}

func isPreAuth(p string) bool   { return p == "/" || matchesAny(p, preAuthPaths) }
func isProtected(p string) bool { return matchesAny(p, protectedPaths) }

// Decide maps a verification outcome and the requested path to a Decision.
// First match wins:
//
//  1. authority unavailable: RedirectOutage, whatever the path;
//  2. present and valid credential: RedirectLanding on pre-auth paths, else Allow;
//  3. otherwise: RedirectLogin on protected paths, else Allow.
//
// A valid result without an identity counts as invalid.
func Decide(present bool, res verifier.Result, path string) Decision {
	if res.Reason == verifier.ReasonAuthorityUnavailable {
		return RedirectOutage
	}

	if present && res.Valid && res.Identity != "" {
		if isPreAuth(path) {
			return RedirectLanding
		}
		return Allow
	}

	if isProtected(path) {
		return RedirectLogin
	}
	return Allow
}

// Target is the redirect location for d, or "" for Allow.
func Target(d Decision, identity string) string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectLanding:
		return chatPrefix + identity
	case RedirectOutage:
		return OutagePath
	default:
		return ""
	}
}
