// Package common contains shared constants and sentinel errors used across
// gophchat components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound requests to the credential authority.
const AccessTokenHeaderName = "access_token"

// AccessTokenCookieName is the browser cookie holding the bearer credential.
const AccessTokenCookieName = "accessToken"

// TokenHeaderName is the HTTP header accepted by the token verification
// endpoint and by the WebSocket handshake.
const TokenHeaderName = "token"
