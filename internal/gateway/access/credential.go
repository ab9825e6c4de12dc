package access

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// CookieCredential reads the access token cookie.
func CookieCredential(c *gin.Context) string {
	v, err := c.Cookie(common.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return v
}

// Credential looks for a bearer credential in the cookie, then the token
// header, then an Authorization: Bearer header.
func Credential(c *gin.Context) string {
	if v := CookieCredential(c); v != "" {
		return v
	}
	if v := c.GetHeader(common.TokenHeaderName); v != "" {
		return v
	}
	if v, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Cookies writes and clears the httpOnly access token cookie.
type Cookies struct {
	Secure bool
	MaxAge int
}

func (k Cookies) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenCookieName, token, k.MaxAge, "/", "", k.Secure, true)
}

func (k Cookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenCookieName, "", -1, "/", "", k.Secure, true)
}

// Identity returns the identity the gate stored for this request.
func Identity(c *gin.Context) string {
	return c.GetString(identityKey)
}
