package access

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/gateway/respond"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Gate runs the verifier once per request and enforces Decide.
type Gate struct {
	verifier verifier.Verifier
	cookies  Cookies
	logger   logging.Logger
	metrics  *gateMetrics
}

func NewGate(v verifier.Verifier, cookies Cookies, l logging.Logger, reg prometheus.Registerer) *Gate {
	return &Gate{
		verifier: v,
		cookies:  cookies,
		logger:   l.With("module", "access_gate"),
		metrics:  newGateMetrics(reg),
	}
}

// Pages gates page routes on the cookie credential.
func (g *Gate) Pages() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		credential := CookieCredential(c)
		res := g.verifier.Verify(ctx, credential)

		if credential != "" && (res.Reason == verifier.ReasonInvalid || res.Reason == verifier.ReasonExpired) {
			g.cookies.Clear(c)
		}

		d := Decide(credential != "", res, c.Request.URL.Path)
		g.metrics.observe(d)

		if d != Allow {
			g.logger.Debug(ctx, "redirect", "path", c.Request.URL.Path, "decision", d.String(), "reason", res.Reason.String())
			c.Redirect(http.StatusTemporaryRedirect, Target(d, res.Identity))
			c.Abort()
			return
		}

		if res.Valid {
			c.Set(identityKey, res.Identity)
		}
		c.Next()
	}
}

// RequireIdentity guards API routes: it answers 401 or 503 instead of
// redirecting.
func (g *Gate) RequireIdentity(credential func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := g.verifier.Verify(c.Request.Context(), credential(c))

		switch {
		case res.Reason == verifier.ReasonAuthorityUnavailable:
			respond.Abort(c, http.StatusServiceUnavailable, ReasonMessage(res.Reason))
			return
		case !res.Valid || res.Identity == "":
			respond.Abort(c, http.StatusUnauthorized, ReasonMessage(res.Reason))
			return
		}

		c.Set(identityKey, res.Identity)
		c.Next()
	}
}

// ReasonMessage is the client-facing text for a failed verification.
func ReasonMessage(r verifier.Reason) string {
	switch r {
	case verifier.ReasonNoCredential:
		return common.ErrNoCredential.Error()
	case verifier.ReasonExpired:
		return common.ErrTokenExpired.Error()
	case verifier.ReasonAuthorityUnavailable:
		return common.ErrAuthorityUnavailable.Error()
	default:
		return common.ErrInvalidToken.Error()
	}
}
