package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// tokenVerifier maps credentials to results.
type tokenVerifier map[string]verifier.Result

func (v tokenVerifier) Verify(_ context.Context, credential string) verifier.Result {
	if credential == "" {
		return verifier.Result{Reason: verifier.ReasonNoCredential}
	}
	if r, ok := v[credential]; ok {
		return r
	}
	return verifier.Result{Reason: verifier.ReasonInvalid}
}

var testVerifier = tokenVerifier{
	"good":  {Valid: true, Identity: "alice"},
	"stale": {Reason: verifier.ReasonExpired},
	"down":  {Reason: verifier.ReasonAuthorityUnavailable},
}

func newEngine(g *Gate) *gin.Engine {
	r := gin.New()
	pages := r.Group("/", g.Pages())
	for _, p := range []string{"/", "/login", "/chat/:username", "/profile"} {
		pages.GET(p, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"page": c.Request.URL.Path, "username": Identity(c)})
		})
	}
	api := r.Group("/api", g.RequireIdentity(Credential))
	api.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, Identity(c)) })
	return r
}

func do(r http.Handler, path, cookie string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: cookie})
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPages(t *testing.T) {
	r := newEngine(NewGate(testVerifier, Cookies{}, logging.Nop(), nil))

	tests := []struct {
		name     string
		path     string
		cookie   string
		code     int
		location string
	}{
		{"anonymous protected", "/chat/bob", "", http.StatusTemporaryRedirect, "/login"},
		{"anonymous public", "/login", "", http.StatusOK, ""},
		{"logged in on login page", "/login", "good", http.StatusTemporaryRedirect, "/chat/alice"},
		{"logged in on landing", "/", "good", http.StatusTemporaryRedirect, "/chat/alice"},
		{"logged in on chat", "/chat/bob", "good", http.StatusOK, ""},
		{"expired on profile", "/profile", "stale", http.StatusTemporaryRedirect, "/login"},
		{"authority down", "/login", "down", http.StatusTemporaryRedirect, "/server-down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.path, tt.cookie, nil)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestPages_AllowedCarriesIdentity(t *testing.T) {
	r := newEngine(NewGate(testVerifier, Cookies{}, logging.Nop(), nil))

	w := do(r, "/chat/bob", "good", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"page":"/chat/bob","username":"alice"}`, w.Body.String())
}

func TestPages_ClearsBadCookie(t *testing.T) {
	r := newEngine(NewGate(testVerifier, Cookies{}, logging.Nop(), nil))

	w := do(r, "/profile", "stale", nil)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, common.AccessTokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)

	w = do(r, "/profile", "down", nil)
	assert.Empty(t, w.Result().Cookies(), "outage must not log the user out")
}

func TestPages_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGate(testVerifier, Cookies{}, logging.Nop(), reg)
	r := newEngine(g)

	do(r, "/chat/bob", "", nil)
	do(r, "/chat/bob", "good", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.decisions.WithLabelValues("redirect_login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.decisions.WithLabelValues("allow")))
}

func TestRequireIdentity(t *testing.T) {
	r := newEngine(NewGate(testVerifier, Cookies{}, logging.Nop(), nil))

	w := do(r, "/api/me", "", map[string]string{common.TokenHeaderName: "good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = do(r, "/api/me", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"statusCode":401,"data":null,"message":"no credential","success":false}`, w.Body.String())

	w = do(r, "/api/me", "stale", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")

	w = do(r, "/api/me", "down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCredential_Precedence(t *testing.T) {
	var got string
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { got = Credential(c) })

	do(r, "/x", "from-cookie", map[string]string{common.TokenHeaderName: "from-header"})
	assert.Equal(t, "from-cookie", got)

	do(r, "/x", "", map[string]string{common.TokenHeaderName: "from-header", "Authorization": "Bearer b"})
	assert.Equal(t, "from-header", got)

	do(r, "/x", "", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, "", got)
}
